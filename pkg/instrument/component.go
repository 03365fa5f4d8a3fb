package instrument

import (
	"maps"
	"slices"
)

// Component is the read-only view of one instrument component.
//
// The interface is closed: only types in this package implement it. The
// diagram builder reads these fields and never mutates a component.
type Component interface {
	// Name is the unique identity of the component.
	Name() string
	// Type is the component definition the instance was made from.
	Type() string
	// Category is the type tag used for legend coloring.
	Category() string
	// Placement is the AT reference.
	Placement() Reference
	// Rotation is the ROTATED reference; ok is false when no rotation was given.
	Rotation() (ref Reference, ok bool)
	// Group is the GROUP tag, empty when ungrouped.
	Group() string
	// Jump is the JUMP target expression, empty when there is none.
	Jump() string
	// TargetIndex is the relative index target; ok is false when unset.
	TargetIndex() (offset int, ok bool)
	// Union exposes the material/process graph fields.
	Union() UnionFields
	// Parameters returns the component parameters as text, keyed by name.
	Parameters() map[string]string

	sealed()
}

// Base holds the fields every component carries.
// It is embedded by all concrete component kinds.
type Base struct {
	ComponentName   string
	ComponentType   string
	ComponentCat    string
	At              Reference
	Rotated         Reference
	RotatedSet      bool
	GroupTag        string
	JumpTarget      string
	TargetOffset    int
	TargetOffsetSet bool
	Params          map[string]string
}

func (b *Base) Name() string                  { return b.ComponentName }
func (b *Base) Type() string                  { return b.ComponentType }
func (b *Base) Category() string              { return b.ComponentCat }
func (b *Base) Placement() Reference          { return b.At }
func (b *Base) Rotation() (Reference, bool)   { return b.Rotated, b.RotatedSet }
func (b *Base) Group() string                 { return b.GroupTag }
func (b *Base) Jump() string                  { return b.JumpTarget }
func (b *Base) TargetIndex() (int, bool)      { return b.TargetOffset, b.TargetOffsetSet }
func (b *Base) Parameters() map[string]string { return maps.Clone(b.Params) }
func (b *Base) sealed()                       {}

// ParameterNames returns parameter names in sorted order.
func ParameterNames(c Component) []string {
	return slices.Sorted(maps.Keys(c.Parameters()))
}

// Standard is any component that takes no part in the material/process graph:
// sources, optics, samples, monitors, arms.
type Standard struct {
	Base
}

// Union returns empty fields.
func (s *Standard) Union() UnionFields { return UnionFields{} }

// Process is a scattering process definition.
type Process struct {
	Base
}

// Union reports the process role.
func (p *Process) Union() UnionFields { return UnionFields{Role: RoleProcess} }

// Material combines processes into a material.
type Material struct {
	Base
	Processes []string
}

// Union reports the processes this material uses.
func (m *Material) Union() UnionFields {
	return UnionFields{Role: RoleMaterial, Processes: slices.Clone(m.Processes)}
}

// Geometry is a volume made of one material, optionally masking others.
type Geometry struct {
	Base
	MaterialName string
	Masks        []string
	// Activations is how many aggregators this geometry takes part in.
	Activations int
}

// Union reports the material, masks and activation budget.
func (g *Geometry) Union() UnionFields {
	return UnionFields{
		Role:        RoleGeometry,
		Material:    g.MaterialName,
		Masks:       slices.Clone(g.Masks),
		Activations: g.Activations,
	}
}

// Logger records events in selected geometries and processes.
type Logger struct {
	Base
	TargetGeometries []string
	TargetProcesses  []string
}

// Union reports the logger targets.
func (l *Logger) Union() UnionFields {
	return UnionFields{
		Role:             RoleLogger,
		TargetGeometries: slices.Clone(l.TargetGeometries),
		TargetProcesses:  slices.Clone(l.TargetProcesses),
	}
}

// Conditional restricts loggers to rays that satisfy a condition.
type Conditional struct {
	Base
	TargetLoggers []string
}

// Union reports the conditioned loggers.
func (c *Conditional) Union() UnionFields {
	return UnionFields{Role: RoleConditional, TargetLoggers: slices.Clone(c.TargetLoggers)}
}

// Master aggregates all geometries declared before it into one simulated volume.
type Master struct {
	Base
}

// Union reports the aggregator role.
func (m *Master) Union() UnionFields { return UnionFields{Role: RoleMaster} }

var (
	_ Component = (*Standard)(nil)
	_ Component = (*Process)(nil)
	_ Component = (*Material)(nil)
	_ Component = (*Geometry)(nil)
	_ Component = (*Logger)(nil)
	_ Component = (*Conditional)(nil)
	_ Component = (*Master)(nil)
)
