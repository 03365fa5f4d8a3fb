package extract

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/instrumap/pkg/diagram/connect"
	"github.com/matzehuels/instrumap/pkg/instrument"
)

// builtinMaterials are material names a geometry may use without a material
// component.
var builtinMaterials = map[string]bool{"Vacuum": true, "Exit": true}

// Union returns the extractor for the material/process graph.
//
// Edges, in emission order per component:
//   - process -> material, for each process a material uses
//   - material -> geometry, for the geometry's material
//   - geometry -> geometry, for each geometry it masks
//   - geometry -> logger and logger -> process, for logger targets
//   - logger -> conditional, for each conditioned logger
//   - geometry -> master, for geometries declared before the master while
//     their activation budget lasts
//
// References to unknown names are logged as warnings and the edge is omitted.
func Union(logger *log.Logger) Extractor {
	if logger == nil {
		logger = discardLogger()
	}
	return func(comps []instrument.Component) (*connect.ConnectionList, error) {
		u := unionGraph{
			logger: logger,
			list:   connect.NewList(connect.KindUnion),
			roles:  make(map[string]instrument.UnionRole, len(comps)),
		}
		for _, c := range comps {
			if r := c.Union().Role; r != instrument.RoleNone {
				u.roles[c.Name()] = r
			}
		}

		budget := make(map[string]int)
		var geometries []string
		for _, c := range comps {
			f := c.Union()
			name := c.Name()
			switch f.Role {
			case instrument.RoleMaterial:
				for _, p := range f.Processes {
					u.link(p, instrument.RoleProcess, name, "material", name)
				}
			case instrument.RoleGeometry:
				if !builtinMaterials[f.Material] && f.Material != "" {
					u.link(f.Material, instrument.RoleMaterial, name, "geometry", name)
				}
				for _, m := range f.Masks {
					u.linkTo(name, m, instrument.RoleGeometry, "mask")
				}
				budget[name] = f.Activations
				geometries = append(geometries, name)
			case instrument.RoleLogger:
				for _, g := range f.TargetGeometries {
					u.link(g, instrument.RoleGeometry, name, "logger", name)
				}
				for _, p := range f.TargetProcesses {
					u.linkTo(name, p, instrument.RoleProcess, "logger")
				}
			case instrument.RoleConditional:
				for _, l := range f.TargetLoggers {
					u.link(l, instrument.RoleLogger, name, "conditional", name)
				}
			case instrument.RoleMaster:
				for _, g := range geometries {
					if budget[g] <= 0 {
						continue
					}
					u.list.Add(g, name, "")
					budget[g]--
				}
			}
		}
		return u.list, nil
	}
}

type unionGraph struct {
	logger *log.Logger
	list   *connect.ConnectionList
	roles  map[string]instrument.UnionRole
}

// link adds from -> to after checking that from has the wanted role.
func (u *unionGraph) link(from string, want instrument.UnionRole, to, field, holder string) {
	if !u.has(from, want) {
		u.logger.Warn("union graph: unknown reference, edge omitted",
			"component", holder, "field", field, want.String(), from)
		return
	}
	u.list.Add(from, to, "")
}

// linkTo adds from -> to after checking that to has the wanted role.
func (u *unionGraph) linkTo(from, to string, want instrument.UnionRole, field string) {
	if !u.has(to, want) {
		u.logger.Warn("union graph: unknown reference, edge omitted",
			"component", from, "field", field, want.String(), to)
		return
	}
	u.list.Add(from, to, "")
}

func (u *unionGraph) has(name string, role instrument.UnionRole) bool {
	r, ok := u.roles[name]
	return ok && r == role
}
