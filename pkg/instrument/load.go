package instrument

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/instrumap/pkg/errors"
)

// defaultActivations is the activation budget of a geometry that does not set one.
const defaultActivations = 1

type document struct {
	Name       string            `yaml:"name"`
	Categories map[string]string `yaml:"categories"`
	Components []componentDoc    `yaml:"components"`
	Intensity  []Intensity       `yaml:"intensity"`
}

type componentDoc struct {
	Name        string         `yaml:"name"`
	Type        string         `yaml:"type"`
	Category    string         `yaml:"category"`
	At          string         `yaml:"at"`
	Rotated     *string        `yaml:"rotated"`
	Group       string         `yaml:"group"`
	Jump        string         `yaml:"jump"`
	TargetIndex *int           `yaml:"target_index"`
	Parameters  map[string]any `yaml:"parameters"`
	Union       *unionDoc      `yaml:"union"`
}

type unionDoc struct {
	Role             string     `yaml:"role"`
	Processes        stringList `yaml:"processes"`
	Material         string     `yaml:"material"`
	Masks            stringList `yaml:"masks"`
	Activations      *int       `yaml:"activations"`
	TargetGeometries stringList `yaml:"target_geometries"`
	TargetProcesses  stringList `yaml:"target_processes"`
	TargetLoggers    stringList `yaml:"target_loggers"`
}

// stringList accepts either a sequence or a comma separated scalar.
type stringList []string

func (s *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*s = SplitList(value.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*s = items
		return nil
	}
	return fmt.Errorf("line %d: expected list or comma separated string", value.Line)
}

// LoadFile reads an instrument document from path.
func LoadFile(path string) (*Instrument, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "instrument file %s", path)
	}
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(data))
}

// Load decodes an instrument document (YAML or JSON) and validates it.
func Load(r io.Reader) (*Instrument, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode instrument")
	}

	in := &Instrument{
		Name:       doc.Name,
		Categories: Categories(doc.Categories),
		Intensity:  doc.Intensity,
	}
	for i, cd := range doc.Components {
		c, err := cd.build()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "component %d (%s)", i, cd.Name)
		}
		in.Components = append(in.Components, c)
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

func (cd componentDoc) build() (Component, error) {
	base := Base{
		ComponentName: cd.Name,
		ComponentType: cd.Type,
		ComponentCat:  cd.Category,
		At:            ParseReference(cd.At),
		GroupTag:      cd.Group,
		JumpTarget:    cd.Jump,
	}
	if cd.Rotated != nil {
		base.Rotated = ParseReference(*cd.Rotated)
		base.RotatedSet = true
	}
	if cd.TargetIndex != nil {
		base.TargetOffset = *cd.TargetIndex
		base.TargetOffsetSet = true
	}
	if len(cd.Parameters) > 0 {
		base.Params = make(map[string]string, len(cd.Parameters))
		for k, v := range cd.Parameters {
			base.Params[k] = fmt.Sprint(v)
		}
	}

	if cd.Union == nil {
		return &Standard{Base: base}, nil
	}

	role, ok := ParseUnionRole(cd.Union.Role)
	if !ok {
		return nil, fmt.Errorf("unknown union role %q", cd.Union.Role)
	}
	u := cd.Union
	switch role {
	case RoleProcess:
		return &Process{Base: base}, nil
	case RoleMaterial:
		return &Material{Base: base, Processes: u.Processes}, nil
	case RoleGeometry:
		activations := defaultActivations
		if u.Activations != nil {
			activations = *u.Activations
		}
		return &Geometry{Base: base, MaterialName: u.Material, Masks: u.Masks, Activations: activations}, nil
	case RoleLogger:
		return &Logger{Base: base, TargetGeometries: u.TargetGeometries, TargetProcesses: u.TargetProcesses}, nil
	case RoleConditional:
		return &Conditional{Base: base, TargetLoggers: u.TargetLoggers}, nil
	case RoleMaster:
		return &Master{Base: base}, nil
	}
	return &Standard{Base: base}, nil
}
