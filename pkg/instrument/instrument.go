package instrument

import (
	"github.com/matzehuels/instrumap/pkg/errors"
)

// AbsoluteName is reserved for the sentinel box that stands for "no relative
// reference". No component may use it.
const AbsoluteName = "ABSOLUTE"

// OtherCategory is the fixed override category. Components whose category is
// not listed in the instrument's category map are colored as OtherCategory.
const OtherCategory = "other"

// Instrument is an ordered list of components plus the data needed to color
// and annotate its diagram.
type Instrument struct {
	Name       string
	Components []Component
	Categories Categories
	// Intensity is the optional ray-count dataset used in analysis mode.
	Intensity []Intensity
}

// Intensity is one (component, value) pair of an analysis dataset.
type Intensity struct {
	Component string  `json:"component" yaml:"component"`
	Value     float64 `json:"value" yaml:"value"`
}

// Categories maps a category tag to its legend display name.
type Categories map[string]string

// DisplayName returns the legend name for a category. Unlisted categories
// fall back to the tag itself.
func (c Categories) DisplayName(category string) string {
	if name, ok := c[category]; ok && name != "" {
		return name
	}
	return category
}

// Resolve returns the category used for coloring: the tag itself when it is
// listed, OtherCategory otherwise. An empty map lists every tag.
func (c Categories) Resolve(category string) string {
	if len(c) == 0 && category != "" {
		return category
	}
	if _, ok := c[category]; ok {
		return category
	}
	return OtherCategory
}

// Names returns component names in declaration order.
func (in *Instrument) Names() []string {
	names := make([]string, len(in.Components))
	for i, c := range in.Components {
		names[i] = c.Name()
	}
	return names
}

// Lookup returns the component called name.
func (in *Instrument) Lookup(name string) (Component, bool) {
	for _, c := range in.Components {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Validate checks that component names are well-formed and unique.
func (in *Instrument) Validate() error {
	seen := make(map[string]struct{}, len(in.Components))
	for i, c := range in.Components {
		if c == nil {
			return errors.New(errors.ErrCodeInvalidInput, "component %d is nil", i)
		}
		name := c.Name()
		if err := errors.ValidateName(name); err != nil {
			return err
		}
		if name == AbsoluteName {
			return errors.New(errors.ErrCodeInvalidName, "component name %q is reserved", AbsoluteName)
		}
		if _, dup := seen[name]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate component name %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
