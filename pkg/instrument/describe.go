package instrument

import (
	"fmt"
	"strings"
)

// Describe returns the multi-line text shown when hovering a component's box.
func Describe(c Component) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", c.Name())
	if t := c.Type(); t != "" {
		fmt.Fprintf(&b, " (%s)", t)
	}
	b.WriteByte('\n')
	if cat := c.Category(); cat != "" {
		fmt.Fprintf(&b, "category: %s\n", cat)
	}

	fmt.Fprintf(&b, "AT %s\n", refText(c.Placement()))
	if rot, ok := c.Rotation(); ok {
		fmt.Fprintf(&b, "ROTATED %s\n", refText(rot))
	}
	if g := c.Group(); g != "" {
		fmt.Fprintf(&b, "GROUP %s\n", g)
	}
	if j := c.Jump(); j != "" {
		fmt.Fprintf(&b, "JUMP %s\n", j)
	}
	if off, ok := c.TargetIndex(); ok {
		fmt.Fprintf(&b, "target_index = %d\n", off)
	}

	u := c.Union()
	switch u.Role {
	case RoleMaterial:
		fmt.Fprintf(&b, "processes: %s\n", strings.Join(u.Processes, ", "))
	case RoleGeometry:
		fmt.Fprintf(&b, "material: %s\n", u.Material)
		if len(u.Masks) > 0 {
			fmt.Fprintf(&b, "masks: %s\n", strings.Join(u.Masks, ", "))
		}
		fmt.Fprintf(&b, "activations: %d\n", u.Activations)
	case RoleLogger:
		if len(u.TargetGeometries) > 0 {
			fmt.Fprintf(&b, "target geometries: %s\n", strings.Join(u.TargetGeometries, ", "))
		}
		if len(u.TargetProcesses) > 0 {
			fmt.Fprintf(&b, "target processes: %s\n", strings.Join(u.TargetProcesses, ", "))
		}
	case RoleConditional:
		fmt.Fprintf(&b, "target loggers: %s\n", strings.Join(u.TargetLoggers, ", "))
	}

	names := ParameterNames(c)
	if len(names) > 0 {
		params := c.Parameters()
		b.WriteString("parameters:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "  %s = %s\n", name, params[name])
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func refText(r Reference) string {
	if r.Kind == RefAbsolute {
		return "ABSOLUTE"
	}
	return "RELATIVE " + r.String()
}
