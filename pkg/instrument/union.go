package instrument

import "strings"

// UnionRole is a component's role in the material/process graph.
type UnionRole int

const (
	RoleNone UnionRole = iota
	RoleProcess
	RoleMaterial
	RoleGeometry
	RoleLogger
	RoleConditional
	RoleMaster
)

var roleNames = map[UnionRole]string{
	RoleNone:        "",
	RoleProcess:     "process",
	RoleMaterial:    "material",
	RoleGeometry:    "geometry",
	RoleLogger:      "logger",
	RoleConditional: "conditional",
	RoleMaster:      "master",
}

// String returns the role name used in instrument files.
func (r UnionRole) String() string { return roleNames[r] }

// ParseUnionRole maps a role name to a UnionRole. ok is false for unknown names.
func ParseUnionRole(s string) (UnionRole, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for role, name := range roleNames {
		if name == s {
			return role, true
		}
	}
	return RoleNone, false
}

// UnionFields are the material/process graph fields of a component.
// Only the fields relevant to Role are populated.
type UnionFields struct {
	Role             UnionRole
	Processes        []string // material
	Material         string   // geometry
	Masks            []string // geometry
	Activations      int      // geometry
	TargetGeometries []string // logger
	TargetProcesses  []string // logger
	TargetLoggers    []string // conditional
}

// SplitList splits a comma separated reference string such as a material's
// process list. Blank entries are dropped.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
