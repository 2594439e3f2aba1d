package constants

import "strings"

type Role string

const (
	RoleManager  Role = "manager"
	RoleLeader   Role = "leader"
	RoleExecutor Role = "pelaksana"
)

var Roles = []Role{RoleManager, RoleLeader, RoleExecutor}

func (r Role) IsValid() bool {
	switch r {
	case RoleManager, RoleLeader, RoleExecutor:
		return true
	default:
		return false
	}
}

// ParseRole accepts the stored role names plus "executor" as an alias of pelaksana.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case "executor":
		return RoleExecutor, true
	default:
		return r, r.IsValid()
	}
}
