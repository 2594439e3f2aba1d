package constants

// TaskScope selects which slice of tasks a listing returns for the caller.
type TaskScope string

const (
	ScopeAll      TaskScope = "all"
	ScopePending  TaskScope = "pending"
	ScopeApproved TaskScope = "approved"
)

func (s TaskScope) IsValid() bool {
	switch s {
	case ScopeAll, ScopePending, ScopeApproved:
		return true
	default:
		return false
	}
}

// DefaultScope is the listing each role works from: executors see what they
// created, leaders what waits on them, managers the approved overview.
func DefaultScope(role Role) TaskScope {
	switch role {
	case RoleLeader:
		return ScopePending
	case RoleManager:
		return ScopeApproved
	default:
		return ScopeAll
	}
}
