package constants

type TaskStatus string

const (
	StatusPending          TaskStatus = "pending"
	StatusInProgress       TaskStatus = "in_progress"
	StatusSubmitted        TaskStatus = "submitted"
	StatusRevision         TaskStatus = "revision"
	StatusApprovedByLeader TaskStatus = "approved_by_leader"
	StatusCompleted        TaskStatus = "completed"
)

var TaskStatuses = []TaskStatus{
	StatusPending,
	StatusInProgress,
	StatusSubmitted,
	StatusRevision,
	StatusApprovedByLeader,
	StatusCompleted,
}

func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusSubmitted,
		StatusRevision, StatusApprovedByLeader, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition may leave s.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted
}

// Label is the human readable form used by dashboards.
func (s TaskStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusSubmitted:
		return "Submitted"
	case StatusRevision:
		return "Revision"
	case StatusApprovedByLeader:
		return "Approved by Leader"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}
