package constants

// HistoryAction is the kind of audit record written to a task's ledger.
type HistoryAction string

const (
	HistoryCreate         HistoryAction = "create"
	HistorySubmit         HistoryAction = "submit"
	HistoryRevision       HistoryAction = "revision"
	HistoryApprove        HistoryAction = "approve"
	HistoryUpdateProgress HistoryAction = "update_progress"
)

func (a HistoryAction) IsValid() bool {
	switch a {
	case HistoryCreate, HistorySubmit, HistoryRevision, HistoryApprove, HistoryUpdateProgress:
		return true
	default:
		return false
	}
}
