package model

import (
	"fmt"
	"strings"

	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/pkg/constants"
)

// AppendHistory returns histories with entry added at the end. The input
// slice is never modified, and nothing already recorded is reordered or
// dropped.
func AppendHistory(histories []HistoryEntry, entry HistoryEntry) ([]HistoryEntry, error) {
	if !entry.Action.IsValid() {
		return histories, apperrors.Validation(fmt.Sprintf("unknown history action %q", entry.Action))
	}
	if entry.Action == constants.HistoryRevision && strings.TrimSpace(entry.Note) == "" {
		return histories, apperrors.Validation("a revision requires a note")
	}
	if entry.Status != "" && !entry.Status.IsValid() {
		return histories, apperrors.Validation(fmt.Sprintf("unknown status %q", entry.Status))
	}

	out := make([]HistoryEntry, len(histories), len(histories)+1)
	copy(out, histories)
	return append(out, entry), nil
}

// CurrentStatus derives a task's status from its ledger. Entries written
// without a recorded status fall back to the status their action implies.
func CurrentStatus(histories []HistoryEntry) constants.TaskStatus {
	status := constants.StatusPending
	for _, h := range histories {
		if h.Status != "" {
			status = h.Status
			continue
		}
		status = impliedStatus(h.Action, status)
	}
	return status
}

func impliedStatus(action constants.HistoryAction, prev constants.TaskStatus) constants.TaskStatus {
	switch action {
	case constants.HistoryCreate:
		return constants.StatusInProgress
	case constants.HistorySubmit:
		return constants.StatusSubmitted
	case constants.HistoryRevision:
		return constants.StatusRevision
	case constants.HistoryApprove:
		return constants.StatusCompleted
	default:
		return prev
	}
}
