// Package lifecycle holds the task workflow: which transitions exist, who
// may trigger them, and how each accepted transition is recorded in the
// task's ledger. Every surface (server, client, dashboard) goes through it,
// so what a user is offered never disagrees with what is accepted.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

type Action string

const (
	ActionCreate           Action = "create"
	ActionUpdateProgress   Action = "update_progress"
	ActionSubmit           Action = "submit"
	ActionApprove          Action = "approve"
	ActionRevise           Action = "revise"
	ActionResubmit         Action = "resubmit"
	ActionOverrideProgress Action = "override_progress"
)

// Fields are the editable task attributes sent with a resubmission.
type Fields struct {
	Title            string
	Description      string
	AssignedLeaderID uint
	Deadline         time.Time
}

type Command struct {
	Action   Action
	Actor    model.User
	Progress int
	Note     string
	// StartNow creates the task directly in progress instead of submitting
	// it for review.
	StartNow bool
	Fields   *Fields
	At       time.Time
}

type rule struct {
	from    []constants.TaskStatus
	roles   []constants.Role
	to      constants.TaskStatus // empty keeps the current status
	history constants.HistoryAction
}

var activeStatuses = []constants.TaskStatus{
	constants.StatusInProgress,
	constants.StatusApprovedByLeader,
}

var rules = map[Action]rule{
	ActionCreate: {
		from:    []constants.TaskStatus{constants.StatusPending},
		roles:   []constants.Role{constants.RoleExecutor},
		to:      constants.StatusSubmitted,
		history: constants.HistorySubmit,
	},
	ActionUpdateProgress: {
		from:    activeStatuses,
		roles:   []constants.Role{constants.RoleExecutor},
		history: constants.HistoryUpdateProgress,
	},
	ActionSubmit: {
		from:    activeStatuses,
		roles:   []constants.Role{constants.RoleExecutor},
		to:      constants.StatusSubmitted,
		history: constants.HistorySubmit,
	},
	ActionApprove: {
		from:    []constants.TaskStatus{constants.StatusSubmitted},
		roles:   []constants.Role{constants.RoleLeader},
		to:      constants.StatusCompleted,
		history: constants.HistoryApprove,
	},
	ActionRevise: {
		from:    []constants.TaskStatus{constants.StatusSubmitted},
		roles:   []constants.Role{constants.RoleLeader},
		to:      constants.StatusRevision,
		history: constants.HistoryRevision,
	},
	ActionResubmit: {
		from:    []constants.TaskStatus{constants.StatusRevision},
		roles:   []constants.Role{constants.RoleExecutor},
		to:      constants.StatusSubmitted,
		history: constants.HistorySubmit,
	},
	ActionOverrideProgress: {
		from: []constants.TaskStatus{
			constants.StatusInProgress,
			constants.StatusSubmitted,
			constants.StatusRevision,
			constants.StatusApprovedByLeader,
		},
		roles:   []constants.Role{constants.RoleLeader},
		history: constants.HistoryUpdateProgress,
	},
}

// Can reports whether role may perform action on a task in status. It
// ignores the command payload; Apply validates that separately.
func Can(status constants.TaskStatus, action Action, role constants.Role) bool {
	r, ok := rules[action]
	if !ok || status.IsTerminal() {
		return false
	}
	return contains(r.from, status) && contains(r.roles, role)
}

// Sources lists the statuses action may start from.
func Sources(action Action) []constants.TaskStatus {
	return append([]constants.TaskStatus(nil), rules[action].from...)
}

// Validate checks the command payload alone. It runs before the current
// status is consulted, so a malformed request fails the same way whatever
// state the task is in.
func Validate(cmd Command) error {
	if _, ok := rules[cmd.Action]; !ok {
		return apperrors.Validation(fmt.Sprintf("unknown action %q", cmd.Action))
	}

	switch cmd.Action {
	case ActionRevise:
		if strings.TrimSpace(cmd.Note) == "" {
			return apperrors.Validation("revision note is required")
		}
	case ActionUpdateProgress, ActionOverrideProgress:
		if cmd.Progress < model.MinProgress || cmd.Progress > model.MaxProgress {
			return apperrors.Validation(fmt.Sprintf("progress must be between 0 and 100, got %d", cmd.Progress))
		}
	case ActionResubmit:
		if cmd.Fields == nil {
			return apperrors.Validation("task fields are required")
		}
		if err := ValidateFields(*cmd.Fields); err != nil {
			return err
		}
	}

	return nil
}

func ValidateFields(f Fields) error {
	if strings.TrimSpace(f.Title) == "" {
		return apperrors.Validation("title is required")
	}
	if f.AssignedLeaderID == 0 {
		return apperrors.Validation("assigned leader is required")
	}
	if f.Deadline.IsZero() {
		return apperrors.Validation("deadline is required")
	}
	return nil
}

func FieldsOf(t *model.Task) Fields {
	return Fields{
		Title:            t.Title,
		Description:      t.Description,
		AssignedLeaderID: t.AssignedLeaderID,
		Deadline:         t.Deadline,
	}
}

// Apply runs cmd against task and returns the resulting task. The input is
// left untouched; the status change, progress change and the single new
// history entry only exist together in the returned copy.
func Apply(task *model.Task, cmd Command) (*model.Task, error) {
	if err := Validate(cmd); err != nil {
		return nil, err
	}
	if cmd.Action == ActionCreate {
		if err := ValidateFields(FieldsOf(task)); err != nil {
			return nil, err
		}
	}

	current := task.Status
	if current == "" {
		current = constants.StatusPending
	}

	if current.IsTerminal() {
		return nil, apperrors.InvalidTransition(
			fmt.Sprintf("task %d is %s, no further changes are allowed", task.ID, current))
	}

	r := rules[cmd.Action]
	if !contains(r.roles, cmd.Actor.Role) {
		return nil, apperrors.InvalidTransition(
			fmt.Sprintf("role %q may not %s a task", cmd.Actor.Role, cmd.Action))
	}
	if !contains(r.from, current) {
		return nil, apperrors.InvalidTransition(
			fmt.Sprintf("cannot %s a task in status %q", cmd.Action, current))
	}
	if cmd.Action == ActionCreate && len(task.Histories) > 0 {
		return nil, apperrors.InvalidTransition("task already has history")
	}
	if cmd.Action == ActionUpdateProgress && cmd.Progress < task.Progress {
		return nil, apperrors.Validation(
			fmt.Sprintf("progress cannot go down from %d to %d", task.Progress, cmd.Progress))
	}

	next := task.Clone()
	next.Status = current
	if r.to != "" {
		next.Status = r.to
	}

	action := r.history
	note := cmd.Note
	actor := cmd.Actor.Ref()

	switch cmd.Action {
	case ActionCreate:
		if cmd.StartNow {
			next.Status = constants.StatusInProgress
			action = constants.HistoryCreate
		}
		next.Progress = 0
		next.CreatedByID = actor.ID
		next.CreatedBy = actor
		setProgressBy(next, actor)
	case ActionUpdateProgress:
		next.Progress = cmd.Progress
		setProgressBy(next, actor)
		if note == "" {
			note = fmt.Sprintf("Progress updated to %d%%", cmd.Progress)
		}
	case ActionOverrideProgress:
		next.Progress = cmd.Progress
		setProgressBy(next, actor)
		if note == "" {
			note = fmt.Sprintf("Progress overridden to %d%%", cmd.Progress)
		}
	case ActionResubmit:
		next.Title = cmd.Fields.Title
		next.Description = cmd.Fields.Description
		next.AssignedLeaderID = cmd.Fields.AssignedLeaderID
		if next.AssignedLeader.ID != cmd.Fields.AssignedLeaderID {
			next.AssignedLeader = model.User{ID: cmd.Fields.AssignedLeaderID}
		}
		next.Deadline = cmd.Fields.Deadline
		next.Progress = 0
		setProgressBy(next, actor)
	}

	at := cmd.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	histories, err := model.AppendHistory(next.Histories, model.HistoryEntry{
		TaskID:     task.ID,
		Action:     action,
		Status:     next.Status,
		ActionByID: actor.ID,
		ActionBy:   actor,
		Note:       note,
		CreatedAt:  at,
	})
	if err != nil {
		return nil, err
	}
	next.Histories = histories

	return next, nil
}

// LastEntry returns the entry Apply appended.
func LastEntry(task *model.Task) model.HistoryEntry {
	return task.Histories[len(task.Histories)-1]
}

func setProgressBy(t *model.Task, actor model.User) {
	id := actor.ID
	t.ProgressByID = &id
	t.ProgressBy = &actor
}

func contains[T comparable](items []T, v T) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}
