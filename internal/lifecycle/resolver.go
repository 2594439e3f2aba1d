package lifecycle

import (
	"fmt"

	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

// Permission is something a dashboard may offer a user for one task.
type Permission string

const (
	PermView           Permission = "view"
	PermUpdateProgress Permission = "update_progress"
	PermSubmit         Permission = "submit"
	PermApprove        Permission = "approve"
	PermReject         Permission = "reject"
	PermEdit           Permission = "edit"
	PermDelete         Permission = "delete"
)

var Permissions = []Permission{
	PermView,
	PermUpdateProgress,
	PermSubmit,
	PermApprove,
	PermReject,
	PermEdit,
	PermDelete,
}

// ActionSet is kept in the order of Permissions.
type ActionSet []Permission

func (s ActionSet) Has(p Permission) bool {
	return contains(s, p)
}

func (s ActionSet) Strings() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = string(p)
	}
	return out
}

var deletableStatuses = []constants.TaskStatus{
	constants.StatusSubmitted,
	constants.StatusRevision,
}

// machineAction maps a permission onto the transition that backs it for a
// role. Permissions without a transition (view, delete) map to "".
func machineAction(p Permission, role constants.Role) Action {
	switch p {
	case PermUpdateProgress:
		if role == constants.RoleLeader {
			return ActionOverrideProgress
		}
		return ActionUpdateProgress
	case PermSubmit:
		return ActionSubmit
	case PermApprove:
		return ActionApprove
	case PermReject:
		return ActionRevise
	case PermEdit:
		return ActionResubmit
	default:
		return ""
	}
}

// AllowedActions lists what actor may do with task. Transition-backed
// permissions are answered by the same rule table Apply enforces.
func AllowedActions(task *model.Task, actor model.User) ActionSet {
	if !actor.Role.IsValid() {
		return nil
	}

	status := task.Status
	if status == "" {
		status = constants.StatusPending
	}

	set := ActionSet{PermView}
	for _, p := range Permissions {
		switch p {
		case PermView:
			continue
		case PermDelete:
			if CanDelete(task, actor) == nil {
				set = append(set, p)
			}
		default:
			if Can(status, machineAction(p, actor.Role), actor.Role) {
				set = append(set, p)
			}
		}
	}
	return set
}

// CanDelete allows removal only while a task is still waiting on review or
// sent back for revision, and only by the executor who created it.
func CanDelete(task *model.Task, actor model.User) error {
	if actor.Role != constants.RoleExecutor || !task.IsCreatedBy(actor.ID) {
		return apperrors.Forbidden("only the executor who created the task may delete it")
	}
	if !contains(deletableStatuses, task.Status) {
		return apperrors.InvalidTransition(
			fmt.Sprintf("task %d cannot be deleted while %s", task.ID, task.Status))
	}
	return nil
}

// ActionFor returns the machine action behind permission p for role.
func ActionFor(p Permission, role constants.Role) (Action, bool) {
	a := machineAction(p, role)
	return a, a != ""
}
