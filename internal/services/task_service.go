package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/internal/kpi"
	"task-tracker.com/task-tracker/internal/lifecycle"
	repository "task-tracker.com/task-tracker/internal/repositories"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

type TaskService struct {
	tasks       *repository.TaskRepository
	users       *repository.UserRepository
	horizonDays int
	now         func() time.Time
}

// TaskInput carries the editable fields of a create or resubmit request.
type TaskInput struct {
	Title            string
	Description      string
	AssignedLeaderID uint
	Deadline         time.Time
	StartNow         bool
}

func (in TaskInput) fields() lifecycle.Fields {
	return lifecycle.Fields{
		Title:            in.Title,
		Description:      in.Description,
		AssignedLeaderID: in.AssignedLeaderID,
		Deadline:         in.Deadline,
	}
}

func NewTaskService(
	tasks *repository.TaskRepository,
	users *repository.UserRepository,
	horizonDays int,
) *TaskService {
	return &TaskService{
		tasks:       tasks,
		users:       users,
		horizonDays: horizonDays,
		now:         time.Now,
	}
}

var scopeRoles = map[constants.TaskScope]constants.Role{
	constants.ScopeAll:      constants.RoleExecutor,
	constants.ScopePending:  constants.RoleLeader,
	constants.ScopeApproved: constants.RoleManager,
}

func (s *TaskService) ListTasks(ctx context.Context, actor model.User, scope constants.TaskScope) ([]model.Task, error) {
	filter, err := scopeFilter(actor, scope)
	if err != nil {
		return nil, err
	}
	return s.tasks.List(ctx, filter)
}

func scopeFilter(actor model.User, scope constants.TaskScope) (repository.TaskFilter, error) {
	if !scope.IsValid() {
		return repository.TaskFilter{}, apperrors.Validation(fmt.Sprintf("unknown scope %q", scope))
	}
	if scopeRoles[scope] != actor.Role {
		return repository.TaskFilter{}, apperrors.Forbidden(
			fmt.Sprintf("role %q cannot list %s tasks", actor.Role, scope))
	}

	switch scope {
	case constants.ScopePending:
		// everything the leader can still act on, revision included
		return repository.TaskFilter{
			AssignedLeaderID: actor.ID,
			Statuses:         lifecycle.Sources(lifecycle.ActionOverrideProgress),
		}, nil
	case constants.ScopeApproved:
		return repository.TaskFilter{
			Statuses: []constants.TaskStatus{
				constants.StatusApprovedByLeader,
				constants.StatusInProgress,
				constants.StatusCompleted,
			},
		}, nil
	default:
		return repository.TaskFilter{CreatedByID: actor.ID}, nil
	}
}

// GetTask returns a task the actor is involved in. Managers see everything.
func (s *TaskService) GetTask(ctx context.Context, actor model.User, id uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.Role == constants.RoleManager,
		actor.Role == constants.RoleExecutor && task.IsCreatedBy(actor.ID),
		actor.Role == constants.RoleLeader && task.AssignedLeaderID == actor.ID:
		return task, nil
	default:
		return nil, apperrors.Forbidden(fmt.Sprintf("task %d is not visible to %s", id, actor.Username))
	}
}

func (s *TaskService) Summary(ctx context.Context, actor model.User, scope constants.TaskScope) (kpi.Summary, error) {
	if scope == "" {
		scope = constants.DefaultScope(actor.Role)
	}

	tasks, err := s.ListTasks(ctx, actor, scope)
	if err != nil {
		return kpi.Summary{}, err
	}
	return kpi.Summarize(tasks, s.now(), s.horizonDays), nil
}

func (s *TaskService) CreateTask(ctx context.Context, actor model.User, in TaskInput) (*model.Task, error) {
	if err := lifecycle.ValidateFields(in.fields()); err != nil {
		return nil, err
	}

	leader, err := s.leader(ctx, in.AssignedLeaderID)
	if err != nil {
		return nil, err
	}

	draft := &model.Task{
		Title:            in.Title,
		Description:      in.Description,
		Deadline:         in.Deadline,
		AssignedLeaderID: leader.ID,
		AssignedLeader:   leader.Ref(),
	}

	task, err := lifecycle.Apply(draft, lifecycle.Command{
		Action:   lifecycle.ActionCreate,
		Actor:    actor,
		StartNow: in.StartNow,
		At:       s.now().UTC(),
	})
	if err != nil {
		return nil, rejection(err)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return s.tasks.FindByID(ctx, task.ID)
}

// UpdateTask resubmits a task that was sent back for revision.
func (s *TaskService) UpdateTask(ctx context.Context, actor model.User, id uint, in TaskInput) (*model.Task, error) {
	fields := in.fields()
	cmd := lifecycle.Command{Action: lifecycle.ActionResubmit, Fields: &fields}
	if err := lifecycle.Validate(cmd); err != nil {
		return nil, err
	}
	if _, err := s.leader(ctx, in.AssignedLeaderID); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, cmd, ownedBy(actor))
}

func (s *TaskService) UpdateProgress(ctx context.Context, actor model.User, id uint, progress int, note string) (*model.Task, error) {
	cmd := lifecycle.Command{Action: lifecycle.ActionUpdateProgress, Progress: progress, Note: note}
	return s.transition(ctx, actor, id, cmd, ownedBy(actor))
}

func (s *TaskService) SubmitTask(ctx context.Context, actor model.User, id uint) (*model.Task, error) {
	cmd := lifecycle.Command{Action: lifecycle.ActionSubmit}
	return s.transition(ctx, actor, id, cmd, ownedBy(actor))
}

func (s *TaskService) ApproveTask(ctx context.Context, actor model.User, id uint) (*model.Task, error) {
	cmd := lifecycle.Command{Action: lifecycle.ActionApprove}
	return s.transition(ctx, actor, id, cmd, assignedTo(actor))
}

func (s *TaskService) ReviseTask(ctx context.Context, actor model.User, id uint, note string) (*model.Task, error) {
	cmd := lifecycle.Command{Action: lifecycle.ActionRevise, Note: note}
	return s.transition(ctx, actor, id, cmd, assignedTo(actor))
}

func (s *TaskService) OverrideProgress(ctx context.Context, actor model.User, id uint, progress int, note string) (*model.Task, error) {
	cmd := lifecycle.Command{Action: lifecycle.ActionOverrideProgress, Progress: progress, Note: note}
	return s.transition(ctx, actor, id, cmd, assignedTo(actor))
}

func (s *TaskService) DeleteTask(ctx context.Context, actor model.User, id uint) error {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := lifecycle.CanDelete(task, actor); err != nil {
		return rejection(err)
	}
	return s.tasks.Delete(ctx, task)
}

// transition loads the task, runs cmd through the lifecycle machine and
// persists the result. The payload is checked before anything is read.
func (s *TaskService) transition(
	ctx context.Context,
	actor model.User,
	id uint,
	cmd lifecycle.Command,
	guard func(*model.Task) error,
) (*model.Task, error) {
	if err := lifecycle.Validate(cmd); err != nil {
		return nil, err
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard(task); err != nil {
		return nil, err
	}

	cmd.Actor = actor
	cmd.At = s.now().UTC()

	next, err := lifecycle.Apply(task, cmd)
	if err != nil {
		return nil, rejection(err)
	}

	if err := s.tasks.Save(ctx, next); err != nil {
		return nil, err
	}
	return s.tasks.FindByID(ctx, id)
}

func (s *TaskService) leader(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Validation(fmt.Sprintf("assigned leader %d does not exist", id))
		}
		return nil, err
	}
	if user.Role != constants.RoleLeader {
		return nil, apperrors.Validation(fmt.Sprintf("user %s is not a leader", user.Username))
	}
	return user, nil
}

func ownedBy(actor model.User) func(*model.Task) error {
	return func(t *model.Task) error {
		if !t.IsCreatedBy(actor.ID) {
			return apperrors.Forbidden(fmt.Sprintf("task %d was not created by %s", t.ID, actor.Username))
		}
		return nil
	}
}

func assignedTo(actor model.User) func(*model.Task) error {
	return func(t *model.Task) error {
		if t.AssignedLeaderID != actor.ID {
			return apperrors.Forbidden(fmt.Sprintf("task %d is not assigned to %s", t.ID, actor.Username))
		}
		return nil
	}
}

// rejection reports a transition the machine refused as a conflict with the
// task's current state, keeping the machine's reason as the cause.
func rejection(err error) error {
	if errors.Is(err, apperrors.ErrInvalidTransition) {
		return apperrors.Wrap(apperrors.KindConflict, apperrors.Message(err), err)
	}
	return err
}
