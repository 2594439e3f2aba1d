// Package dashboard assembles what a signed-in user sees: their task list,
// the actions each task offers them, and the KPI figures. Actions are
// checked against the lifecycle machine before anything is sent, and every
// successful change is followed by a full reload.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"task-tracker.com/task-tracker/internal/client"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/internal/kpi"
	"task-tracker.com/task-tracker/internal/lifecycle"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

// API is the part of the task client the dashboard drives.
type API interface {
	FetchTasks(ctx context.Context, cred client.Credential, scope constants.TaskScope) ([]model.Task, error)
	UpdateTask(ctx context.Context, cred client.Credential, id uint, in client.TaskInput) (*model.Task, error)
	DeleteTask(ctx context.Context, cred client.Credential, id uint) error
	ApproveTask(ctx context.Context, cred client.Credential, id uint) (*model.Task, error)
	ReviseTask(ctx context.Context, cred client.Credential, id uint, note string) (*model.Task, error)
	SubmitTask(ctx context.Context, cred client.Credential, id uint) (*model.Task, error)
	UpdateProgress(ctx context.Context, cred client.Credential, id uint, progress int, note string) (*model.Task, error)
	OverrideProgress(ctx context.Context, cred client.Credential, id uint, progress int, note string) (*model.Task, error)
}

type Row struct {
	Task    model.Task
	Actions lifecycle.ActionSet
	Overdue bool
	// Problem is set when the server sent a task that breaks an invariant.
	// A status that disagrees with the ledger is replaced by the ledger's
	// status; any other breakage leaves the row view-only.
	Problem string
}

// Locked reports whether the row accepts no actions.
func (r Row) Locked() bool {
	return r.Problem != "" && r.Task.IsValid() != nil
}

type View struct {
	Actor    model.User
	Scope    constants.TaskScope
	Rows     []Row
	Summary  kpi.Summary
	LoadedAt time.Time
}

// Find returns the row for task id.
func (v *View) Find(id uint) (Row, bool) {
	for _, row := range v.Rows {
		if row.Task.ID == id {
			return row, true
		}
	}
	return Row{}, false
}

type Dashboard struct {
	api         API
	cred        client.Credential
	actor       model.User
	scope       constants.TaskScope
	horizonDays int
	now         func() time.Time

	mu   sync.Mutex
	view *View
}

type Option func(*Dashboard)

func WithScope(scope constants.TaskScope) Option {
	return func(d *Dashboard) {
		d.scope = scope
	}
}

func WithHorizonDays(days int) Option {
	return func(d *Dashboard) {
		d.horizonDays = days
	}
}

func New(api API, cred client.Credential, actor model.User, opts ...Option) *Dashboard {
	d := &Dashboard{
		api:         api,
		cred:        cred,
		actor:       actor,
		scope:       constants.DefaultScope(actor.Role),
		horizonDays: kpi.DefaultHorizonDays,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load fetches the task list and rebuilds the view. A task that breaks an
// invariant is still listed, flagged through Row.Problem.
func (d *Dashboard) Load(ctx context.Context) (*View, error) {
	tasks, err := d.api.FetchTasks(ctx, d.cred, d.scope)
	if err != nil {
		return nil, err
	}

	now := d.now()
	rows := make([]Row, 0, len(tasks))
	for i := range tasks {
		rows = append(rows, d.annotate(tasks[i], now))
		tasks[i] = rows[i].Task
	}

	view := &View{
		Actor:    d.actor,
		Scope:    d.scope,
		Rows:     rows,
		Summary:  kpi.Summarize(tasks, now, d.horizonDays),
		LoadedAt: now,
	}

	d.mu.Lock()
	d.view = view
	d.mu.Unlock()

	return view, nil
}

func (d *Dashboard) annotate(task model.Task, now time.Time) Row {
	row := Row{Task: task, Overdue: task.IsOverdue(now)}

	err := task.IsValid()
	if err == nil {
		row.Actions = lifecycle.AllowedActions(&row.Task, d.actor)
		return row
	}

	row.Problem = apperrors.Message(err)
	if derived := model.CurrentStatus(task.Histories); derived != task.Status {
		row.Task.Status = derived
		row.Overdue = row.Task.IsOverdue(now)
	}
	if row.Locked() {
		row.Actions = lifecycle.ActionSet{lifecycle.PermView}
		return row
	}
	row.Actions = lifecycle.AllowedActions(&row.Task, d.actor)
	return row
}

// View returns the last loaded view, or nil before the first Load.
func (d *Dashboard) View() *View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}

func (d *Dashboard) Approve(ctx context.Context, id uint) (*View, error) {
	return d.act(ctx, id, lifecycle.Command{Action: lifecycle.ActionApprove}, func() error {
		_, err := d.api.ApproveTask(ctx, d.cred, id)
		return err
	})
}

func (d *Dashboard) Revise(ctx context.Context, id uint, note string) (*View, error) {
	return d.act(ctx, id, lifecycle.Command{Action: lifecycle.ActionRevise, Note: note}, func() error {
		_, err := d.api.ReviseTask(ctx, d.cred, id, note)
		return err
	})
}

func (d *Dashboard) Submit(ctx context.Context, id uint) (*View, error) {
	return d.act(ctx, id, lifecycle.Command{Action: lifecycle.ActionSubmit}, func() error {
		_, err := d.api.SubmitTask(ctx, d.cred, id)
		return err
	})
}

// UpdateProgress sets progress as the actor's role allows: executors report
// progress, leaders override it.
func (d *Dashboard) UpdateProgress(ctx context.Context, id uint, progress int, note string) (*View, error) {
	action, _ := lifecycle.ActionFor(lifecycle.PermUpdateProgress, d.actor.Role)
	cmd := lifecycle.Command{Action: action, Progress: progress, Note: note}

	return d.act(ctx, id, cmd, func() error {
		var err error
		if action == lifecycle.ActionOverrideProgress {
			_, err = d.api.OverrideProgress(ctx, d.cred, id, progress, note)
		} else {
			_, err = d.api.UpdateProgress(ctx, d.cred, id, progress, note)
		}
		return err
	})
}

// Resubmit sends a task in revision back for review with edited fields.
func (d *Dashboard) Resubmit(ctx context.Context, id uint, in client.TaskInput) (*View, error) {
	fields := lifecycle.Fields{
		Title:            in.Title,
		Description:      in.Description,
		AssignedLeaderID: in.AssignedLeaderID,
		Deadline:         in.Deadline,
	}
	cmd := lifecycle.Command{Action: lifecycle.ActionResubmit, Fields: &fields}

	return d.act(ctx, id, cmd, func() error {
		_, err := d.api.UpdateTask(ctx, d.cred, id, in)
		return err
	})
}

func (d *Dashboard) Delete(ctx context.Context, id uint) (*View, error) {
	row, err := d.row(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanDelete(&row.Task, d.actor); err != nil {
		return nil, err
	}
	if err := d.api.DeleteTask(ctx, d.cred, id); err != nil {
		return nil, err
	}
	return d.Load(ctx)
}

// act dry-runs cmd on the loaded task and only calls send when the machine
// accepts it. The view is reloaded after a successful send.
func (d *Dashboard) act(ctx context.Context, id uint, cmd lifecycle.Command, send func() error) (*View, error) {
	row, err := d.row(ctx, id)
	if err != nil {
		return nil, err
	}

	cmd.Actor = d.actor
	cmd.At = d.now()
	if _, err := lifecycle.Apply(&row.Task, cmd); err != nil {
		return nil, err
	}

	if err := send(); err != nil {
		return nil, err
	}
	return d.Load(ctx)
}

func (d *Dashboard) row(ctx context.Context, id uint) (Row, error) {
	view := d.View()
	if view == nil {
		var err error
		if view, err = d.Load(ctx); err != nil {
			return Row{}, err
		}
	}

	row, ok := view.Find(id)
	if !ok {
		return Row{}, apperrors.NotFound(fmt.Sprintf("task %d is not on this dashboard", id))
	}
	if row.Locked() {
		return Row{}, apperrors.Validation(fmt.Sprintf("task %d cannot be changed: %s", id, row.Problem))
	}
	return row, nil
}
