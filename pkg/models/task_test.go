package model

import (
	"errors"
	"testing"
	"time"

	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/pkg/constants"
)

func TestTask_IsValid(t *testing.T) {
	submitted := []HistoryEntry{{Action: constants.HistorySubmit, Status: constants.StatusSubmitted}}

	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{name: "new task", task: Task{Status: constants.StatusPending}},
		{name: "submitted with ledger", task: Task{Status: constants.StatusSubmitted, Progress: 10, Histories: submitted}},
		{name: "progress above range", task: Task{Status: constants.StatusSubmitted, Progress: 101, Histories: submitted}, wantErr: true},
		{name: "negative progress", task: Task{Status: constants.StatusPending, Progress: -1}, wantErr: true},
		{name: "unknown status", task: Task{Status: "archived"}, wantErr: true},
		{name: "no history but active", task: Task{Status: constants.StatusInProgress}, wantErr: true},
		{name: "status disagrees with ledger", task: Task{Status: constants.StatusCompleted, Histories: submitted}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.IsValid()
			if tt.wantErr && !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected valid task, got %v", err)
			}
		})
	}
}

func TestTask_Deadlines(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	task := Task{Status: constants.StatusInProgress, Deadline: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}
	if !task.IsUpcoming(now, 7) {
		t.Error("expected task due in four days to be upcoming")
	}
	if task.IsUpcoming(now, 3) {
		t.Error("expected task outside a three day horizon not to be upcoming")
	}
	if task.IsOverdue(now) {
		t.Error("task is not overdue yet")
	}

	task.Status = constants.StatusCompleted
	if task.IsUpcoming(now, 7) {
		t.Error("completed tasks are never upcoming")
	}

	late := Task{Status: constants.StatusSubmitted, Deadline: now.Add(-time.Hour)}
	if !late.IsOverdue(now) {
		t.Error("expected task past its deadline to be overdue")
	}
	if !late.IsUpcoming(now, 7) {
		t.Error("expected overdue task to count as upcoming")
	}

	var noDeadline Task
	if noDeadline.IsOverdue(now) || noDeadline.IsUpcoming(now, 7) {
		t.Error("task without deadline is neither overdue nor upcoming")
	}
}

func TestTask_PercentComplete(t *testing.T) {
	for progress, want := range map[int]int{-5: 0, 0: 0, 42: 42, 100: 100, 140: 100} {
		task := Task{Progress: progress}
		if got := task.PercentComplete(); got != want {
			t.Errorf("progress %d: expected %d, got %d", progress, want, got)
		}
	}
}

func TestTask_CloneIsIndependent(t *testing.T) {
	id := uint(3)
	orig := &Task{
		Histories:    []HistoryEntry{{Action: constants.HistorySubmit}},
		ProgressByID: &id,
	}

	c := orig.Clone()
	c.Histories[0].Note = "changed"
	*c.ProgressByID = 9

	if orig.Histories[0].Note != "" {
		t.Error("clone shares history backing array")
	}
	if *orig.ProgressByID != 3 {
		t.Error("clone shares progress_by pointer")
	}
}
