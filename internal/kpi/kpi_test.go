package kpi

import (
	"testing"
	"time"

	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestAverageProgress(t *testing.T) {
	if got := AverageProgress(nil); got != 0 {
		t.Errorf("empty: expected 0, got %d", got)
	}

	tasks := []model.Task{
		{Progress: 50, Status: constants.StatusInProgress},
		{Progress: 100, Status: constants.StatusCompleted},
	}
	if got := AverageProgress(tasks); got != 50 {
		t.Errorf("expected completed task to be excluded, got %d", got)
	}

	onlyDone := []model.Task{{Progress: 100, Status: constants.StatusCompleted}}
	if got := AverageProgress(onlyDone); got != 0 {
		t.Errorf("expected 0 when every task is completed, got %d", got)
	}

	mixed := []model.Task{
		{Progress: 10, Status: constants.StatusSubmitted},
		{Progress: 25, Status: constants.StatusInProgress},
	}
	if got := AverageProgress(mixed); got != 18 {
		t.Errorf("expected 17.5 to round to 18, got %d", got)
	}
}

func TestUpcomingDeadlineCount(t *testing.T) {
	task := model.Task{Status: constants.StatusInProgress, Deadline: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}

	if got := UpcomingDeadlineCount([]model.Task{task}, now, DefaultHorizonDays); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}

	task.Status = constants.StatusCompleted
	if got := UpcomingDeadlineCount([]model.Task{task}, now, DefaultHorizonDays); got != 0 {
		t.Errorf("expected completed task to be ignored, got %d", got)
	}

	far := model.Task{Status: constants.StatusSubmitted, Deadline: now.AddDate(0, 0, 8)}
	if got := UpcomingDeadlineCount([]model.Task{far}, now, DefaultHorizonDays); got != 0 {
		t.Errorf("expected deadline beyond horizon to be ignored, got %d", got)
	}

	if got := UpcomingDeadlineCount(nil, now, DefaultHorizonDays); got != 0 {
		t.Errorf("empty: expected 0, got %d", got)
	}
}

func TestCountByStatus(t *testing.T) {
	tasks := []model.Task{
		{Status: constants.StatusSubmitted},
		{Status: constants.StatusSubmitted},
		{Status: constants.StatusRevision},
	}

	if got := CountByStatus(tasks, constants.StatusSubmitted); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := CountByStatus(nil, constants.StatusSubmitted); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestSummarize(t *testing.T) {
	tasks := []model.Task{
		{Status: constants.StatusInProgress, Progress: 40, Deadline: now.AddDate(0, 0, 2)},
		{Status: constants.StatusSubmitted, Progress: 20, Deadline: now.AddDate(0, 0, -1)},
		{Status: constants.StatusCompleted, Progress: 100, Deadline: now.AddDate(0, 0, -3)},
	}

	s := Summarize(tasks, now, DefaultHorizonDays)

	if s.Total != 3 || s.InProgress != 1 {
		t.Errorf("unexpected totals %+v", s)
	}
	if s.AverageProgress != 30 {
		t.Errorf("expected average 30, got %d", s.AverageProgress)
	}
	if s.UpcomingDeadlines != 2 {
		t.Errorf("expected 2 upcoming, got %d", s.UpcomingDeadlines)
	}
	if s.Overdue != 1 {
		t.Errorf("expected 1 overdue, got %d", s.Overdue)
	}
	if s.ByStatus[constants.StatusCompleted] != 1 || s.ByStatus[constants.StatusRevision] != 0 {
		t.Errorf("unexpected by-status counts %v", s.ByStatus)
	}

	empty := Summarize(nil, now, DefaultHorizonDays)
	if empty.Total != 0 || empty.AverageProgress != 0 || len(empty.ByStatus) != len(constants.TaskStatuses) {
		t.Errorf("unexpected empty summary %+v", empty)
	}
}
