package render

import (
	"strings"
	"testing"
	"time"

	"task-tracker.com/task-tracker/internal/dashboard"
	"task-tracker.com/task-tracker/internal/kpi"
	"task-tracker.com/task-tracker/internal/lifecycle"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

func TestProgressBar(t *testing.T) {
	cases := map[int]string{
		0:   "░░░░░░░░░░   0%",
		50:  "█████░░░░░  50%",
		100: "██████████ 100%",
		150: "██████████ 100%",
	}
	for progress, want := range cases {
		if got := ProgressBar(progress, 10); got != want {
			t.Errorf("ProgressBar(%d) = %q, want %q", progress, got, want)
		}
	}
}

func TestSummary_ShowsOverdueOnlyWhenPresent(t *testing.T) {
	line := Summary(kpi.Summary{Total: 3, InProgress: 1, AverageProgress: 40, UpcomingDeadlines: 2})
	if !strings.Contains(line, "Avg progress 40%") || strings.Contains(line, "Overdue") {
		t.Errorf("unexpected summary line %q", line)
	}

	line = Summary(kpi.Summary{Overdue: 2})
	if !strings.Contains(line, "Overdue 2") {
		t.Errorf("expected overdue count in %q", line)
	}
}

func TestDashboard(t *testing.T) {
	view := &dashboard.View{
		Actor: model.User{Username: "leader1", Role: constants.RoleLeader},
		Scope: constants.ScopePending,
		Rows: []dashboard.Row{{
			Task: model.Task{
				ID:             7,
				Title:          "Audit warehouse",
				Status:         constants.StatusSubmitted,
				Progress:       30,
				Deadline:       time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
				AssignedLeader: model.User{Username: "leader1"},
			},
			Actions: lifecycle.ActionSet{lifecycle.PermView, lifecycle.PermApprove, lifecycle.PermReject},
		}},
		Summary:  kpi.Summary{Total: 1},
		LoadedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}

	out := Dashboard(view)
	for _, want := range []string{"leader1", "pending", "Audit warehouse", "Submitted", "2024-01-05", "view, approve, reject"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTaskTable_MarksInconsistentRows(t *testing.T) {
	rows := []dashboard.Row{{
		Task:    model.Task{ID: 4, Title: "Restock", Status: constants.StatusInProgress, Progress: 140},
		Actions: lifecycle.ActionSet{lifecycle.PermView},
		Problem: "progress 140 is outside [0,100]",
	}}

	out := TaskTable(rows)
	if !strings.Contains(out, "[inconsistent]") {
		t.Errorf("expected flagged row in:\n%s", out)
	}
	if !strings.Contains(out, "100%") {
		t.Errorf("expected progress bar clamped to 100%% in:\n%s", out)
	}
}

func TestTaskTable_Empty(t *testing.T) {
	if out := TaskTable(nil); !strings.Contains(out, "No tasks.") {
		t.Errorf("unexpected empty table %q", out)
	}
}

func TestTaskDetail_ListsHistory(t *testing.T) {
	task := &model.Task{
		ID:       7,
		Title:    "Audit warehouse",
		Status:   constants.StatusRevision,
		Deadline: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Histories: []model.HistoryEntry{
			{Action: constants.HistorySubmit, ActionBy: model.User{Username: "pelaksana1"}},
			{Action: constants.HistoryRevision, ActionBy: model.User{Username: "leader1"}, Note: "Missing totals"},
		},
	}

	out := TaskDetail(task)
	submit := strings.Index(out, "submit")
	revision := strings.Index(out, "Missing totals")
	if submit < 0 || revision < 0 || submit > revision {
		t.Errorf("expected history in chronological order:\n%s", out)
	}
	if !strings.Contains(out, "Revision") {
		t.Errorf("expected status label in output:\n%s", out)
	}
}
