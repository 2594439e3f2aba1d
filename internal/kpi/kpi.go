// Package kpi computes dashboard summary figures over a set of tasks.
package kpi

import (
	"time"

	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

const DefaultHorizonDays = 7

type Summary struct {
	Total             int                          `json:"total"`
	InProgress        int                          `json:"in_progress"`
	AverageProgress   int                          `json:"average_progress"`
	UpcomingDeadlines int                          `json:"upcoming_deadlines"`
	Overdue           int                          `json:"overdue"`
	ByStatus          map[constants.TaskStatus]int `json:"by_status"`
}

func CountByStatus(tasks []model.Task, status constants.TaskStatus) int {
	n := 0
	for i := range tasks {
		if tasks[i].Status == status {
			n++
		}
	}
	return n
}

// AverageProgress averages progress over tasks that are not completed,
// rounded to the nearest whole percent. No such tasks gives 0.
func AverageProgress(tasks []model.Task) int {
	sum, n := 0, 0
	for i := range tasks {
		if tasks[i].Status == constants.StatusCompleted {
			continue
		}
		sum += tasks[i].PercentComplete()
		n++
	}
	if n == 0 {
		return 0
	}
	return (sum + n/2) / n
}

func UpcomingDeadlineCount(tasks []model.Task, now time.Time, horizonDays int) int {
	n := 0
	for i := range tasks {
		if tasks[i].IsUpcoming(now, horizonDays) {
			n++
		}
	}
	return n
}

func OverdueCount(tasks []model.Task, now time.Time) int {
	n := 0
	for i := range tasks {
		if tasks[i].IsOverdue(now) {
			n++
		}
	}
	return n
}

func Summarize(tasks []model.Task, now time.Time, horizonDays int) Summary {
	byStatus := make(map[constants.TaskStatus]int, len(constants.TaskStatuses))
	for _, status := range constants.TaskStatuses {
		byStatus[status] = CountByStatus(tasks, status)
	}

	return Summary{
		Total:             len(tasks),
		InProgress:        byStatus[constants.StatusInProgress],
		AverageProgress:   AverageProgress(tasks),
		UpcomingDeadlines: UpcomingDeadlineCount(tasks, now, horizonDays),
		Overdue:           OverdueCount(tasks, now),
		ByStatus:          byStatus,
	}
}
