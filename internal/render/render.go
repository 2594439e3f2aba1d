// Package render draws dashboards and task details for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"task-tracker.com/task-tracker/internal/dashboard"
	"task-tracker.com/task-tracker/internal/kpi"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

const dateLayout = "2006-01-02"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	statusColors = map[constants.TaskStatus]lipgloss.Color{
		constants.StatusPending:          lipgloss.Color("244"),
		constants.StatusInProgress:       lipgloss.Color("33"),
		constants.StatusSubmitted:        lipgloss.Color("214"),
		constants.StatusRevision:         lipgloss.Color("1"),
		constants.StatusApprovedByLeader: lipgloss.Color("141"),
		constants.StatusCompleted:        lipgloss.Color("2"),
	}
)

func StatusBadge(status constants.TaskStatus) string {
	color, ok := statusColors[status]
	if !ok {
		color = lipgloss.Color("244")
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(status.Label())
}

// ProgressBar renders progress as a fixed width bar followed by the percentage.
func ProgressBar(progress, width int) string {
	if width <= 0 {
		width = 10
	}
	if progress < model.MinProgress {
		progress = model.MinProgress
	}
	if progress > model.MaxProgress {
		progress = model.MaxProgress
	}
	filled := progress * width / model.MaxProgress
	return fmt.Sprintf("%s%s %3d%%", strings.Repeat("█", filled), strings.Repeat("░", width-filled), progress)
}

func Summary(s kpi.Summary) string {
	parts := []string{
		fmt.Sprintf("%s %d", labelStyle.Render("Total"), s.Total),
		fmt.Sprintf("%s %d", labelStyle.Render("In progress"), s.InProgress),
		fmt.Sprintf("%s %d%%", labelStyle.Render("Avg progress"), s.AverageProgress),
		fmt.Sprintf("%s %d", labelStyle.Render("Due soon"), s.UpcomingDeadlines),
	}
	if s.Overdue > 0 {
		parts = append(parts, overdueStyle.Render(fmt.Sprintf("Overdue %d", s.Overdue)))
	}
	return strings.Join(parts, mutedStyle.Render("  │  "))
}

func TaskTable(rows []dashboard.Row) string {
	if len(rows) == 0 {
		return mutedStyle.Render("No tasks.")
	}

	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		t := row.Task
		deadline := t.Deadline.Format(dateLayout)
		if row.Overdue {
			deadline = overdueStyle.Render(deadline + " !")
		}
		title := t.Title
		if row.Problem != "" {
			title += " " + overdueStyle.Render("[inconsistent]")
		}
		data = append(data, []string{
			fmt.Sprint(t.ID),
			title,
			StatusBadge(t.Status),
			ProgressBar(t.Progress, 10),
			deadline,
			t.AssignedLeader.Username,
			strings.Join(row.Actions.Strings(), ", "),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("ID", "TITLE", "STATUS", "PROGRESS", "DEADLINE", "LEADER", "ACTIONS").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

// Dashboard renders a full view: heading, KPI line and the task table.
func Dashboard(v *dashboard.View) string {
	heading := titleStyle.Render(fmt.Sprintf("%s · %s · %s tasks",
		v.Actor.Username, v.Actor.Role, v.Scope))
	loaded := mutedStyle.Render("loaded " + v.LoadedAt.Format(time.Kitchen))

	return lipgloss.JoinVertical(lipgloss.Left,
		heading+"  "+loaded,
		Summary(v.Summary),
		TaskTable(v.Rows),
	)
}

// TaskDetail renders one task with its full history, oldest entry first.
func TaskDetail(t *model.Task) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render(fmt.Sprintf("#%d", t.ID)), labelStyle.Render(t.Title))
	if t.Description != "" {
		fmt.Fprintf(&b, "%s\n", t.Description)
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Status:"), StatusBadge(t.Status))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Progress:"), ProgressBar(t.Progress, 20))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Deadline:"), t.Deadline.Format(dateLayout))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Leader:"), t.AssignedLeader.Username)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Created by:"), t.CreatedBy.Username)
	if t.ProgressBy != nil {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Progress by:"), t.ProgressBy.Username)
	}

	b.WriteString("\n" + labelStyle.Render("History") + "\n")
	if len(t.Histories) == 0 {
		b.WriteString(mutedStyle.Render("  none") + "\n")
	}
	for _, h := range t.Histories {
		line := fmt.Sprintf("  %s  %-15s %-10s",
			mutedStyle.Render(h.CreatedAt.Format("2006-01-02 15:04")),
			h.Action,
			h.ActionBy.Username)
		if h.Note != "" {
			line += "  " + h.Note
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}
