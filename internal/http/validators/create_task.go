package validators

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	dto "task-tracker.com/task-tracker/internal/data_models"
	"task-tracker.com/task-tracker/internal/services"
	model "task-tracker.com/task-tracker/pkg/models"
)

// ValidateTaskRequest checks a create or edit body and converts it into the
// service input.
func ValidateTaskRequest(r *dto.TaskRequest) (services.TaskInput, error) {
	if strings.TrimSpace(r.Title) == "" {
		return services.TaskInput{}, echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if r.AssigneeID == 0 {
		return services.TaskInput{}, echo.NewHTTPError(http.StatusBadRequest, "assignee_id is required")
	}
	if strings.TrimSpace(r.DueDate) == "" {
		return services.TaskInput{}, echo.NewHTTPError(http.StatusBadRequest, "due_date is required")
	}

	deadline, err := model.ParseDeadline(r.DueDate)
	if err != nil {
		return services.TaskInput{}, echo.NewHTTPError(http.StatusBadRequest, "due_date must be YYYY-MM-DD or an RFC 3339 timestamp")
	}

	return services.TaskInput{
		Title:            strings.TrimSpace(r.Title),
		Description:      r.Description,
		AssignedLeaderID: r.AssigneeID,
		Deadline:         deadline,
		StartNow:         r.StartNow,
	}, nil
}
