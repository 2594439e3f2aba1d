package validators

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	dto "task-tracker.com/task-tracker/internal/data_models"
	model "task-tracker.com/task-tracker/pkg/models"
)

func ValidateProgressRequest(r *dto.ProgressRequest) (int, error) {
	if r.Progress == nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "progress is required")
	}
	if p := *r.Progress; p < model.MinProgress || p > model.MaxProgress {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("progress must be between 0 and 100, got %d", p))
	}
	return *r.Progress, nil
}

func ValidateReviseRequest(r *dto.ReviseRequest) error {
	if strings.TrimSpace(r.Note) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "revision note is required")
	}
	return nil
}

func ValidateLoginRequest(r *dto.LoginRequest) error {
	if r.Username == "" || r.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}
	return nil
}
