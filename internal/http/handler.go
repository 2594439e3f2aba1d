package http

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	dto "task-tracker.com/task-tracker/internal/data_models"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	middleware "task-tracker.com/task-tracker/internal/http/middlewares"
	"task-tracker.com/task-tracker/internal/http/validators"
	"task-tracker.com/task-tracker/internal/services"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

type Handler struct {
	taskService *services.TaskService
	authService *services.AuthService
}

func NewHandler(taskService *services.TaskService, authService *services.AuthService) *Handler {
	return &Handler{
		taskService: taskService,
		authService: authService,
	}
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.TaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	in, err := validators.ValidateTaskRequest(&req)
	if err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), actor(c), in)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusCreated, dto.TaskResponse{Message: "Task created successfully", Task: task})
}

func (h *Handler) UpdateTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req dto.TaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	in, err := validators.ValidateTaskRequest(&req)
	if err != nil {
		return err
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), actor(c), id, in)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, dto.TaskResponse{Message: "Task updated successfully", Task: task})
}

func (h *Handler) UpdateProgress(c echo.Context) error {
	return h.progress(c, h.taskService.UpdateProgress, "Progress updated successfully")
}

func (h *Handler) OverrideProgress(c echo.Context) error {
	return h.progress(c, h.taskService.OverrideProgress, "Progress overridden successfully")
}

type progressFunc func(ctx context.Context, actor model.User, id uint, progress int, note string) (*model.Task, error)

func (h *Handler) progress(c echo.Context, apply progressFunc, message string) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req dto.ProgressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	progress, err := validators.ValidateProgressRequest(&req)
	if err != nil {
		return err
	}

	task, err := apply(c.Request().Context(), actor(c), id, progress, req.Note)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, dto.TaskResponse{Message: message, Task: task})
}

func (h *Handler) SubmitTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.SubmitTask(c.Request().Context(), actor(c), id)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, dto.TaskResponse{Message: "Task submitted successfully", Task: task})
}

func (h *Handler) ApproveTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.ApproveTask(c.Request().Context(), actor(c), id)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, dto.TaskResponse{Message: "Task approved successfully", Task: task})
}

func (h *Handler) ReviseTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req dto.ReviseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateReviseRequest(&req); err != nil {
		return err
	}

	task, err := h.taskService.ReviseTask(c.Request().Context(), actor(c), id, req.Note)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, dto.TaskResponse{Message: "Task sent back for revision", Task: task})
}

func (h *Handler) DeleteTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), actor(c), id); err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task deleted successfully"})
}

func (h *Handler) GetTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), actor(c), id)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, dto.TaskResponse{Message: "ok", Task: task})
}

// ListTasks serves one fixed scope; the route decides which.
func (h *Handler) ListTasks(scope constants.TaskScope) echo.HandlerFunc {
	return func(c echo.Context) error {
		tasks, err := h.taskService.ListTasks(c.Request().Context(), actor(c), scope)
		if err != nil {
			return fail(err)
		}
		if tasks == nil {
			tasks = []model.Task{}
		}

		return c.JSON(http.StatusOK, dto.TaskListResponse{Tasks: tasks})
	}
}

func (h *Handler) Summary(c echo.Context) error {
	scope := constants.TaskScope(c.QueryParam("scope"))
	if scope == "" {
		scope = constants.DefaultScope(actor(c).Role)
	}

	summary, err := h.taskService.Summary(c.Request().Context(), actor(c), scope)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, dto.SummaryResponse{Scope: string(scope), Summary: summary})
}

func (h *Handler) ListUsers(c echo.Context) error {
	var role constants.Role
	if raw := c.QueryParam("role"); raw != "" {
		parsed, ok := constants.ParseRole(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown role "+raw)
		}
		role = parsed
	}

	users, err := h.authService.ListUsers(c.Request().Context(), role)
	if err != nil {
		return fail(err)
	}
	if users == nil {
		users = []model.User{}
	}

	return c.JSON(http.StatusOK, dto.UserListResponse{Users: users})
}

func (h *Handler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateLoginRequest(&req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     session.Token,
		Role:      string(session.User.Role),
		UserID:    session.User.ID,
		Username:  session.User.Username,
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *Handler) Logout(c echo.Context) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

func (h *Handler) Me(c echo.Context) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	resp := dto.IdentityResponse{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     string(claims.Role),
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	return c.JSON(http.StatusOK, resp)
}

func actor(c echo.Context) model.User {
	user, _ := middleware.CurrentUser(c)
	return user
}

func taskID(c echo.Context) (uint, error) {
	raw := c.Param("id")
	if raw == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrTaskIDRequired.Message)
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrInvalidTaskID.Message)
	}
	return uint(id), nil
}

// fail turns a service error into the HTTP error echo renders. Faults that
// are not one of the known kinds are logged and reported without detail.
func fail(err error) error {
	if apperrors.KindOf(err) == apperrors.KindInternal {
		log.Printf("request failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	return echo.NewHTTPError(apperrors.StatusCode(err), apperrors.Message(err)).SetInternal(err)
}
