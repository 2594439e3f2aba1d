package http

import (
	"time"

	"github.com/labstack/echo/v4"

	middleware "task-tracker.com/task-tracker/internal/http/middlewares"
	"task-tracker.com/task-tracker/pkg/constants"
)

func Register(e *echo.Echo, h *Handler, authn middleware.Authenticator, rateLimitPerMinute int) {
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	authed := middleware.Authenticate(authn)
	executor := middleware.RequireRole(constants.RoleExecutor)
	leader := middleware.RequireRole(constants.RoleLeader)
	manager := middleware.RequireRole(constants.RoleManager)

	e.POST("/auth/login", h.Login)
	e.POST("/auth/logout", h.Logout, authed)
	e.GET("/auth/me", h.Me, authed)

	e.GET("/users", h.ListUsers, authed, executor)

	tasks := e.Group("/tasks", authed)

	tasks.POST("", h.CreateTask, executor)
	tasks.GET("", h.ListTasks(constants.ScopeAll), executor)
	tasks.PUT("/:id", h.UpdateTask, executor)
	tasks.PUT("/:id/progress", h.UpdateProgress, executor)
	tasks.PUT("/:id/submit", h.SubmitTask, executor)
	tasks.DELETE("/:id", h.DeleteTask, executor)

	tasks.GET("/pending", h.ListTasks(constants.ScopePending), leader)
	tasks.PUT("/:id/revise", h.ReviseTask, leader)
	tasks.PUT("/:id/approve", h.ApproveTask, leader)
	tasks.PUT("/:id/progress/override", h.OverrideProgress, leader)

	tasks.GET("/approved", h.ListTasks(constants.ScopeApproved), manager)

	tasks.GET("/summary", h.Summary)
	tasks.GET("/:id", h.GetTask)
}
