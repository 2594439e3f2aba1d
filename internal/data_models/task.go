// Package dto holds the JSON bodies exchanged between the API server and
// its clients.
package dto

import (
	"time"

	"task-tracker.com/task-tracker/internal/kpi"
	model "task-tracker.com/task-tracker/pkg/models"
)

type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssigneeID  uint   `json:"assignee_id"`
	DueDate     string `json:"due_date"`
	StartNow    bool   `json:"start_now,omitempty"`
}

// ProgressRequest uses a pointer so a missing value is told apart from 0.
type ProgressRequest struct {
	Progress *int   `json:"progress"`
	Note     string `json:"note,omitempty"`
}

type ReviseRequest struct {
	Note string `json:"note"`
}

type TaskResponse struct {
	Message string      `json:"message"`
	Task    *model.Task `json:"task"`
}

type TaskListResponse struct {
	Tasks []model.Task `json:"tasks"`
}

type SummaryResponse struct {
	Scope   string      `json:"scope"`
	Summary kpi.Summary `json:"summary"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UserListResponse struct {
	Users []model.User `json:"users"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// IdentityResponse describes who a bearer token belongs to.
type IdentityResponse struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}
