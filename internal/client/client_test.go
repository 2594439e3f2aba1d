package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	dto "task-tracker.com/task-tracker/internal/data_models"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

var cred = Credential{Token: "t0k3n"}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   apperrors.Kind
	}{
		{http.StatusBadRequest, apperrors.KindValidation},
		{http.StatusUnprocessableEntity, apperrors.KindValidation},
		{http.StatusUnauthorized, apperrors.KindAuth},
		{http.StatusForbidden, apperrors.KindAuth},
		{http.StatusNotFound, apperrors.KindNotFound},
		{http.StatusConflict, apperrors.KindConflict},
		{http.StatusInternalServerError, apperrors.KindTransport},
		{http.StatusTooManyRequests, apperrors.KindTransport},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_ = json.NewEncoder(w).Encode(dto.MessageResponse{Message: "server says no"})
		}))

		_, err := New(srv.URL).ApproveTask(context.Background(), cred, 1)
		srv.Close()

		if got := apperrors.KindOf(err); got != tc.want {
			t.Errorf("status %d: expected %s, got %s (%v)", tc.status, tc.want, got, err)
		}
		if apperrors.Message(err) != "server says no" {
			t.Errorf("status %d: server message lost: %q", tc.status, apperrors.Message(err))
		}
	}
}

func TestStatusMapping_EmptyBodyUsesStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetTask(context.Background(), cred, 5)
	if !errors.Is(err, apperrors.ErrNotFound) || apperrors.Message(err) != "Not Found" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestNetworkFailureIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).FetchTasks(context.Background(), cred, constants.ScopeAll)
	if !errors.Is(err, apperrors.ErrTransport) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestLocalValidationSkipsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	if _, err := c.FetchTasks(ctx, Credential{}, constants.ScopeAll); !errors.Is(err, apperrors.ErrAuth) {
		t.Errorf("expected auth error without token, got %v", err)
	}
	if _, err := c.FetchTasks(ctx, cred, "archived"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error for unknown filter, got %v", err)
	}
	if _, err := c.ReviseTask(ctx, cred, 1, " "); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error for blank note, got %v", err)
	}
	if _, err := c.UpdateProgress(ctx, cred, 1, 101, ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error for progress 101, got %v", err)
	}
	if _, err := c.OverrideProgress(ctx, cred, 1, -1, ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error for progress -1, got %v", err)
	}
	if _, err := c.CreateTask(ctx, cred, TaskInput{Title: "x"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error for missing leader, got %v", err)
	}
	if err := c.DeleteTask(ctx, cred, 0); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error for zero id, got %v", err)
	}

	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestCreateTask_SendsRequest(t *testing.T) {
	var got dto.TaskRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer t0k3n" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(dto.TaskResponse{
			Message: "Task created successfully",
			Task:    &model.Task{ID: 42, Status: constants.StatusSubmitted},
		})
	}))
	defer srv.Close()

	id, err := New(srv.URL).CreateTask(context.Background(), cred, TaskInput{
		Title:            "  Audit warehouse ",
		AssignedLeaderID: 2,
		Deadline:         time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 42 {
		t.Errorf("expected id 42, got %d", id)
	}
	if got.Title != "Audit warehouse" || got.AssigneeID != 2 || got.DueDate != "2024-01-05T00:00:00Z" {
		t.Errorf("unexpected request body %+v", got)
	}
}

func TestFetchTasks_Paths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_ = json.NewEncoder(w).Encode(dto.TaskListResponse{Tasks: []model.Task{{ID: 1}}})
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	for _, scope := range []constants.TaskScope{constants.ScopeAll, constants.ScopePending, constants.ScopeApproved} {
		tasks, err := c.FetchTasks(context.Background(), cred, scope)
		if err != nil || len(tasks) != 1 {
			t.Fatalf("%s: %v", scope, err)
		}
	}

	want := []string{"/tasks", "/tasks/pending", "/tasks/approved"}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("request %d: expected %s, got %s", i, want[i], paths[i])
		}
	}
}

func TestFetchUsers_RoleQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("role") != "leader" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(dto.UserListResponse{Users: []model.User{{ID: 2, Username: "leader1", Role: constants.RoleLeader}}})
	}))
	defer srv.Close()

	users, err := New(srv.URL).FetchUsers(context.Background(), cred, constants.RoleLeader)
	if err != nil || len(users) != 1 || users[0].Username != "leader1" {
		t.Fatalf("unexpected users %+v (%v)", users, err)
	}
}

func TestMe_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" || r.Header.Get("Authorization") != "Bearer t0k3n" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(dto.IdentityResponse{UserID: 2, Username: "leader1", Role: "leader"})
	}))
	defer srv.Close()

	me, err := New(srv.URL).Me(context.Background(), cred)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.UserID != 2 || me.Username != "leader1" || me.Role != "leader" {
		t.Errorf("unexpected identity %+v", me)
	}

	if _, err := New(srv.URL).Me(context.Background(), Credential{}); !errors.Is(err, apperrors.ErrAuth) {
		t.Errorf("expected auth error without a token, got %v", err)
	}
}
