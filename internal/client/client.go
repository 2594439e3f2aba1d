// Package client talks to the task API on behalf of one signed-in user.
// Every call takes the caller's Credential explicitly; the client keeps no
// session state of its own.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	dto "task-tracker.com/task-tracker/internal/data_models"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/internal/kpi"
	"task-tracker.com/task-tracker/internal/lifecycle"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

const defaultTimeout = 15 * time.Second

type Credential struct {
	Token string
}

func (c Credential) check() error {
	if strings.TrimSpace(c.Token) == "" {
		return apperrors.Auth("not logged in")
	}
	return nil
}

// TaskInput is what an executor fills in when creating or resubmitting a task.
type TaskInput struct {
	Title            string
	Description      string
	AssignedLeaderID uint
	Deadline         time.Time
	StartNow         bool
}

func (in TaskInput) request() dto.TaskRequest {
	return dto.TaskRequest{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		AssigneeID:  in.AssignedLeaderID,
		DueDate:     in.Deadline.UTC().Format(time.RFC3339),
		StartNow:    in.StartNow,
	}
}

func (in TaskInput) validate() error {
	return lifecycle.ValidateFields(lifecycle.Fields{
		Title:            in.Title,
		Description:      in.Description,
		AssignedLeaderID: in.AssignedLeaderID,
		Deadline:         in.Deadline,
	})
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Login(ctx context.Context, username, password string) (*dto.LoginResponse, error) {
	if username == "" || password == "" {
		return nil, apperrors.Validation("username and password are required")
	}

	var resp dto.LoginResponse
	body := dto.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, Credential{}, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context, cred Credential) error {
	if err := cred.check(); err != nil {
		return err
	}
	return c.do(ctx, cred, http.MethodPost, "/auth/logout", nil, nil)
}

// Me asks the server who cred belongs to.
func (c *Client) Me(ctx context.Context, cred Credential) (*dto.IdentityResponse, error) {
	if err := cred.check(); err != nil {
		return nil, err
	}

	var resp dto.IdentityResponse
	if err := c.do(ctx, cred, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

var scopePaths = map[constants.TaskScope]string{
	constants.ScopeAll:      "/tasks",
	constants.ScopePending:  "/tasks/pending",
	constants.ScopeApproved: "/tasks/approved",
}

func (c *Client) FetchTasks(ctx context.Context, cred Credential, scope constants.TaskScope) ([]model.Task, error) {
	if err := cred.check(); err != nil {
		return nil, err
	}
	path, ok := scopePaths[scope]
	if !ok {
		return nil, apperrors.Validation(fmt.Sprintf("unknown filter %q", scope))
	}

	var resp dto.TaskListResponse
	if err := c.do(ctx, cred, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (c *Client) FetchUsers(ctx context.Context, cred Credential, role constants.Role) ([]model.User, error) {
	if err := cred.check(); err != nil {
		return nil, err
	}
	if role != "" && !role.IsValid() {
		return nil, apperrors.Validation(fmt.Sprintf("unknown role %q", role))
	}

	path := "/users"
	if role != "" {
		path += "?role=" + url.QueryEscape(string(role))
	}

	var resp dto.UserListResponse
	if err := c.do(ctx, cred, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) GetTask(ctx context.Context, cred Credential, id uint) (*model.Task, error) {
	if err := checkID(cred, id); err != nil {
		return nil, err
	}
	return c.taskCall(ctx, cred, http.MethodGet, taskPath(id, ""), nil)
}

// Summary fetches KPI figures for scope; an empty scope lets the server
// pick the caller's default.
func (c *Client) Summary(ctx context.Context, cred Credential, scope constants.TaskScope) (kpi.Summary, error) {
	if err := cred.check(); err != nil {
		return kpi.Summary{}, err
	}

	path := "/tasks/summary"
	if scope != "" {
		if !scope.IsValid() {
			return kpi.Summary{}, apperrors.Validation(fmt.Sprintf("unknown filter %q", scope))
		}
		path += "?scope=" + url.QueryEscape(string(scope))
	}

	var resp dto.SummaryResponse
	if err := c.do(ctx, cred, http.MethodGet, path, nil, &resp); err != nil {
		return kpi.Summary{}, err
	}
	return resp.Summary, nil
}

// CreateTask returns the id of the new task.
func (c *Client) CreateTask(ctx context.Context, cred Credential, in TaskInput) (uint, error) {
	if err := cred.check(); err != nil {
		return 0, err
	}
	if err := in.validate(); err != nil {
		return 0, err
	}

	task, err := c.taskCall(ctx, cred, http.MethodPost, "/tasks", in.request())
	if err != nil {
		return 0, err
	}
	return task.ID, nil
}

// UpdateTask resubmits a task that is in revision with the given fields.
func (c *Client) UpdateTask(ctx context.Context, cred Credential, id uint, in TaskInput) (*model.Task, error) {
	if err := checkID(cred, id); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	return c.taskCall(ctx, cred, http.MethodPut, taskPath(id, ""), in.request())
}

func (c *Client) DeleteTask(ctx context.Context, cred Credential, id uint) error {
	if err := checkID(cred, id); err != nil {
		return err
	}
	return c.do(ctx, cred, http.MethodDelete, taskPath(id, ""), nil, nil)
}

func (c *Client) ApproveTask(ctx context.Context, cred Credential, id uint) (*model.Task, error) {
	if err := checkID(cred, id); err != nil {
		return nil, err
	}
	return c.taskCall(ctx, cred, http.MethodPut, taskPath(id, "/approve"), nil)
}

func (c *Client) ReviseTask(ctx context.Context, cred Credential, id uint, note string) (*model.Task, error) {
	if err := checkID(cred, id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(note) == "" {
		return nil, apperrors.Validation("revision note is required")
	}
	return c.taskCall(ctx, cred, http.MethodPut, taskPath(id, "/revise"), dto.ReviseRequest{Note: note})
}

func (c *Client) SubmitTask(ctx context.Context, cred Credential, id uint) (*model.Task, error) {
	if err := checkID(cred, id); err != nil {
		return nil, err
	}
	return c.taskCall(ctx, cred, http.MethodPut, taskPath(id, "/submit"), nil)
}

func (c *Client) UpdateProgress(ctx context.Context, cred Credential, id uint, progress int, note string) (*model.Task, error) {
	return c.progress(ctx, cred, taskPath(id, "/progress"), id, progress, note)
}

func (c *Client) OverrideProgress(ctx context.Context, cred Credential, id uint, progress int, note string) (*model.Task, error) {
	return c.progress(ctx, cred, taskPath(id, "/progress/override"), id, progress, note)
}

func (c *Client) progress(ctx context.Context, cred Credential, path string, id uint, progress int, note string) (*model.Task, error) {
	if err := checkID(cred, id); err != nil {
		return nil, err
	}
	if progress < model.MinProgress || progress > model.MaxProgress {
		return nil, apperrors.Validation(fmt.Sprintf("progress must be between 0 and 100, got %d", progress))
	}
	return c.taskCall(ctx, cred, http.MethodPut, path, dto.ProgressRequest{Progress: &progress, Note: note})
}

func (c *Client) taskCall(ctx context.Context, cred Credential, method, path string, body any) (*model.Task, error) {
	var resp dto.TaskResponse
	if err := c.do(ctx, cred, method, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.Task == nil {
		return nil, apperrors.Transport("response carried no task", nil)
	}
	return resp.Task, nil
}

func (c *Client) do(ctx context.Context, cred Credential, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.Transport("build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Transport(fmt.Sprintf("%s %s: %v", method, path, err), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Transport("read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Transport("decode response", err)
	}
	return nil
}

// statusError classifies a non-2xx response, keeping the server's message.
func statusError(status int, body []byte) error {
	var payload dto.MessageResponse
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	var kind apperrors.Kind
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = apperrors.KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = apperrors.KindAuth
	case http.StatusNotFound:
		kind = apperrors.KindNotFound
	case http.StatusConflict:
		kind = apperrors.KindConflict
	default:
		kind = apperrors.KindTransport
	}

	return &apperrors.Exception{Kind: kind, Message: msg, StatusCode: status}
}

func checkID(cred Credential, id uint) error {
	if err := cred.check(); err != nil {
		return err
	}
	if id == 0 {
		return apperrors.ErrTaskIDRequired
	}
	return nil
}

func taskPath(id uint, suffix string) string {
	return fmt.Sprintf("/tasks/%d%s", id, suffix)
}
