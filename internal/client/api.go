// Package client mirrors server task state for a board and keeps it in sync
// with the realtime feed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	"github.com/mohitdudhat22/Task-Management-App/internal/notify"
	"github.com/mohitdudhat22/Task-Management-App/internal/service"
)

// APIError is a non-2xx answer from the task API. It matches the domain
// sentinel errors for its status code through errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusBadRequest:
		return target == domain.ErrValidation
	case http.StatusForbidden:
		return target == domain.ErrForbidden
	case http.StatusNotFound:
		return target == domain.ErrTaskNotFound || target == domain.ErrUserNotFound
	case http.StatusConflict:
		return target == domain.ErrVersionConflict
	}
	return false
}

// API is a typed client for the task endpoints.
type API struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAPI(baseURL, token string) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// BaseURL is the server root the client talks to.
func (a *API) BaseURL() string { return a.baseURL }

// Token is the bearer token sent with every request.
func (a *API) Token() string { return a.token }

func (a *API) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	var out []*domain.Task
	err := a.do(ctx, http.MethodGet, "/api/get", nil, &out)
	return out, err
}

func (a *API) CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	var out domain.Task
	if err := a.do(ctx, http.MethodPost, "/api/create", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) EditTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	var out domain.Task
	if err := a.do(ctx, http.MethodPut, "/api/edit/"+id, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) DeleteTask(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/api/delete/"+id, nil, nil)
}

func (a *API) BulkCreate(ctx context.Context, items []service.BulkItem) ([]*domain.Task, error) {
	var out []*domain.Task
	err := a.do(ctx, http.MethodPost, "/api/bulk-create", map[string]any{"data": items}, &out)
	return out, err
}

func (a *API) AssignTask(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	var out domain.Task
	body := map[string]string{"taskId": taskID, "userId": userID}
	if err := a.do(ctx, http.MethodPost, "/api/assign-task", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var out struct {
		Users []*domain.User `json:"users"`
	}
	err := a.do(ctx, http.MethodGet, "/api/getAllUsers", nil, &out)
	return out.Users, err
}

func (a *API) SendNotification(ctx context.Context, n notify.Notification) error {
	return a.do(ctx, http.MethodPost, "/api/notifications/send", n, nil)
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func decodeError(status int, raw []byte) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(status)
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: status, Message: msg}
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
