package boardclient

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

	"github.com/google/uuid"

	"taskboard/domain/dto"
	"taskboard/pkg/apperror"
)

// API thin REST client for /api/v1
type API struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewAPI(baseURL, token string) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError server rejected the request; errors.Is works against apperror kinds
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return &apperror.Error{Kind: apperror.KindInvalidArgument, Message: e.Message}
	case http.StatusForbidden:
		return &apperror.Error{Kind: apperror.KindForbidden, Message: e.Message}
	case http.StatusNotFound:
		return &apperror.Error{Kind: apperror.KindNotFound, Message: e.Message}
	case http.StatusConflict:
		return &apperror.Error{Kind: apperror.KindConflict, Message: e.Message}
	}
	return nil
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func taskPath(id uuid.UUID, suffix string) string {
	return "/api/v1/tasks/" + id.String() + suffix
}

// ListTasks full board listing, archived included (resync)
func (a *API) ListTasks(ctx context.Context, projectID *uuid.UUID) ([]dto.TaskResponse, error) {
	q := url.Values{}
	q.Set("includeArchived", "true")
	if projectID != nil {
		q.Set("projectId", projectID.String())
	}
	var tasks []dto.TaskResponse
	err := a.do(ctx, http.MethodGet, "/api/v1/tasks?"+q.Encode(), nil, &tasks)
	return tasks, err
}

func (a *API) GetTask(ctx context.Context, id uuid.UUID) (*dto.TaskResponse, error) {
	var t dto.TaskResponse
	if err := a.do(ctx, http.MethodGet, taskPath(id, ""), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (a *API) CreateTask(ctx context.Context, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	var t dto.TaskResponse
	if err := a.do(ctx, http.MethodPost, "/api/v1/tasks", req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (a *API) SetStatus(ctx context.Context, id uuid.UUID, status string) (*dto.TaskResponse, error) {
	var t dto.TaskResponse
	if err := a.do(ctx, http.MethodPut, taskPath(id, "/status"), dto.StatusRequest{Status: status}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (a *API) Split(ctx context.Context, parentID uuid.UUID, subtasks []dto.SubtaskSpec) ([]uuid.UUID, error) {
	var out dto.IDListResponse
	if err := a.do(ctx, http.MethodPost, taskPath(parentID, "/split"), dto.SplitTaskRequest{Subtasks: subtasks}, &out); err != nil {
		return nil, err
	}
	return out.IDs, nil
}

func (a *API) LogEffort(ctx context.Context, id uuid.UUID, req *dto.LogEffortRequest) (*dto.TimeGateResponse, error) {
	var out dto.TimeGateResponse
	if err := a.do(ctx, http.MethodPost, taskPath(id, "/effort"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return a.do(ctx, http.MethodDelete, taskPath(id, ""), nil, nil)
}
