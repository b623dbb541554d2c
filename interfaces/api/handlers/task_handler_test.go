package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taskboard/application/serviceimpl"
	"taskboard/domain/dto"
	"taskboard/domain/models"
	"taskboard/infrastructure/messaging"
	"taskboard/infrastructure/postgres"
	"taskboard/interfaces/api/handlers"
	"taskboard/interfaces/api/middleware"
	"taskboard/interfaces/api/routes"
	"taskboard/pkg/testutil"
	"taskboard/pkg/utils"
)

const secret = "handler-test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type api struct {
	t   *testing.T
	app *fiber.App
}

func newAPI(t *testing.T) (*api, *models.User, *models.User) {
	t.Helper()

	db := testutil.NewTestDB(t)
	taskRepo := postgres.NewTaskRepository(db)
	bus := messaging.NewLocalEventBus()
	taskSvc := serviceimpl.NewTaskService(taskRepo, postgres.NewUserRepository(db), bus.Publisher(), nil, 0)
	gate := serviceimpl.NewTimeGateService(taskSvc, taskRepo, postgres.NewEffortLogRepository(db))

	h := handlers.NewHandlers(&handlers.Services{
		TaskService:     taskSvc,
		TimeGateService: gate,
		ServiceName:     "taskboard-test",
		HealthProbes: []handlers.HealthProbe{
			{Name: "database", Required: true, Check: func(ctx context.Context) (any, error) { return nil, nil }},
			{Name: "nats", Check: func(ctx context.Context) (any, error) { return nil, errors.New("disabled") }},
		},
	})

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestIDMiddleware())
	routes.SetupRoutes(app, h, routes.Options{JWTSecret: secret})

	manager := testutil.SeedUser(t, db, "manager", models.RoleManager, true)
	worker := testutil.SeedUser(t, db, "worker", models.RoleWorker, true)
	return &api{t: t, app: app}, manager, worker
}

func token(t *testing.T, u *models.User) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, utils.PrincipalClaims{
		UserID: u.ID.String(),
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func (a *api) do(method, path string, as *models.User, body any) (int, envelope) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+token(a.t, as))
	}

	resp, err := a.app.Test(req, -1)
	if err != nil {
		a.t.Fatal(err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			a.t.Fatalf("%s %s: bad body %q", method, path, raw)
		}
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, env.Data)
	}
	return v
}

func TestTaskRoutes_Lifecycle(t *testing.T) {
	a, manager, worker := newAPI(t)
	deadline := time.Now().Add(48 * time.Hour)

	status, _ := a.do(http.MethodGet, "/api/v1/tasks", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("no token status = %d", status)
	}

	status, env := a.do(http.MethodPost, "/api/v1/tasks", manager, dto.CreateTaskRequest{Title: "no deadline"})
	if status != http.StatusBadRequest || env.Error == nil || env.Error.Code != utils.ErrCodeValidation {
		t.Fatalf("validation status = %d env = %+v", status, env.Error)
	}

	status, env = a.do(http.MethodPost, "/api/v1/tasks", manager, dto.CreateTaskRequest{
		Title:       "Board API",
		Deadline:    &deadline,
		AssigneeIDs: []uuid.UUID{worker.ID},
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d %+v", status, env.Error)
	}
	task := decode[dto.TaskResponse](t, env)
	base := "/api/v1/tasks/" + task.ID.String()

	t.Run("assignee moves", func(t *testing.T) {
		status, env := a.do(http.MethodPut, base+"/status", worker, dto.StatusRequest{Status: "review"})
		if status != http.StatusOK {
			t.Fatalf("status = %d %+v", status, env.Error)
		}
		if got := decode[dto.TaskResponse](t, env); got.Status != "review" {
			t.Errorf("status = %s", got.Status)
		}
	})

	t.Run("archive needs done", func(t *testing.T) {
		status, env := a.do(http.MethodPost, base+"/archive", manager, nil)
		if status != http.StatusBadRequest {
			t.Fatalf("status = %d %+v", status, env.Error)
		}
	})

	t.Run("effort kept when move fails", func(t *testing.T) {
		status, env := a.do(http.MethodPost, base+"/effort", worker, dto.LogEffortRequest{Hours: 2, Status: "archived"})
		if status != http.StatusForbidden {
			t.Fatalf("status = %d", status)
		}
		if env.Error == nil || len(env.Error.Details) == 0 {
			t.Fatal("expected effort log in error details")
		}

		status, env = a.do(http.MethodGet, base+"/effort", worker, nil)
		if status != http.StatusOK {
			t.Fatalf("list status = %d", status)
		}
		if logs := decode[[]dto.EffortLogResponse](t, env); len(logs) != 1 || logs[0].HoursSpent != 2 {
			t.Errorf("logs = %+v", logs)
		}
	})

	t.Run("split", func(t *testing.T) {
		status, env := a.do(http.MethodPost, base+"/split", worker, dto.SplitTaskRequest{Subtasks: []dto.SubtaskSpec{
			{Title: "api", Deadline: &deadline},
			{Title: "ui", Deadline: &deadline},
		}})
		if status != http.StatusCreated {
			t.Fatalf("status = %d %+v", status, env.Error)
		}
		if ids := decode[dto.IDListResponse](t, env); len(ids.IDs) != 2 {
			t.Errorf("ids = %v", ids.IDs)
		}

		_, env = a.do(http.MethodGet, base+"/splits", worker, nil)
		if records := decode[[]dto.SplitRecordResponse](t, env); len(records) != 2 || records[1].Position != 1 {
			t.Errorf("records = %+v", records)
		}

		_, env = a.do(http.MethodGet, "/api/v1/tasks", worker, nil)
		if tasks := decode[[]dto.TaskResponse](t, env); len(tasks) != 3 {
			t.Errorf("board has %d tasks", len(tasks))
		}
	})

	t.Run("worker cannot delete", func(t *testing.T) {
		status, env := a.do(http.MethodDelete, base, worker, nil)
		if status != http.StatusForbidden || env.Error.Code != utils.ErrCodeForbidden {
			t.Fatalf("status = %d", status)
		}
	})

	t.Run("manager deletes", func(t *testing.T) {
		if status, _ := a.do(http.MethodDelete, base, manager, nil); status != http.StatusNoContent {
			t.Fatalf("status = %d", status)
		}
		if status, _ := a.do(http.MethodGet, base, manager, nil); status != http.StatusNotFound {
			t.Fatalf("get after delete = %d", status)
		}
	})
}

func TestTaskRoutes_BadInput(t *testing.T) {
	a, manager, _ := newAPI(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"bad id", http.MethodGet, "/api/v1/tasks/not-a-uuid", nil, http.StatusBadRequest},
		{"missing task", http.MethodGet, "/api/v1/tasks/" + uuid.NewString(), nil, http.StatusNotFound},
		{"unknown status", http.MethodPut, "/api/v1/tasks/" + uuid.NewString() + "/status", dto.StatusRequest{Status: "shipped"}, http.StatusBadRequest},
		{"empty split", http.MethodPost, "/api/v1/tasks/" + uuid.NewString() + "/split", dto.SplitTaskRequest{}, http.StatusBadRequest},
		{"bad filter", http.MethodGet, "/api/v1/tasks?status=nope", nil, http.StatusBadRequest},
		{"patch with bad link", http.MethodPatch, "/api/v1/tasks/" + uuid.NewString(), map[string]string{"externalLink": "not a link"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, _ := a.do(tt.method, tt.path, manager, tt.body); status != tt.want {
				t.Errorf("status = %d, want %d", status, tt.want)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	a, _, _ := newAPI(t)

	status, env := a.do(http.MethodGet, "/health", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	body := decode[map[string]any](t, env)
	if body["status"] != "ok" {
		t.Errorf("optional probe failure should not degrade: %v", body)
	}
}
