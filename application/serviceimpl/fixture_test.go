package serviceimpl_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/application/serviceimpl"
	"taskboard/domain/dto"
	"taskboard/domain/models"
	"taskboard/domain/services"
	"taskboard/infrastructure/messaging"
	"taskboard/infrastructure/postgres"
	"taskboard/pkg/testutil"
)

// board wires real repositories over sqlite with the in-process event bus
type board struct {
	db   *gorm.DB
	bus  *messaging.LocalEventBus
	svc  services.TaskService
	gate services.TimeGateService

	mu     sync.Mutex
	events []*dto.TaskEvent

	admin, manager, worker, outsider *models.Principal
	inactive                         *models.User
}

func newBoard(t *testing.T) *board {
	t.Helper()

	db := testutil.NewTestDB(t)
	taskRepo := postgres.NewTaskRepository(db)
	userRepo := postgres.NewUserRepository(db)
	effortRepo := postgres.NewEffortLogRepository(db)
	bus := messaging.NewLocalEventBus()

	svc := serviceimpl.NewTaskService(taskRepo, userRepo, bus.Publisher(), nil, 0)
	b := &board{
		db:   db,
		bus:  bus,
		svc:  svc,
		gate: serviceimpl.NewTimeGateService(svc, taskRepo, effortRepo),
	}

	principal := func(name string, role models.Role) *models.Principal {
		u := testutil.SeedUser(t, db, name, role, true)
		return models.NewPrincipal(u.ID, role, nil)
	}
	b.admin = principal("admin", models.RoleAdmin)
	b.manager = principal("manager", models.RoleManager)
	b.worker = principal("worker", models.RoleWorker)
	b.outsider = principal("outsider", models.RoleWorker)
	b.inactive = testutil.SeedUser(t, db, "gone", models.RoleWorker, false)

	sub := bus.Subscriber()
	if err := sub.Subscribe(context.Background(), func(ev *dto.TaskEvent) {
		b.mu.Lock()
		b.events = append(b.events, ev)
		b.mu.Unlock()
	}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sub.Unsubscribe() })
	return b
}

func (b *board) recorded() []*dto.TaskEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*dto.TaskEvent(nil), b.events...)
}

func (b *board) reset() {
	b.mu.Lock()
	b.events = nil
	b.mu.Unlock()
}

// seedTask inserts a task created by creator with the given assignees
func (b *board) seedTask(t *testing.T, title string, creator *models.Principal, status models.TaskStatus, assignees ...*models.Principal) *models.Task {
	t.Helper()
	task := testutil.SeedTask(t, b.db, title, creator.ID, status)
	for _, a := range assignees {
		if err := b.db.Create(&models.TaskAssignee{TaskID: task.ID, UserID: a.ID}).Error; err != nil {
			t.Fatalf("seed assignee: %v", err)
		}
	}
	return task
}

func deadline() *time.Time {
	d := time.Now().Add(48 * time.Hour).UTC()
	return &d
}

func ids(ps ...*models.Principal) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
