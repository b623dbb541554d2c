package serviceimpl_test

import (
	"context"
	"errors"
	"testing"

	"taskboard/domain/models"
	"taskboard/pkg/apperror"
)

func TestTimeGate_LogPersistsWhenTransitionFails(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()
	task := b.seedTask(t, "T", b.admin, models.StatusReview, b.worker)

	// assignees cannot archive, so the transition step fails after the log is written
	entry, moved, err := b.gate.LogEffortAndTransition(ctx, b.worker, task.ID, 2.5, "wrapped up", models.StatusArchived)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if entry == nil || moved != nil {
		t.Fatalf("entry = %v, task = %v", entry, moved)
	}

	logs, err := b.gate.ListEffortLogs(ctx, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].HoursSpent != 2.5 || logs[0].ActorID != b.worker.ID {
		t.Errorf("logs = %+v", logs)
	}
	stored, _ := b.svc.GetTask(ctx, task.ID)
	if stored.Status != models.StatusReview {
		t.Errorf("status = %s", stored.Status)
	}
}

func TestTimeGate_LogEffortAndTransition(t *testing.T) {
	tests := []struct {
		name     string
		actor    string
		hours    float64
		status   models.TaskStatus
		wantErr  error
		wantLogs int
		want     models.TaskStatus
	}{
		{name: "log and move", actor: "worker", hours: 3, status: models.StatusDeploy, wantLogs: 1, want: models.StatusDeploy},
		{name: "log only", actor: "worker", hours: 1, wantLogs: 1, want: models.StatusInProgress},
		{name: "upper bound", actor: "manager", hours: 100, status: models.StatusDone, wantLogs: 1, want: models.StatusDone},
		{name: "zero hours", actor: "worker", hours: 0, status: models.StatusDone, wantErr: apperror.ErrInvalidArgument, want: models.StatusInProgress},
		{name: "too many hours", actor: "worker", hours: 100.5, wantErr: apperror.ErrInvalidArgument, want: models.StatusInProgress},
		{name: "not an assignee", actor: "outsider", hours: 1, status: models.StatusDone, wantErr: apperror.ErrForbidden, want: models.StatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBoard(t)
			ctx := context.Background()
			actors := map[string]*models.Principal{"manager": b.manager, "worker": b.worker, "outsider": b.outsider}
			task := b.seedTask(t, "T", b.admin, models.StatusInProgress, b.worker)

			_, _, err := b.gate.LogEffortAndTransition(ctx, actors[tt.actor], task.ID, tt.hours, "", tt.status)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && err != nil {
				t.Fatal(err)
			}

			logs, _ := b.gate.ListEffortLogs(ctx, task.ID)
			if len(logs) != tt.wantLogs {
				t.Errorf("logs = %d, want %d", len(logs), tt.wantLogs)
			}
			stored, _ := b.svc.GetTask(ctx, task.ID)
			if stored.Status != tt.want {
				t.Errorf("status = %s, want %s", stored.Status, tt.want)
			}
		})
	}
}

func TestTimeGate_LogEffortNeedsCapability(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()
	task := b.seedTask(t, "T", b.admin, models.StatusInProgress, b.worker)

	// explicit permission set without log_effort overrides the role default
	noLog := models.NewPrincipal(b.worker.ID, models.RoleWorker, []models.Capability{"view_only"})
	if _, err := b.gate.LogEffort(ctx, noLog, task.ID, 1, ""); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("err = %v, want forbidden", err)
	}

	moved, err := b.gate.TransitionWithoutLogging(ctx, b.worker, task.ID, models.StatusReview)
	if err != nil {
		t.Fatal(err)
	}
	if moved.Status != models.StatusReview {
		t.Errorf("status = %s", moved.Status)
	}
	if logs, _ := b.gate.ListEffortLogs(ctx, task.ID); len(logs) != 0 {
		t.Errorf("transition without logging wrote %d logs", len(logs))
	}
}
