package serviceimpl_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"taskboard/domain/dto"
	"taskboard/domain/models"
	"taskboard/pkg/apperror"
	"taskboard/pkg/boardclient"
)

func TestTaskService_StatusChangeReachesEveryMirror(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()

	mirrors := []*boardclient.Mirror{boardclient.NewMirror(), boardclient.NewMirror()}
	for _, m := range mirrors {
		sub := b.bus.Subscriber()
		if err := sub.Subscribe(ctx, m.Apply); err != nil {
			t.Fatal(err)
		}
		defer sub.Unsubscribe()
	}

	task, err := b.svc.CreateTask(ctx, b.manager, &dto.CreateTaskRequest{
		Title:       "Ship login page",
		Deadline:    deadline(),
		AssigneeIDs: ids(b.worker),
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := b.svc.TransitionStatus(ctx, b.worker, task.ID, models.StatusReview); err != nil {
		t.Fatal(err)
	}

	for i, m := range mirrors {
		got, ok := m.Get(task.ID)
		if !ok {
			t.Fatalf("mirror %d missing task", i)
		}
		if got.Status != string(models.StatusReview) {
			t.Errorf("mirror %d status = %s, want review", i, got.Status)
		}
	}

	evs := b.recorded()
	if len(evs) != 2 || evs[1].Type != dto.EventStatusChanged {
		t.Fatalf("events = %d", len(evs))
	}
	if evs[1].OldStatus != "unassigned" || evs[1].NewStatus != "review" {
		t.Errorf("status change %s -> %s", evs[1].OldStatus, evs[1].NewStatus)
	}
}

func TestTaskService_CreateTask(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     dto.CreateTaskRequest
		wantErr error
	}{
		{name: "valid", req: dto.CreateTaskRequest{Title: "A", Deadline: deadline()}},
		{name: "missing title", req: dto.CreateTaskRequest{Title: "  ", Deadline: deadline()}, wantErr: apperror.ErrInvalidArgument},
		{name: "missing deadline", req: dto.CreateTaskRequest{Title: "A"}, wantErr: apperror.ErrInvalidArgument},
		{name: "bad priority", req: dto.CreateTaskRequest{Title: "A", Deadline: deadline(), Priority: "urgent"}, wantErr: apperror.ErrInvalidArgument},
		{name: "inactive assignee", req: dto.CreateTaskRequest{Title: "A", Deadline: deadline(), AssigneeIDs: []uuid.UUID{b.inactive.ID}}, wantErr: apperror.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.reset()
			task, err := b.svc.CreateTask(ctx, b.worker, &tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if len(b.recorded()) != 0 {
					t.Error("event emitted for rejected create")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if task.Status != models.StatusUnassigned || task.CreatorID != b.worker.ID {
				t.Errorf("task = %+v", task)
			}
			if task.Priority != models.PriorityMedium {
				t.Errorf("priority default = %s", task.Priority)
			}
			if evs := b.recorded(); len(evs) != 1 || evs[0].Type != dto.EventTaskCreated {
				t.Errorf("events = %v", evs)
			}
		})
	}
}

func TestTaskService_Transitions(t *testing.T) {
	type op int
	const (
		move op = iota
		archive
		unarchive
	)

	tests := []struct {
		name      string
		actor     string
		from      models.TaskStatus
		op        op
		to        models.TaskStatus
		wantErr   error
		wantEvent bool
	}{
		{name: "assignee moves freely", actor: "worker", from: models.StatusInProgress, op: move, to: models.StatusDeploy, wantEvent: true},
		{name: "manager moves backwards", actor: "manager", from: models.StatusDone, op: move, to: models.StatusUnassigned, wantEvent: true},
		{name: "non assignee forbidden", actor: "outsider", from: models.StatusInProgress, op: move, to: models.StatusReview, wantErr: apperror.ErrForbidden},
		{name: "same status is a noop", actor: "worker", from: models.StatusReview, op: move, to: models.StatusReview},
		{name: "unknown status", actor: "worker", from: models.StatusReview, op: move, to: "shipped", wantErr: apperror.ErrInvalidArgument},
		{name: "move into archived", actor: "manager", from: models.StatusReview, op: move, to: models.StatusArchived, wantErr: apperror.ErrInvalidArgument},
		{name: "move out of archived", actor: "manager", from: models.StatusArchived, op: move, to: models.StatusReview, wantErr: apperror.ErrInvalidArgument},
		{name: "archive done", actor: "manager", from: models.StatusDone, op: archive, wantEvent: true},
		{name: "archive via move from done", actor: "admin", from: models.StatusDone, op: move, to: models.StatusArchived, wantEvent: true},
		{name: "archive by assignee forbidden", actor: "worker", from: models.StatusDone, op: archive, wantErr: apperror.ErrForbidden},
		{name: "archive not done", actor: "manager", from: models.StatusReview, op: archive, wantErr: apperror.ErrInvalidArgument},
		{name: "archive archived is a noop", actor: "manager", from: models.StatusArchived, op: archive},
		{name: "unarchive", actor: "manager", from: models.StatusArchived, op: unarchive, wantEvent: true},
		{name: "unarchive not archived", actor: "manager", from: models.StatusDone, op: unarchive, wantErr: apperror.ErrInvalidArgument},
		{name: "unarchive by assignee forbidden", actor: "worker", from: models.StatusArchived, op: unarchive, wantErr: apperror.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBoard(t)
			ctx := context.Background()
			actors := map[string]*models.Principal{
				"admin": b.admin, "manager": b.manager, "worker": b.worker, "outsider": b.outsider,
			}
			task := b.seedTask(t, "T", b.admin, tt.from, b.worker)

			var got *models.Task
			var err error
			switch tt.op {
			case move:
				got, err = b.svc.TransitionStatus(ctx, actors[tt.actor], task.ID, tt.to)
			case archive:
				got, err = b.svc.ArchiveTask(ctx, actors[tt.actor], task.ID)
			case unarchive:
				got, err = b.svc.UnarchiveTask(ctx, actors[tt.actor], task.ID)
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				stored, _ := b.svc.GetTask(ctx, task.ID)
				if stored.Status != tt.from {
					t.Errorf("status changed to %s on failure", stored.Status)
				}
			} else if err != nil {
				t.Fatalf("unexpected err: %v", err)
			} else if !got.Status.IsValid() {
				t.Errorf("status %q not enumerated", got.Status)
			}

			if n := len(b.recorded()); (n == 1) != tt.wantEvent || n > 1 {
				t.Errorf("events = %d, wantEvent %v", n, tt.wantEvent)
			}
		})
	}
}

func TestTaskService_UpdateAndAssign(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()
	task := b.seedTask(t, "T", b.worker, models.StatusUnassigned)

	t.Run("creator edits", func(t *testing.T) {
		title := "Renamed"
		got, err := b.svc.UpdateTask(ctx, b.worker, task.ID, &dto.UpdateTaskRequest{Title: &title})
		if err != nil {
			t.Fatal(err)
		}
		if got.Title != "Renamed" || got.Status != models.StatusUnassigned {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("stranger cannot edit", func(t *testing.T) {
		title := "Nope"
		_, err := b.svc.UpdateTask(ctx, b.outsider, task.ID, &dto.UpdateTaskRequest{Title: &title})
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("assign replaces the set", func(t *testing.T) {
		b.reset()
		got, err := b.svc.AssignTask(ctx, b.manager, task.ID, &dto.AssignRequest{
			AssigneeIDs:     ids(b.worker, b.outsider, b.worker),
			RoleAssignments: map[string]interface{}{"developer": b.worker.ID.String()},
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Assignees) != 2 {
			t.Errorf("assignees = %v", got.AssigneeIDs())
		}
		evs := b.recorded()
		if len(evs) != 1 || evs[0].Type != dto.EventAssigneesChanged || len(evs[0].NewAssignees) != 2 {
			t.Errorf("events = %+v", evs)
		}
	})

	t.Run("inactive assignee named in error", func(t *testing.T) {
		_, err := b.svc.AssignTask(ctx, b.manager, task.ID, &dto.AssignRequest{AssigneeIDs: []uuid.UUID{b.inactive.ID}})
		if !errors.Is(err, apperror.ErrInvalidArgument) {
			t.Fatalf("err = %v", err)
		}
		if got := err.Error(); !strings.Contains(got, b.inactive.ID.String()) {
			t.Errorf("error %q does not name the id", got)
		}
	})
}

func TestTaskService_UpdateCarriesPreviousProject(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()
	task := b.seedTask(t, "T", b.manager, models.StatusReview)
	projectA, projectB := uuid.New(), uuid.New()
	title := "Renamed"

	tests := []struct {
		name         string
		req          *dto.UpdateTaskRequest
		wantPrevious *uuid.UUID
	}{
		{"first project has nothing to leave", &dto.UpdateTaskRequest{ProjectID: &projectA}, nil},
		{"move to another project", &dto.UpdateTaskRequest{ProjectID: &projectB}, &projectA},
		{"same project again", &dto.UpdateTaskRequest{ProjectID: &projectB}, nil},
		{"edit without project change", &dto.UpdateTaskRequest{Title: &title}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.reset()
			if _, err := b.svc.UpdateTask(ctx, b.manager, task.ID, tt.req); err != nil {
				t.Fatal(err)
			}
			evs := b.recorded()
			if len(evs) != 1 || evs[0].Type != dto.EventTaskUpdated {
				t.Fatalf("events = %+v", evs)
			}
			got := evs[0].PreviousProjectID
			switch {
			case tt.wantPrevious == nil && got != nil:
				t.Errorf("previous project = %s, want none", got)
			case tt.wantPrevious != nil && (got == nil || *got != *tt.wantPrevious):
				t.Errorf("previous project = %v, want %s", got, tt.wantPrevious)
			}
		})
	}
}

func TestTaskService_SplitTask(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()
	parent := b.seedTask(t, "Epic", b.admin, models.StatusReview, b.worker)

	mirror := boardclient.NewMirror()
	sub := b.bus.Subscriber()
	if err := sub.Subscribe(ctx, mirror.Apply); err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	projectID := uuid.New()
	childIDs, err := b.svc.SplitTask(ctx, b.worker, parent.ID, []dto.SubtaskSpec{
		{Title: "Backend", Deadline: deadline(), ProjectID: &projectID},
		{Title: "Frontend", Deadline: deadline()},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(childIDs) != 2 {
		t.Fatalf("children = %v", childIDs)
	}

	records, err := b.svc.ListSplitRecords(ctx, parent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].ChildTaskID != childIDs[0] || records[1].ChildTaskID != childIDs[1] {
		t.Errorf("records = %+v", records)
	}

	gotParent, _ := mirror.Get(parent.ID)
	if gotParent.Status != string(models.StatusInProgress) {
		t.Errorf("parent status = %s", gotParent.Status)
	}
	for i, id := range childIDs {
		child, ok := mirror.Get(id)
		if !ok {
			t.Fatalf("child %d missing from mirror", i)
		}
		if !child.IsSubtask || child.ParentTaskID == nil || *child.ParentTaskID != parent.ID || child.Status != "unassigned" {
			t.Errorf("child %d = %+v", i, child)
		}
	}
	if c, _ := mirror.Get(childIDs[0]); c.ProjectID == nil || *c.ProjectID != projectID {
		t.Errorf("project not taken from spec")
	}

	t.Run("rejections", func(t *testing.T) {
		archived := b.seedTask(t, "Old", b.admin, models.StatusArchived)
		tests := []struct {
			name    string
			actor   *models.Principal
			parent  uuid.UUID
			specs   []dto.SubtaskSpec
			wantErr error
		}{
			{"empty list", b.admin, parent.ID, nil, apperror.ErrInvalidArgument},
			{"spec without deadline", b.admin, parent.ID, []dto.SubtaskSpec{{Title: "x"}}, apperror.ErrInvalidArgument},
			{"stranger", b.outsider, parent.ID, []dto.SubtaskSpec{{Title: "x", Deadline: deadline()}}, apperror.ErrForbidden},
			{"missing parent", b.admin, uuid.New(), []dto.SubtaskSpec{{Title: "x", Deadline: deadline()}}, apperror.ErrNotFound},
			{"archived parent", b.admin, archived.ID, []dto.SubtaskSpec{{Title: "x", Deadline: deadline()}}, apperror.ErrInvalidArgument},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				b.reset()
				if _, err := b.svc.SplitTask(ctx, tt.actor, tt.parent, tt.specs); !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if len(b.recorded()) != 0 {
					t.Error("event emitted for failed split")
				}
			})
		}
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()
	parent := b.seedTask(t, "Epic", b.admin, models.StatusInProgress)
	childIDs, err := b.svc.SplitTask(ctx, b.admin, parent.ID, []dto.SubtaskSpec{{Title: "c", Deadline: deadline()}})
	if err != nil {
		t.Fatal(err)
	}

	if err := b.svc.DeleteTask(ctx, b.worker, parent.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("worker delete err = %v", err)
	}

	b.reset()
	if err := b.svc.DeleteTask(ctx, b.manager, parent.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := b.svc.GetTask(ctx, parent.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("get after delete err = %v", err)
	}

	evs := b.recorded()
	if len(evs) != 1 || evs[0].Type != dto.EventTaskDeleted || evs[0].Task != nil {
		t.Fatalf("events = %+v", evs)
	}
	if len(evs[0].Children) != 1 || evs[0].Children[0].ID != childIDs[0] || evs[0].Children[0].IsSubtask {
		t.Errorf("detached children = %+v", evs[0].Children)
	}
}

func TestTaskService_AddComment(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()
	task := b.seedTask(t, "T", b.admin, models.StatusReview)

	c, err := b.svc.AddComment(ctx, b.worker, task.ID, "  looks good ")
	if err != nil {
		t.Fatal(err)
	}
	if c.Body != "looks good" {
		t.Errorf("body = %q", c.Body)
	}
	evs := b.recorded()
	if len(evs) != 1 || evs[0].Comment == nil || evs[0].Task == nil {
		t.Errorf("events = %+v", evs)
	}

	if _, err := b.svc.AddComment(ctx, b.worker, task.ID, " "); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Errorf("empty body err = %v", err)
	}
	if _, err := b.svc.AddComment(ctx, b.worker, uuid.New(), "hi"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("missing task err = %v", err)
	}
}
