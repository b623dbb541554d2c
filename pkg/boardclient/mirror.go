package boardclient

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"taskboard/domain/dto"
)

// Mirror is a client's in-memory copy of the board, keyed by task id.
// Applying the same event more than once leaves it unchanged.
type Mirror struct {
	mu      sync.RWMutex
	tasks   map[uuid.UUID]dto.TaskResponse
	deleted map[uuid.UUID]bool
	// scope set: only tasks of this project are kept
	scope *uuid.UUID
}

func NewMirror() *Mirror {
	return &Mirror{
		tasks:   make(map[uuid.UUID]dto.TaskResponse),
		deleted: make(map[uuid.UUID]bool),
	}
}

// NewProjectMirror mirrors one project. A snapshot from another project (or
// none) removes the task, which is how a task moving out is seen.
func NewProjectMirror(projectID uuid.UUID) *Mirror {
	m := NewMirror()
	m.scope = &projectID
	return m
}

// Reset replaces the whole mirror with a fresh server listing (resync)
func (m *Mirror) Reset(tasks []dto.TaskResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = make(map[uuid.UUID]dto.TaskResponse, len(tasks))
	m.deleted = make(map[uuid.UUID]bool)
	for _, t := range tasks {
		if m.inScope(t) {
			m.tasks[t.ID] = t
		}
	}
}

// Apply folds one event into the mirror
func (m *Mirror) Apply(ev *dto.TaskEvent) {
	if ev == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev.Type {
	case dto.EventTaskDeleted:
		delete(m.tasks, ev.TaskID)
		m.deleted[ev.TaskID] = true
		// detached children come back as root tasks
		for _, child := range ev.Children {
			m.upsertLocked(child)
		}

	case dto.EventTaskSplit:
		if ev.Task != nil {
			m.upsertLocked(*ev.Task)
		}
		for _, child := range ev.Children {
			m.upsertLocked(child)
		}

	default:
		if ev.Task != nil {
			m.upsertLocked(*ev.Task)
		}
	}
}

func (m *Mirror) inScope(t dto.TaskResponse) bool {
	return m.scope == nil || (t.ProjectID != nil && *t.ProjectID == *m.scope)
}

// upsertLocked keeps the newer snapshot; an older one (e.g. an event that was
// in flight during a resync) is ignored. A newer snapshot outside the scope
// drops the task.
func (m *Mirror) upsertLocked(t dto.TaskResponse) {
	if m.deleted[t.ID] {
		return
	}
	if cur, ok := m.tasks[t.ID]; ok && t.UpdatedAt.Before(cur.UpdatedAt) {
		return
	}
	if !m.inScope(t) {
		delete(m.tasks, t.ID)
		return
	}
	m.tasks[t.ID] = t
}

func (m *Mirror) Get(id uuid.UUID) (dto.TaskResponse, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	return t, ok
}

func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks)
}

// Tasks returns a copy ordered by creation time
func (m *Mirror) Tasks() []dto.TaskResponse {
	m.mu.RLock()
	out := make([]dto.TaskResponse, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
