package dto

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestTaskEvent_ProjectIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	tests := []struct {
		name       string
		ev         TaskEvent
		wantIDs    []uuid.UUID
		wantScoped bool
	}{
		{
			name:       "single project",
			ev:         TaskEvent{Task: &TaskResponse{ProjectID: &a}},
			wantIDs:    []uuid.UUID{a},
			wantScoped: true,
		},
		{
			name:       "moved between projects",
			ev:         TaskEvent{Task: &TaskResponse{ProjectID: &b}, PreviousProjectID: &a},
			wantIDs:    []uuid.UUID{b, a},
			wantScoped: true,
		},
		{
			name:       "moved out of every project",
			ev:         TaskEvent{Task: &TaskResponse{}, PreviousProjectID: &a},
			wantIDs:    []uuid.UUID{a},
			wantScoped: false,
		},
		{
			name:       "split children in another project",
			ev:         TaskEvent{Task: &TaskResponse{ProjectID: &a}, Children: []TaskResponse{{ProjectID: &b}, {ProjectID: &a}}},
			wantIDs:    []uuid.UUID{a, b},
			wantScoped: true,
		},
		{
			name:       "split child without project",
			ev:         TaskEvent{Task: &TaskResponse{ProjectID: &a}, Children: []TaskResponse{{}}},
			wantIDs:    []uuid.UUID{a},
			wantScoped: false,
		},
		{
			name:       "delete has no snapshot",
			ev:         TaskEvent{Type: EventTaskDeleted},
			wantScoped: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, scoped := tt.ev.ProjectIDs()
			if scoped != tt.wantScoped {
				t.Errorf("scoped = %v, want %v", scoped, tt.wantScoped)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}
