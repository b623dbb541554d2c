package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestClassifyTransition(t *testing.T) {
	tests := []struct {
		from, to TaskStatus
		want     TransitionKind
	}{
		{StatusUnassigned, StatusDone, TransitionMove},
		{StatusDone, StatusUnassigned, TransitionMove},
		{StatusReview, StatusInProgress, TransitionMove},
		{StatusReview, StatusReview, TransitionNoop},
		{StatusArchived, StatusArchived, TransitionNoop},
		{StatusDone, StatusArchived, TransitionArchive},
		{StatusArchived, StatusDone, TransitionUnarchive},
		{StatusReview, StatusArchived, TransitionInvalid},
		{StatusArchived, StatusInProgress, TransitionInvalid},
		{"blocked", StatusDone, TransitionInvalid},
		{StatusDone, "", TransitionInvalid},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := ClassifyTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("ClassifyTransition(%q, %q) = %d, want %d", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

// every pair of non-archived states is a free move
func TestClassifyTransition_NonArchivedAreFree(t *testing.T) {
	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			if from == to || from == StatusArchived || to == StatusArchived {
				continue
			}
			if got := ClassifyTransition(from, to); got != TransitionMove {
				t.Errorf("%s -> %s = %d, want move", from, to, got)
			}
		}
	}
}

func TestPrincipal_Has(t *testing.T) {
	tests := []struct {
		name string
		p    *Principal
		cap  Capability
		want bool
	}{
		{"admin has everything", NewPrincipal(uuid.New(), RoleAdmin, nil), CapManageTasks, true},
		{"manager manages", NewPrincipal(uuid.New(), RoleManager, nil), CapManageTasks, true},
		{"worker cannot manage", NewPrincipal(uuid.New(), RoleWorker, nil), CapManageTasks, false},
		{"worker logs effort", NewPrincipal(uuid.New(), RoleWorker, nil), CapLogEffort, true},
		{"explicit set overrides role", NewPrincipal(uuid.New(), RoleManager, []Capability{CapLogEffort}), CapManageTasks, false},
		{"explicit set grants", NewPrincipal(uuid.New(), RoleWorker, []Capability{CapManageTasks}), CapManageTasks, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Has(tt.cap); got != tt.want {
				t.Errorf("Has(%s) = %v, want %v", tt.cap, got, tt.want)
			}
		})
	}
}
