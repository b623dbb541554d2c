package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     Kind
	}{
		{"invalid argument", InvalidArgument("title is required"), ErrInvalidArgument, KindInvalidArgument},
		{"forbidden", Forbidden("not allowed"), ErrForbidden, KindForbidden},
		{"not found", NotFound("task %s not found", "x"), ErrNotFound, KindNotFound},
		{"wrapped", fmt.Errorf("split: %w", NotFound("parent missing")), ErrNotFound, KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false", tt.err)
			}
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestKindMismatch(t *testing.T) {
	err := Forbidden("nope")
	if errors.Is(err, ErrNotFound) {
		t.Error("forbidden error matched ErrNotFound")
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Error("plain error should be internal")
	}
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("failed to load task", cause)
	if !errors.Is(err, cause) {
		t.Error("internal error should unwrap to its cause")
	}
	if err.Error() != "failed to load task: connection reset" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
