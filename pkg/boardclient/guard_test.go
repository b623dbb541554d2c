package boardclient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recordingSender struct {
	mu    sync.Mutex
	calls []string
	block chan struct{}
	err   error
}

func (s *recordingSender) send(ctx context.Context, taskID uuid.UUID, status string) error {
	s.mu.Lock()
	s.calls = append(s.calls, status)
	block := s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	return s.err
}

func (s *recordingSender) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStatusGuard_DebounceKeepsLastStatus(t *testing.T) {
	s := &recordingSender{}
	g := NewStatusGuard(s.send, GuardOptions{Debounce: 50 * time.Millisecond})
	defer g.Close()

	id := uuid.New()
	for _, st := range []string{"in_progress", "developed", "review", "deploy", "done"} {
		if err := g.Request(id, st); err != nil {
			t.Fatalf("request %s: %v", st, err)
		}
	}

	waitUntil(t, func() bool { return len(s.snapshot()) > 0 })
	time.Sleep(100 * time.Millisecond)
	g.Wait()

	calls := s.snapshot()
	if len(calls) != 1 || calls[0] != "done" {
		t.Fatalf("calls = %v, want [done]", calls)
	}
}

func TestStatusGuard_SingleFlight(t *testing.T) {
	tests := []struct {
		name        string
		global      bool
		otherTaskOK bool
	}{
		{name: "per task", global: false, otherTaskOK: true},
		{name: "global", global: true, otherTaskOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &recordingSender{block: make(chan struct{})}
			g := NewStatusGuard(s.send, GuardOptions{Debounce: 10 * time.Millisecond, GlobalSingleFlight: tt.global})

			id, other := uuid.New(), uuid.New()
			if err := g.Request(id, "review"); err != nil {
				t.Fatal(err)
			}
			waitUntil(t, func() bool { return g.InFlight(id) })

			if err := g.Request(id, "done"); !errors.Is(err, ErrStatusInFlight) {
				t.Errorf("second request err = %v, want ErrStatusInFlight", err)
			}

			err := g.Request(other, "deploy")
			if tt.otherTaskOK && err != nil {
				t.Errorf("other task blocked: %v", err)
			}
			if !tt.otherTaskOK && !errors.Is(err, ErrStatusInFlight) {
				t.Errorf("other task err = %v, want ErrStatusInFlight", err)
			}

			close(s.block)
			g.Wait()
			if tt.otherTaskOK {
				waitUntil(t, func() bool { return len(s.snapshot()) == 2 })
				g.Wait()
			}
			g.Close()

			calls := s.snapshot()
			for _, c := range calls {
				if c == "done" {
					t.Errorf("dropped request was sent: %v", calls)
				}
			}
			if g.InFlight(id) {
				t.Error("flight flag not cleared")
			}
		})
	}
}

func TestStatusGuard_FailureCallsOnError(t *testing.T) {
	sendErr := errors.New("boom")
	s := &recordingSender{err: sendErr}

	var mu sync.Mutex
	var got error
	g := NewStatusGuard(s.send, GuardOptions{
		Debounce: 10 * time.Millisecond,
		OnError: func(_ uuid.UUID, err error) {
			mu.Lock()
			got = err
			mu.Unlock()
		},
	})
	defer g.Close()

	id := uuid.New()
	if err := g.Request(id, "done"); err != nil {
		t.Fatal(err)
	}
	waitUntil(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil
	})
	if !errors.Is(got, sendErr) {
		t.Errorf("OnError got %v", got)
	}
	if g.InFlight(id) {
		t.Error("failed request still in flight")
	}
}

func TestStatusGuard_CloseCancelsPending(t *testing.T) {
	s := &recordingSender{}
	g := NewStatusGuard(s.send, GuardOptions{Debounce: time.Hour})

	if err := g.Request(uuid.New(), "done"); err != nil {
		t.Fatal(err)
	}
	g.Close()

	if len(s.snapshot()) != 0 {
		t.Error("pending request sent after Close")
	}
	if err := g.Request(uuid.New(), "done"); err == nil {
		t.Error("request accepted after Close")
	}
}

func TestStatusGuard_FlushSendsPendingNow(t *testing.T) {
	s := &recordingSender{}
	g := NewStatusGuard(s.send, GuardOptions{Debounce: time.Hour})
	defer g.Close()

	id := uuid.New()
	g.Request(id, "review")
	g.Request(id, "deploy")
	g.Flush()

	if calls := s.snapshot(); len(calls) != 1 || calls[0] != "deploy" {
		t.Fatalf("calls = %v", calls)
	}
}
