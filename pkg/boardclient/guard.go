package boardclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultDebounce = 300 * time.Millisecond

// ErrStatusInFlight a status request for the task is still outstanding;
// the new request is dropped, not queued
var ErrStatusInFlight = errors.New("status change already in flight")

// StatusSender performs the actual status mutation
type StatusSender func(ctx context.Context, taskID uuid.UUID, status string) error

// GuardOptions tunes the status guard
type GuardOptions struct {
	Debounce time.Duration
	// GlobalSingleFlight blocks every task while any status request is out
	GlobalSingleFlight bool
	// OnError runs after a failed send (the client resyncs here)
	OnError func(taskID uuid.UUID, err error)
	// Timeout per send; 0 = no timeout
	Timeout time.Duration
}

type pendingStatus struct {
	status string
	timer  *time.Timer
}

// StatusGuard debounces status requests per task and allows one request in
// flight per task (or one overall with GlobalSingleFlight)
type StatusGuard struct {
	opts GuardOptions
	send StatusSender

	mu             sync.Mutex
	pending        map[uuid.UUID]*pendingStatus
	inFlight       map[uuid.UUID]bool
	globalInFlight bool
	closed         bool
	wg             sync.WaitGroup
}

func NewStatusGuard(send StatusSender, opts GuardOptions) *StatusGuard {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &StatusGuard{
		opts:     opts,
		send:     send,
		pending:  make(map[uuid.UUID]*pendingStatus),
		inFlight: make(map[uuid.UUID]bool),
	}
}

// Request asks for taskID to move to status. Calls within the debounce
// window collapse into one send carrying the last status.
func (g *StatusGuard) Request(taskID uuid.UUID, status string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return errors.New("status guard closed")
	}
	if g.busyLocked(taskID) {
		return ErrStatusInFlight
	}

	if p, ok := g.pending[taskID]; ok {
		p.status = status
		p.timer.Reset(g.opts.Debounce)
		return nil
	}

	p := &pendingStatus{status: status}
	p.timer = time.AfterFunc(g.opts.Debounce, func() { g.fire(taskID) })
	g.pending[taskID] = p
	return nil
}

func (g *StatusGuard) busyLocked(taskID uuid.UUID) bool {
	if g.opts.GlobalSingleFlight {
		return g.globalInFlight
	}
	return g.inFlight[taskID]
}

func (g *StatusGuard) fire(taskID uuid.UUID) {
	g.mu.Lock()
	p, ok := g.pending[taskID]
	if !ok || g.closed {
		g.mu.Unlock()
		return
	}
	// global mode: another task got in first, drop this one
	if g.busyLocked(taskID) {
		delete(g.pending, taskID)
		g.mu.Unlock()
		return
	}
	delete(g.pending, taskID)
	g.inFlight[taskID] = true
	g.globalInFlight = true
	g.wg.Add(1)
	g.mu.Unlock()

	defer g.wg.Done()

	ctx := context.Background()
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}
	err := g.send(ctx, taskID, p.status)

	g.mu.Lock()
	delete(g.inFlight, taskID)
	g.globalInFlight = len(g.inFlight) > 0
	g.mu.Unlock()

	if err != nil && g.opts.OnError != nil {
		g.opts.OnError(taskID, err)
	}
}

// InFlight reports whether a request for taskID is outstanding
func (g *StatusGuard) InFlight(taskID uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busyLocked(taskID)
}

// Flush sends every pending request now instead of waiting for its timer,
// then waits for the sends to return
func (g *StatusGuard) Flush() {
	g.mu.Lock()
	ids := make([]uuid.UUID, 0, len(g.pending))
	for id, p := range g.pending {
		if p.timer.Stop() {
			ids = append(ids, id)
		}
	}
	g.mu.Unlock()

	for _, id := range ids {
		g.fire(id)
	}
	g.wg.Wait()
}

// Wait blocks until every started send has returned
func (g *StatusGuard) Wait() {
	g.wg.Wait()
}

// Close cancels pending (not yet sent) requests
func (g *StatusGuard) Close() {
	g.mu.Lock()
	g.closed = true
	for id, p := range g.pending {
		p.timer.Stop()
		delete(g.pending, id)
	}
	g.mu.Unlock()
	g.wg.Wait()
}
