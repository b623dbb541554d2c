package boardclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/domain/dto"
	"taskboard/pkg/logger"
)

// Config for a board client
type Config struct {
	BaseURL string
	Token   string
	// ProjectID limits the mirror and the event stream to one project
	ProjectID *uuid.UUID
	Guard     GuardOptions
	// OnEvent runs after each live event has been applied to the mirror
	OnEvent func(*dto.TaskEvent)
}

// Client ties a Mirror to the REST API, the event feed and the status guard.
// Any failed mutation triggers a full resync.
type Client struct {
	cfg    Config
	api    *API
	mirror *Mirror
	guard  *StatusGuard
	feed   *Feed

	resyncMu sync.Mutex
	OnResync func(tasks int, err error)
}

func NewClient(cfg Config) *Client {
	c := &Client{
		cfg:    cfg,
		api:    NewAPI(cfg.BaseURL, cfg.Token),
		mirror: NewMirror(),
	}
	if cfg.ProjectID != nil {
		c.mirror = NewProjectMirror(*cfg.ProjectID)
	}

	guardOpts := cfg.Guard
	userOnError := guardOpts.OnError
	guardOpts.OnError = func(taskID uuid.UUID, err error) {
		if userOnError != nil {
			userOnError(taskID, err)
		}
		c.resyncAfter(err)
	}
	c.guard = NewStatusGuard(c.sendStatus, guardOpts)

	room := ""
	if cfg.ProjectID != nil {
		room = cfg.ProjectID.String()
	}
	c.feed = NewFeed(cfg.BaseURL, cfg.Token, room, c.applyLive, func(ctx context.Context) {
		_ = c.Resync(ctx)
	})
	return c
}

func (c *Client) applyLive(ev *dto.TaskEvent) {
	c.mirror.Apply(ev)
	if c.cfg.OnEvent != nil {
		c.cfg.OnEvent(ev)
	}
}

func (c *Client) Mirror() *Mirror { return c.mirror }

func (c *Client) API() *API { return c.api }

// Run streams events into the mirror until ctx is done
func (c *Client) Run(ctx context.Context) error {
	return c.feed.Run(ctx)
}

// Resync reloads every task and replaces the mirror
func (c *Client) Resync(ctx context.Context) error {
	c.resyncMu.Lock()
	defer c.resyncMu.Unlock()

	tasks, err := c.api.ListTasks(ctx, c.cfg.ProjectID)
	if err == nil {
		c.mirror.Reset(tasks)
	} else {
		logger.WarnContext(ctx, "Board resync failed", "error", err)
	}
	if c.OnResync != nil {
		c.OnResync(len(tasks), err)
	}
	return err
}

func (c *Client) resyncAfter(cause error) {
	logger.Warn("Board mutation failed, resyncing", "error", cause)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_ = c.Resync(ctx)
}

func (c *Client) sendStatus(ctx context.Context, taskID uuid.UUID, status string) error {
	task, err := c.api.SetStatus(ctx, taskID, status)
	if err != nil {
		return err
	}
	c.mirror.Apply(&dto.TaskEvent{Type: dto.EventStatusChanged, TaskID: task.ID, Task: task})
	return nil
}

// MoveTask guarded status change; returns ErrStatusInFlight when dropped
func (c *Client) MoveTask(taskID uuid.UUID, status string) error {
	return c.guard.Request(taskID, status)
}

// Split creates subtasks under parentID
func (c *Client) Split(ctx context.Context, parentID uuid.UUID, subtasks []dto.SubtaskSpec) ([]uuid.UUID, error) {
	ids, err := c.api.Split(ctx, parentID, subtasks)
	if err != nil {
		c.resyncAfter(err)
		return nil, err
	}
	return ids, nil
}

// LogEffort time-gate; the effort log may exist even when err != nil
func (c *Client) LogEffort(ctx context.Context, taskID uuid.UUID, req *dto.LogEffortRequest) (*dto.TimeGateResponse, error) {
	out, err := c.api.LogEffort(ctx, taskID, req)
	if err != nil {
		c.resyncAfter(err)
		return nil, err
	}
	if out.Task != nil {
		c.mirror.Apply(&dto.TaskEvent{Type: dto.EventStatusChanged, TaskID: out.Task.ID, Task: out.Task})
	}
	return out, nil
}

// WaitIdle waits for outstanding status sends
func (c *Client) WaitIdle() {
	c.guard.Wait()
}

// Flush sends debounced status requests immediately
func (c *Client) Flush() {
	c.guard.Flush()
}

func (c *Client) Close() {
	c.guard.Close()
}

// IsDropped reports a status request that was not sent because another one was in flight
func IsDropped(err error) bool {
	return errors.Is(err, ErrStatusInFlight)
}
