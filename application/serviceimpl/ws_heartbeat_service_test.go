package serviceimpl

import (
	"errors"
	"testing"

	"taskboard/pkg/scheduler"
)

type fakePinger struct {
	clients int
	pings   int
}

func (p *fakePinger) PingClients()         { p.pings++ }
func (p *fakePinger) GetTotalClients() int { return p.clients }

type fakeScheduler struct {
	scheduler.EventScheduler
	jobs map[string]func()
	err  error
}

func (s *fakeScheduler) AddJob(id, cronExpr string, task func()) error {
	if s.err != nil {
		return s.err
	}
	if s.jobs == nil {
		s.jobs = map[string]func(){}
	}
	s.jobs[id] = task
	return nil
}

func TestHeartbeatService(t *testing.T) {
	t.Run("registers and pings when clients exist", func(t *testing.T) {
		p := &fakePinger{clients: 2}
		s := &fakeScheduler{}
		hb := NewHeartbeatService("", p, s)

		if err := hb.RegisterHeartbeatJob(); err != nil {
			t.Fatal(err)
		}
		job, ok := s.jobs[heartbeatJobID]
		if !ok {
			t.Fatal("job not registered")
		}
		job()
		if p.pings != 1 {
			t.Errorf("pings = %d", p.pings)
		}
	})

	t.Run("no clients no ping", func(t *testing.T) {
		p := &fakePinger{}
		NewHeartbeatService("", p, &fakeScheduler{}).Run()
		if p.pings != 0 {
			t.Errorf("pings = %d", p.pings)
		}
	})

	t.Run("bad cron rejected", func(t *testing.T) {
		hb := NewHeartbeatService("every minute", &fakePinger{}, &fakeScheduler{})
		if err := hb.RegisterHeartbeatJob(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("scheduler error surfaces", func(t *testing.T) {
		boom := errors.New("boom")
		hb := NewHeartbeatService("*/5 * * * *", &fakePinger{}, &fakeScheduler{err: boom})
		if err := hb.RegisterHeartbeatJob(); !errors.Is(err, boom) {
			t.Errorf("err = %v", err)
		}
	})
}
