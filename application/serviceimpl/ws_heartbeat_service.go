package serviceimpl

import (
	"taskboard/pkg/logger"
	"taskboard/pkg/scheduler"
)

const heartbeatJobID = "ws_heartbeat"

// ObserverPinger is the hub side of the heartbeat
type ObserverPinger interface {
	PingClients()
	GetTotalClients() int
}

// HeartbeatService pings websocket observers on a cron so dead
// connections fail their write and get pruned
type HeartbeatService struct {
	cronExpr  string
	pinger    ObserverPinger
	scheduler scheduler.EventScheduler
}

func NewHeartbeatService(cronExpr string, pinger ObserverPinger, eventScheduler scheduler.EventScheduler) *HeartbeatService {
	if cronExpr == "" {
		cronExpr = "* * * * *"
	}
	return &HeartbeatService{
		cronExpr:  cronExpr,
		pinger:    pinger,
		scheduler: eventScheduler,
	}
}

// RegisterHeartbeatJob ลงทะเบียน job กับ scheduler
func (s *HeartbeatService) RegisterHeartbeatJob() error {
	if err := scheduler.ValidateCronExpression(s.cronExpr); err != nil {
		return err
	}
	return s.scheduler.AddJob(heartbeatJobID, s.cronExpr, s.Run)
}

// Run one heartbeat round
func (s *HeartbeatService) Run() {
	clients := s.pinger.GetTotalClients()
	if clients == 0 {
		return
	}
	s.pinger.PingClients()
	logger.Debug("WebSocket heartbeat sent", "clients", clients)
}
