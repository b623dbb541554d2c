package nats

import (
	"sync"

	"github.com/nats-io/nats.go"

	"taskboard/pkg/logger"
)

// MessageHandler callback ต่อ message ดิบจาก board.events.*
type MessageHandler func(subject string, data []byte)

// Subscriber NATS Pub/Sub subscriber สำหรับ board events
type Subscriber struct {
	conn       *nats.Conn
	sub        *nats.Subscription
	handlers   []MessageHandler
	handlersMu sync.RWMutex
	running    bool
	runningMu  sync.Mutex
}

// NewSubscriber สร้าง NATS Subscriber ใหม่
func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{
		conn:     conn,
		handlers: make([]MessageHandler, 0),
	}
}

// OnMessage ลงทะเบียน handler
func (s *Subscriber) OnMessage(handler MessageHandler) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Start เริ่ม subscribe board.events.*
func (s *Subscriber) Start() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	if s.running {
		return nil
	}

	// nats.go delivers one subscription's messages on a single goroutine,
	// so per-subject order is kept
	sub, err := s.conn.Subscribe(AllTaskEventsSubject(), s.handleMessage)
	if err != nil {
		return err
	}
	s.sub = sub
	s.running = true

	logger.Info("NATS subscriber started", "subject", AllTaskEventsSubject())
	return nil
}

func (s *Subscriber) handleMessage(msg *nats.Msg) {
	s.handlersMu.RLock()
	handlers := s.handlers
	s.handlersMu.RUnlock()

	for _, handler := range handlers {
		func(h MessageHandler) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Board event handler panicked", "subject", msg.Subject, "error", r)
				}
			}()
			h(msg.Subject, msg.Data)
		}(handler)
	}
}

// Stop หยุด subscriber
func (s *Subscriber) Stop() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			logger.Warn("Failed to unsubscribe", "error", err)
		}
	}

	logger.Info("NATS subscriber stopped")
	return nil
}

// IsRunning ตรวจสอบว่า subscriber กำลังทำงานอยู่หรือไม่
func (s *Subscriber) IsRunning() bool {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	return s.running
}
