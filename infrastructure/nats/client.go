package nats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"taskboard/pkg/logger"
)

// Client wraps the core NATS connection used for board event fan-out
type Client struct {
	conn *nats.Conn
}

// ClientConfig configuration สำหรับ NATS Client
type ClientConfig struct {
	URL  string // nats://localhost:4222
	Name string // connection name shown in NATS monitoring
}

// NewClient เชื่อมต่อ NATS (core pub/sub, ไม่ใช้ JetStream)
func NewClient(cfg ClientConfig) (*Client, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1), // Reconnect forever
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			// events ระหว่างหลุดหายได้ client จะ resync เอง
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("NATS client initialized", "url", cfg.URL, "subject", AllTaskEventsSubject())
	return &Client{conn: nc}, nil
}

// Conn returns the underlying NATS connection
func (c *Client) Conn() *nats.Conn {
	return c.conn
}

// Status snapshot สำหรับ health check
func (c *Client) Status() ConnectionStatus {
	if c.conn == nil {
		return ConnectionStatus{}
	}
	stats := c.conn.Stats()
	return ConnectionStatus{
		Connected:  c.conn.IsConnected(),
		URL:        c.conn.ConnectedUrl(),
		InMsgs:     stats.InMsgs,
		OutMsgs:    stats.OutMsgs,
		Reconnects: stats.Reconnects,
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// Lifecycle
// ═══════════════════════════════════════════════════════════════════════════════

// Close drains pending messages then closes
func (c *Client) Close() error {
	if c.conn != nil {
		if err := c.conn.Drain(); err != nil {
			c.conn.Close()
		}
		logger.Info("NATS connection closed")
	}
	return nil
}

// Ping ทดสอบ connection
func (c *Client) Ping() error {
	return c.conn.FlushTimeout(5 * time.Second)
}

// IsConnected ตรวจสอบว่าเชื่อมต่ออยู่หรือไม่
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}
