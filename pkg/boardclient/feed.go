package boardclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fasthttp/websocket"

	"taskboard/domain/dto"
)

const taskEventMessage = "task_event"

type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Feed reads the /ws observer stream and hands task events to onEvent.
// onConnect runs after every (re)connect, before the first event is read.
type Feed struct {
	url       string
	token     string
	room      string
	dialer    *websocket.Dialer
	backoff   time.Duration
	onEvent   func(*dto.TaskEvent)
	onConnect func(ctx context.Context)
}

// wsURL http(s)://host -> ws(s)://host/ws
func wsURL(baseURL, room string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	u += "/ws"
	if room != "" {
		u += "?room=" + room
	}
	return u
}

func NewFeed(baseURL, token, room string, onEvent func(*dto.TaskEvent), onConnect func(ctx context.Context)) *Feed {
	return &Feed{
		url:       wsURL(baseURL, room),
		token:     token,
		room:      room,
		dialer:    &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		backoff:   time.Second,
		onEvent:   onEvent,
		onConnect: onConnect,
	}
}

// Run connects and reads until ctx is done, reconnecting on failure
func (f *Feed) Run(ctx context.Context) error {
	wait := f.backoff
	for {
		connected, _ := f.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			wait = f.backoff
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if wait < 30*time.Second {
			wait *= 2
		}
	}
}

func (f *Feed) runOnce(ctx context.Context) (bool, error) {
	header := http.Header{}
	if f.token != "" {
		header.Set("Authorization", "Bearer "+f.token)
	}

	conn, _, err := f.dialer.DialContext(ctx, f.url, header)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	// ปิด conn เมื่อ ctx ถูกยกเลิก เพื่อปลด ReadMessage
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	// events missed while disconnected are recovered by a full reload
	if f.onConnect != nil {
		f.onConnect(ctx)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		ev, ok := decodeTaskEvent(data)
		if ok {
			f.onEvent(ev)
		}
	}
}

func decodeTaskEvent(data []byte) (*dto.TaskEvent, bool) {
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != taskEventMessage {
		return nil, false
	}
	var ev dto.TaskEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		return nil, false
	}
	return &ev, true
}
