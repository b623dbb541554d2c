package websocket

import (
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"taskboard/pkg/logger"
)

const (
	// DefaultSendBuffer per-client queue; a client that falls this far behind is dropped
	DefaultSendBuffer = 64
	writeWait         = 10 * time.Second
)

// Conn is the part of a websocket connection the hub writes to.
// *github.com/gofiber/websocket/v2.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

type WebSocketManager struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan BroadcastMessage
	done       chan struct{}
	stopOnce   sync.Once
	sendBuffer int
	mutex      sync.RWMutex
}

type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	RoomID string
	conn   Conn
	send   chan outbound
}

type Message struct {
	Type   string      `json:"type"`
	Data   interface{} `json:"data"`
	RoomID string      `json:"roomId,omitempty"`
}

type BroadcastMessage struct {
	Message Message
	RoomIDs []string // ว่าง = ทุก client
	Target  *Client // unicast
	Ping    bool
}

type outbound struct {
	message Message
	ping    bool
}

// NewManager สร้าง hub ใหม่ (ยังไม่ start)
func NewManager(sendBuffer int) *WebSocketManager {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &WebSocketManager{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan BroadcastMessage, 256),
		done:       make(chan struct{}),
		sendBuffer: sendBuffer,
	}
}

// Start runs the hub loop in its own goroutine
func (m *WebSocketManager) Start() {
	go m.run()
}

// Stop closes every client and ends the loop
func (m *WebSocketManager) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

func (m *WebSocketManager) run() {
	for {
		select {
		case <-m.done:
			m.mutex.Lock()
			for client := range m.clients {
				m.removeLocked(client)
			}
			m.mutex.Unlock()
			return

		case client := <-m.register:
			m.mutex.Lock()
			m.clients[client] = true
			if client.RoomID != "" {
				m.joinLocked(client, client.RoomID)
			}
			total := len(m.clients)
			m.mutex.Unlock()

			logger.Info("[WebSocket] Client connected",
				"client_id", client.ID, "user_id", client.UserID, "room_id", client.RoomID, "clients", total)

		case client := <-m.unregister:
			m.mutex.Lock()
			if m.clients[client] {
				m.removeLocked(client)
				logger.Info("[WebSocket] Client disconnected",
					"client_id", client.ID, "user_id", client.UserID, "room_id", client.RoomID)
			}
			m.mutex.Unlock()

		case message := <-m.broadcast:
			m.mutex.Lock()
			out := outbound{message: message.Message, ping: message.Ping}
			switch {
			case message.Target != nil:
				if m.clients[message.Target] {
					m.enqueueLocked(message.Target, out)
				}
			case len(message.RoomIDs) > 0:
				// members of any listed room plus clients that did not pick a
				// room; each client gets the message once
				for client := range m.clients {
					if client.RoomID == "" || slices.Contains(message.RoomIDs, client.RoomID) {
						m.enqueueLocked(client, out)
					}
				}
			default:
				for client := range m.clients {
					m.enqueueLocked(client, out)
				}
			}
			m.mutex.Unlock()
		}
	}
}

// enqueueLocked never blocks the hub; a full queue drops the client
func (m *WebSocketManager) enqueueLocked(client *Client, out outbound) {
	select {
	case client.send <- out:
	default:
		logger.Warn("[WebSocket] Client too slow, dropping", "client_id", client.ID, "user_id", client.UserID)
		m.removeLocked(client)
	}
}

func (m *WebSocketManager) removeLocked(client *Client) {
	if !m.clients[client] {
		return
	}
	delete(m.clients, client)
	m.leaveLocked(client)
	close(client.send)
}

func (m *WebSocketManager) joinLocked(client *Client, roomID string) {
	if m.rooms[roomID] == nil {
		m.rooms[roomID] = make(map[*Client]bool)
	}
	m.rooms[roomID][client] = true
	client.RoomID = roomID
}

func (m *WebSocketManager) leaveLocked(client *Client) {
	if client.RoomID == "" || m.rooms[client.RoomID] == nil {
		return
	}
	delete(m.rooms[client.RoomID], client)
	if len(m.rooms[client.RoomID]) == 0 {
		delete(m.rooms, client.RoomID)
	}
}

// writePump is the only writer of a connection
func (m *WebSocketManager) writePump(client *Client) {
	defer client.conn.Close()

	for out := range client.send {
		var err error
		if out.ping {
			err = client.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		} else {
			err = client.conn.WriteJSON(out.message)
		}
		if err != nil {
			logger.Warn("[WebSocket] Error sending message", "client_id", client.ID, "error", err)
			m.UnregisterClient(client)
			// drain until the hub closes the queue
			for range client.send {
			}
			return
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// Public API
// ═══════════════════════════════════════════════════════════════════════════════

// RegisterClient adds a connection; roomID "" receives every event
func (m *WebSocketManager) RegisterClient(conn Conn, userID uuid.UUID, roomID string) *Client {
	client := &Client{
		ID:     uuid.New(),
		UserID: userID,
		RoomID: roomID,
		conn:   conn,
		send:   make(chan outbound, m.sendBuffer),
	}
	go m.writePump(client)

	select {
	case m.register <- client:
	case <-m.done:
		close(client.send)
	}
	return client
}

func (m *WebSocketManager) UnregisterClient(client *Client) {
	select {
	case m.unregister <- client:
	case <-m.done:
	}
}

func (m *WebSocketManager) publish(message BroadcastMessage) {
	select {
	case m.broadcast <- message:
	case <-m.done:
	}
}

// BroadcastToRoom ส่งให้ห้อง roomID และ client ที่ไม่ได้เลือกห้อง
func (m *WebSocketManager) BroadcastToRoom(roomID string, messageType string, data interface{}) {
	m.BroadcastToRooms([]string{roomID}, messageType, data)
}

// BroadcastToRooms same as BroadcastToRoom for several rooms at once
func (m *WebSocketManager) BroadcastToRooms(roomIDs []string, messageType string, data interface{}) {
	if len(roomIDs) == 0 {
		return
	}
	msg := Message{Type: messageType, Data: data}
	if len(roomIDs) == 1 {
		msg.RoomID = roomIDs[0]
	}
	m.publish(BroadcastMessage{Message: msg, RoomIDs: roomIDs})
}

func (m *WebSocketManager) BroadcastToAll(messageType string, data interface{}) {
	m.publish(BroadcastMessage{
		Message: Message{Type: messageType, Data: data},
	})
}

// SendToClient unicast ผ่าน writePump เดียวกัน
func (m *WebSocketManager) SendToClient(client *Client, messageType string, data interface{}) {
	m.publish(BroadcastMessage{
		Message: Message{Type: messageType, Data: data},
		Target:  client,
	})
}

// PingClients sends a ping frame to everyone; dead connections fail the
// write and get pruned
func (m *WebSocketManager) PingClients() {
	m.publish(BroadcastMessage{Ping: true})
}

func (m *WebSocketManager) JoinRoom(client *Client, roomID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if !m.clients[client] {
		return
	}
	m.leaveLocked(client)
	if roomID == "" {
		client.RoomID = ""
		return
	}
	m.joinLocked(client, roomID)
}

func (m *WebSocketManager) LeaveRoom(client *Client) {
	m.JoinRoom(client, "")
}

func (m *WebSocketManager) GetRoomClients(roomID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if clients, ok := m.rooms[roomID]; ok {
		return len(clients)
	}
	return 0
}

func (m *WebSocketManager) GetTotalClients() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return len(m.clients)
}

// ═══════════════════════════════════════════════════════════════════════════════
// Inbound client messages
// ═══════════════════════════════════════════════════════════════════════════════

// HandleClientMessage handles ping / join_room / leave_room from a client
func (m *WebSocketManager) HandleClientMessage(client *Client, data []byte) {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		logger.Warn("[WebSocket] Error unmarshaling message", "client_id", client.ID, "error", err)
		return
	}

	switch message.Type {
	case "ping":
		m.SendToClient(client, "pong", "pong")

	case "join_room":
		roomID := message.RoomID
		if roomData, ok := message.Data.(map[string]interface{}); ok {
			if id, ok := roomData["roomId"].(string); ok {
				roomID = id
			}
		}
		if roomID == "" {
			m.SendToClient(client, "error", map[string]interface{}{"message": "roomId is required"})
			return
		}
		m.JoinRoom(client, roomID)
		m.SendToClient(client, "room_joined", map[string]interface{}{"roomId": roomID})

	case "leave_room":
		m.LeaveRoom(client)
		m.SendToClient(client, "room_left", "Left room successfully")

	default:
		logger.Debug("[WebSocket] Unknown message type", "type", message.Type)
	}
}
