package socket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MessageType defines the type of a pushed message
type MessageType string

const (
	// Dashboard updates
	MessageTicketCreated  MessageType = "ticket_created"
	MessageDataRefreshed  MessageType = "data_refreshed"
	MessageSessionExpired MessageType = "session_expired"

	// System messages
	MessagePing MessageType = "ping"
	MessagePong MessageType = "pong"
	MessageAck  MessageType = "ack"
)

// Message is the wire envelope pushed to browsers
type Message struct {
	Type      MessageType            `json:"type"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Conn represents one connected browser tab
type Conn struct {
	ID       string
	ClientID string
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan []byte
	lastPing time.Time
}

// Hub maintains the set of connected browser tabs, indexed by the portal
// client they belong to. One client may have several tabs open.
type Hub struct {
	conns       map[*Conn]bool
	clientConns map[string]map[*Conn]bool

	register   chan *Conn
	unregister chan *Conn
	direct     chan *directMessage

	mu sync.RWMutex
}

type directMessage struct {
	ClientID string
	Message  []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		conns:       make(map[*Conn]bool),
		clientConns: make(map[string]map[*Conn]bool),
		register:    make(chan *Conn),
		unregister:  make(chan *Conn),
		direct:      make(chan *directMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	log.Println("[Hub] WebSocket hub started")

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case conn := <-h.register:
			h.registerConn(conn)

		case conn := <-h.unregister:
			h.unregisterConn(conn)

		case dm := <-h.direct:
			h.sendToClient(dm)

		case <-pingTicker.C:
			h.pingConns()
		}
	}
}

func (h *Hub) registerConn(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[conn] = true
	if h.clientConns[conn.ClientID] == nil {
		h.clientConns[conn.ClientID] = make(map[*Conn]bool)
	}
	h.clientConns[conn.ClientID][conn] = true

	log.Printf("[Hub] ✅ Connection registered: client=%s, id=%s, total=%d",
		conn.ClientID, conn.ID, len(h.conns))
}

func (h *Hub) unregisterConn(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)

		if conns, ok := h.clientConns[conn.ClientID]; ok {
			delete(conns, conn)
			if len(conns) == 0 {
				delete(h.clientConns, conn.ClientID)
			}
		}

		close(conn.Send)
		log.Printf("[Hub] ❌ Connection closed: client=%s, id=%s, total=%d",
			conn.ClientID, conn.ID, len(h.conns))
	}
}

func (h *Hub) sendToClient(dm *directMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.clientConns[dm.ClientID]
	if !ok {
		return
	}

	for conn := range conns {
		select {
		case conn.Send <- dm.Message:
		default:
			go func(c *Conn) {
				h.unregister <- c
			}(conn)
		}
	}
}

func (h *Hub) pingConns() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.conns {
		if err := conn.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
			go func(c *Conn) {
				h.unregister <- c
			}(conn)
		}
	}
}

// SendToClient pushes a typed message to every connection of a client
func (h *Hub) SendToClient(clientID string, msgType MessageType, payload map[string]interface{}) {
	msg := Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Hub] Failed to marshal %s message: %v", msgType, err)
		return
	}

	select {
	case h.direct <- &directMessage{ClientID: clientID, Message: data}:
	default:
		log.Printf("[Hub] Direct channel full, dropping %s for client %s", msgType, clientID)
	}
}

// ConnectedCount returns the number of open connections
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
