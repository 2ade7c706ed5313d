package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Session message types
const (
	MsgEvaluationResult MessageType = "evaluation_result"
	MsgStageAdvanced    MessageType = "stage_advanced"
	MsgSessionCompleted MessageType = "session_completed"
	MsgReportReady      MessageType = "report_ready"
	MsgError            MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket observers per session. A session can have several
// observers (candidate UI, recruiter dashboard); all receive every event.
type Hub struct {
	// sessionID -> set of connections
	observers map[string]map[*Connection]struct{}

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage

	log *zap.Logger
}

// Connection represents one WebSocket observer of a session
type Connection struct {
	SessionID string
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message to broadcast to a session's observers
type BroadcastMessage struct {
	SessionID  string
	Disconnect bool
	Message    *Message
}

// NewHub creates a new WebSocket hub
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		observers:  make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		log:        log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.observers[conn.SessionID] == nil {
				h.observers[conn.SessionID] = make(map[*Connection]struct{})
			}
			h.observers[conn.SessionID][conn] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("observer connected", zap.String("session", conn.SessionID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.observers[conn.SessionID]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.observers, conn.SessionID)
					}
				}
			}
			h.mu.Unlock()
			h.log.Debug("observer disconnected", zap.String("session", conn.SessionID))

		case msg := <-h.broadcast:
			h.mu.Lock()
			conns := h.observers[msg.SessionID]
			if msg.Disconnect {
				for conn := range conns {
					close(conn.Send)
				}
				delete(h.observers, msg.SessionID)
				h.mu.Unlock()
				continue
			}
			data, _ := json.Marshal(msg.Message)
			for conn := range conns {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToSession sends a message to all observers of a session
// (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// DisconnectSession closes all observer connections of a session
// (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	h.broadcast <- &BroadcastMessage{
		SessionID:  sessionID,
		Disconnect: true,
	}
}
