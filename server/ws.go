package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsConn serializes writes; gorilla connections allow one writer at a
// time.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

// Hub tracks WebSocket connections by session id so plan generation can
// stream progress to the client that asked for it.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string][]*wsConn
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string][]*wsConn)}
}

// Handle upgrades the request and services the connection until close.
// Incoming frames: ping gets a pong, other valid JSON is acknowledged,
// invalid JSON gets an error frame.
func (h *Hub) Handle(c *gin.Context) {
	sessionID := c.Param("session_id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for session %s: %v", sessionID, err)
		return
	}

	wc := &wsConn{conn: conn}
	h.register(sessionID, wc)
	defer h.unregister(sessionID, wc)
	defer conn.Close()

	_ = wc.writeJSON(gin.H{"type": "connection_established", "session_id": sessionID})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.writeJSON(gin.H{"type": "error", "message": "invalid JSON"})
			continue
		}

		if msg["type"] == "ping" {
			_ = wc.writeJSON(gin.H{"type": "pong"})
			continue
		}
		_ = wc.writeJSON(gin.H{"type": "message_received"})
	}
}

func (h *Hub) register(sessionID string, wc *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[sessionID] = append(h.sessions[sessionID], wc)
}

func (h *Hub) unregister(sessionID string, wc *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.sessions[sessionID]
	for i, c := range conns {
		if c == wc {
			conns = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(conns) == 0 {
		delete(h.sessions, sessionID)
	} else {
		h.sessions[sessionID] = conns
	}
}

// send delivers a payload to every connection in the session
func (h *Hub) send(sessionID string, payload any) {
	if sessionID == "" {
		return
	}
	h.mu.RLock()
	conns := append([]*wsConn(nil), h.sessions[sessionID]...)
	h.mu.RUnlock()

	for _, wc := range conns {
		if err := wc.writeJSON(payload); err != nil {
			log.Printf("[ws] send failed for session %s: %v", sessionID, err)
		}
	}
}

// SendProgress streams a generation progress update
func (h *Hub) SendProgress(sessionID string, percent int, message string) {
	h.send(sessionID, gin.H{
		"type":     "generation_progress",
		"progress": percent,
		"message":  message,
	})
}

// SendComplete signals the end of generation, with either a plan id or
// an error message.
func (h *Hub) SendComplete(sessionID, planID, errMsg string) {
	payload := gin.H{"type": "generation_complete"}
	if errMsg != "" {
		payload["error"] = errMsg
	} else {
		payload["plan_id"] = planID
	}
	h.send(sessionID, payload)
}
