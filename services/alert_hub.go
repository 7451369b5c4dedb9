package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

type WSClient struct {
	UserID uint
	Conn   *websocket.Conn
}

// AlertHub fans out interaction alerts to a user's open websocket
// connections. One user may hold several connections (phone + browser).
type AlertHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*WSClient]struct{}
}

func NewAlertHub() *AlertHub {
	return &AlertHub{clients: make(map[uint]map[*WSClient]struct{})}
}

func (h *AlertHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *AlertHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

// HighRiskAlert is pushed when a saved check found a high-severity hit.
type HighRiskAlert struct {
	Kind             string `json:"kind"`
	FoodName         string `json:"food_name"`
	MaxSeverity      string `json:"max_severity"`
	InteractionCount int    `json:"interaction_count"`
}

func (h *AlertHub) BroadcastAlert(userID uint, payload any) {
	msg, _ := json.Marshal(payload)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
	}
}
