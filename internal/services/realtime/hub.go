package realtime

import (
	"sync"

	"go.uber.org/zap"
)

const (
	EventReceiveMessage = "receive-message"
	EventUserTyping     = "user-typing"

	droppedLabel = "dropped"
)

// Conn is the part of a live client connection the hub needs.
type Conn interface {
	ID() string
	Emit(event string, args ...interface{})
}

type EventRecorder interface {
	RelayEvent(event string)
}

// Hub maps users to their live connections and pushes events to them.
// Delivery is at most once: an event for a user with no connection is
// dropped.
type Hub struct {
	mu     sync.RWMutex
	byUser map[int64]map[string]Conn
	byConn map[string]int64

	metrics EventRecorder
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		byUser: make(map[int64]map[string]Conn),
		byConn: make(map[string]int64),
		logger: logger,
	}
}

func (h *Hub) AttachMetrics(metrics EventRecorder) {
	h.metrics = metrics
}

// Join binds conn to userID. A connection bound to another user is moved.
func (h *Hub) Join(conn Conn, userID int64) {
	if conn == nil || userID <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.unbindLocked(conn.ID())
	conns, ok := h.byUser[userID]
	if !ok {
		conns = make(map[string]Conn)
		h.byUser[userID] = conns
	}
	conns[conn.ID()] = conn
	h.byConn[conn.ID()] = userID
}

func (h *Hub) Leave(conn Conn) {
	if conn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.unbindLocked(conn.ID())
}

// UserOf reports the user a connection joined as.
func (h *Hub) UserOf(connID string) (int64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userID, ok := h.byConn[connID]
	return userID, ok
}

func (h *Hub) Online(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.byUser[userID]) > 0
}

// Publish emits event to every connection of userID and returns how many
// connections it was handed to.
func (h *Hub) Publish(userID int64, event string, payload any) int {
	h.mu.RLock()
	targets := make([]Conn, 0, len(h.byUser[userID]))
	for _, conn := range h.byUser[userID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		h.record(droppedLabel)
		return 0
	}

	delivered := 0
	for _, conn := range targets {
		if h.emit(conn, event, payload) {
			delivered++
		}
	}
	if delivered > 0 {
		h.record(event)
	}
	return delivered
}

func (h *Hub) emit(conn Conn, event string, payload any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Warn("realtime emit failed",
				zap.String("conn_id", conn.ID()),
				zap.String("event", event),
				zap.Any("panic", r),
			)
			ok = false
		}
	}()
	conn.Emit(event, payload)
	return true
}

func (h *Hub) record(event string) {
	if h.metrics != nil {
		h.metrics.RelayEvent(event)
	}
}

func (h *Hub) unbindLocked(connID string) {
	userID, ok := h.byConn[connID]
	if !ok {
		return
	}
	delete(h.byConn, connID)
	if conns := h.byUser[userID]; conns != nil {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.byUser, userID)
		}
	}
}
