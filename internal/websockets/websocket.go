package websockets

import (
	"sync"
	"time"

	"linecheck/internal/events"
	"linecheck/internal/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	MESSAGE_TYPE_NOTIFICATION = "notification"
	MESSAGE_TYPE_INVALIDATION = "cache_invalidation"
	WRITE_TIMEOUT             = 10 * time.Second
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Manager fans notification and cache-invalidation events out to connected
// websocket clients. Connections are anonymous; the checklist UI is a shared
// kitchen display, not a per-user surface.
type Manager struct {
	clients map[*websocket.Conn]struct{}
	mu      sync.Mutex
	log     logger.Logger
}

func New(eventBus *events.EventBus) (*Manager, error) {
	log := logger.New("websockets")

	manager := &Manager{
		clients: make(map[*websocket.Conn]struct{}),
		log:     log,
	}

	if err := eventBus.Subscribe(events.NOTIFICATIONS_CHANNEL, func(event events.Event) error {
		manager.broadcast(MESSAGE_TYPE_NOTIFICATION, event)
		return nil
	}); err != nil {
		return nil, log.Err("failed to subscribe to notifications", err)
	}

	if err := eventBus.Subscribe(events.CACHE_INVALIDATION_CHANNEL, func(event events.Event) error {
		manager.broadcast(MESSAGE_TYPE_INVALIDATION, event)
		return nil
	}); err != nil {
		return nil, log.Err("failed to subscribe to cache invalidation", err)
	}

	log.Function("New").Info("Websocket manager started")
	return manager, nil
}

func (m *Manager) broadcast(messageType string, event events.Event) {
	log := m.log.Function("broadcast")

	message := Message{
		ID:        uuid.New().String(),
		Type:      messageType,
		Channel:   event.Channel.String(),
		Data:      event.Data,
		Timestamp: time.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for conn := range m.clients {
		if err := conn.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
			log.Warn("failed to set write deadline, dropping client", "error", err)
			delete(m.clients, conn)
			_ = conn.Close()
			continue
		}
		if err := conn.WriteJSON(message); err != nil {
			log.Warn("failed to write to client, dropping", "error", err)
			delete(m.clients, conn)
			_ = conn.Close()
		}
	}
}

// HandleWebSocket owns the connection for its lifetime. The read loop exists
// only to detect disconnects; clients never send meaningful messages.
func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	m.mu.Lock()
	m.clients[c] = struct{}{}
	clientCount := len(m.clients)
	m.mu.Unlock()

	log.Info("Client connected", "clients", clientCount)

	defer func() {
		m.mu.Lock()
		delete(m.clients, c)
		m.mu.Unlock()
		_ = c.Close()
		log.Info("Client disconnected")
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
