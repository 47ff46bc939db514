package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"
)

// Event types pushed to connected clients.
const (
	EventProductStatusChanged = "product_status_changed"
	EventUploadStatusChanged  = "upload_status_changed"
)

// Notifier publishes realtime events. *Hub delivers them to connected
// clients; processes without clients hand them to the API through the outbox.
type Notifier interface {
	Publish(eventType string, payload map[string]interface{})
}

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	done       chan struct{}
	mutex      sync.Mutex
	logger     zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "ws_hub").Logger(),
	}
}

// Run serves the hub until ctx is done. It must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			n := len(h.Clients)
			h.mutex.Unlock()
			h.logger.Debug().Int("clients", n).Msg("ws client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Publish queues an event of the given type. A nil hub or a full queue drops
// the event; clients refetch on reconnect anyway.
func (h *Hub) Publish(eventType string, payload map[string]interface{}) {
	if h == nil {
		return
	}
	event := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		event[k] = v
	}
	event["type"] = eventType

	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("type", eventType).Msg("marshal ws event")
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		h.logger.Warn().Str("type", eventType).Msg("ws broadcast queue full, event dropped")
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Handler is mounted on the /ws route after websocket.New upgrade. It returns
// at once when the hub has stopped.
func (h *Hub) Handler(conn *websocket.Conn) {
	select {
	case h.Register <- conn:
	case <-h.done:
		return
	}
	defer func() {
		select {
		case h.Unregister <- conn:
		case <-h.done:
		}
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
