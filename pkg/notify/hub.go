package notify

import (
	"net/http"
	"sync"
	"time"

	"hackvote/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer   = 32
	pingInterval = 20 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

type subscriber struct {
	id      string
	eventID string
	send    chan Change
}

// Hub fans changes out to the websocket clients watching an event.
type Hub struct {
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	events map[string]map[string]*subscriber
}

func NewHub(logger *zap.SugaredLogger, checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		events: make(map[string]map[string]*subscriber),
	}
}

// Publish drops the change for a subscriber whose buffer is full; live
// clients re-read projections on reconnect.
func (h *Hub) Publish(change Change) {
	if change.Timestamp.IsZero() {
		change.Timestamp = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.events[change.EventID] {
		select {
		case sub.send <- change:
		default:
			h.logger.Warnw("live subscriber is slow, change dropped", "subscriberID", sub.id, "eventID", change.EventID, "kind", change.Kind)
		}
	}
}

// Subscribe registers an in-process listener. The returned func unsubscribes
// and closes the channel.
func (h *Hub) Subscribe(eventID string) (<-chan Change, func()) {
	sub := &subscriber{
		id:      uuid.NewString(),
		eventID: eventID,
		send:    make(chan Change, sendBuffer),
	}

	h.mu.Lock()
	subs, ok := h.events[eventID]
	if !ok {
		subs = make(map[string]*subscriber)
		h.events[eventID] = subs
	}
	subs[sub.id] = sub
	h.mu.Unlock()

	metrics.AddLiveSubscribers(1)
	h.logger.Debugw("live subscriber registered", "subscriberID", sub.id, "eventID", eventID)

	var once sync.Once
	return sub.send, func() {
		once.Do(func() { h.unsubscribe(sub) })
	}
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	if subs, ok := h.events[sub.eventID]; ok {
		delete(subs, sub.id)
		if len(subs) == 0 {
			delete(h.events, sub.eventID)
		}
	}
	close(sub.send)
	h.mu.Unlock()

	metrics.AddLiveSubscribers(-1)
	h.logger.Debugw("live subscriber unregistered", "subscriberID", sub.id, "eventID", sub.eventID)
}

func (h *Hub) Subscribers(eventID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events[eventID])
}

// ServeWS upgrades GET /events/:id/live. The feed is server to client only;
// anything the client sends is discarded.
func (h *Hub) ServeWS(c *gin.Context) {
	eventID := c.Param("id")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "eventID", eventID, "err", err)
		return
	}

	changes, unsubscribe := h.Subscribe(eventID)
	done := make(chan struct{})

	go h.readPump(conn, done)
	h.writePump(conn, changes, done)

	unsubscribe()
	_ = conn.Close()
}

func (h *Hub) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debugw("websocket read error", "err", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, changes <-chan Change, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case change, ok := <-changes:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(change); err != nil {
				h.logger.Debugw("websocket write failed", "eventID", change.EventID, "err", err)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
