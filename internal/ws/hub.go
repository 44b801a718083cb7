package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/game-playzui/bigtwo-server/internal/room"
)

// Hub tracks one live socket per user and fans outbound messages to them.
type Hub struct {
	Clients    map[int64]*Client
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	logger     *log.Logger

	hooksMu sync.Mutex
	hooks   map[int64]*hookQueue

	OnMessage func(client *Client, msg Message)
	// OnConnect runs after a socket is registered, OnDisconnect after the
	// user's current socket goes away. A socket replaced by a newer one for
	// the same user does not count as a disconnect. Hooks for one user run
	// one at a time, in event order.
	OnConnect    func(client *Client)
	OnDisconnect func(client *Client)
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		Clients:    make(map[int64]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.WithPrefix("hub"),
		hooks:      make(map[int64]*hookQueue),
	}
}

// hookQueue runs one user's connect and disconnect hooks in the order the
// hub saw the sockets come and go.
type hookQueue struct {
	pending []func()
	running bool
}

func (h *Hub) enqueueHook(userID int64, fn func()) {
	h.hooksMu.Lock()
	q, ok := h.hooks[userID]
	if !ok {
		q = &hookQueue{}
		h.hooks[userID] = q
	}
	q.pending = append(q.pending, fn)
	if q.running {
		h.hooksMu.Unlock()
		return
	}
	q.running = true
	h.hooksMu.Unlock()
	go h.runHooks(userID, q)
}

func (h *Hub) runHooks(userID int64, q *hookQueue) {
	for {
		h.hooksMu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			delete(h.hooks, userID)
			h.hooksMu.Unlock()
			return
		}
		fn := q.pending[0]
		q.pending = q.pending[1:]
		h.hooksMu.Unlock()
		fn()
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			h.mu.Lock()
			if existing, ok := h.Clients[client.UserID]; ok {
				close(existing.Send)
			}
			h.Clients[client.UserID] = client
			h.mu.Unlock()
			h.logger.Info("client registered", "user", client.UserID, "username", client.Username)
			if h.OnConnect != nil {
				h.enqueueHook(client.UserID, func() { h.OnConnect(client) })
			}

		case client := <-h.Unregister:
			h.mu.Lock()
			current := false
			if c, ok := h.Clients[client.UserID]; ok && c == client {
				delete(h.Clients, client.UserID)
				close(client.Send)
				current = true
			}
			h.mu.Unlock()
			h.logger.Info("client unregistered", "user", client.UserID, "current", current)
			if current && h.OnDisconnect != nil {
				h.enqueueHook(client.UserID, func() { h.OnDisconnect(client) })
			}
		}
	}
}

// Dispatch decodes one inbound frame and hands it to OnMessage.
func (h *Hub) Dispatch(client *Client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.trySend(client, NewErrorMessage("invalid message format"))
		return
	}
	if h.OnMessage != nil {
		h.OnMessage(client, msg)
	}
}

func (h *Hub) GetClient(userID int64) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.Clients[userID]
}

func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients)
}

// SendToClient drops the message if the user is offline or its buffer is
// full.
func (h *Hub) SendToClient(userID int64, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.Clients[userID]; ok {
		h.trySend(c, data)
	}
}

func (h *Hub) trySend(c *Client, data []byte) {
	select {
	case c.Send <- data:
	default:
		h.logger.Warn("send buffer full, dropping message", "user", c.UserID)
	}
}

// Notify wraps payload in an envelope of type t and sends it to userID.
func (h *Hub) Notify(userID int64, t MessageType, payload any) {
	data, err := NewMessage(t, payload)
	if err != nil {
		h.logger.Error("failed to encode message", "type", t, "error", err)
		return
	}
	h.SendToClient(userID, data)
}

// Send delivers room output; it satisfies room.Sender.
func (h *Hub) Send(userID int64, kind room.Kind, payload any) {
	h.Notify(userID, MessageType(kind), payload)
}
