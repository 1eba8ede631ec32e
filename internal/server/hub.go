package server

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/AbelMSG89/json-synchronized/pkg/panel"
)

const sendBuffer = 32

// Hub fans outbound panel messages out to every connected client.
type Hub struct {
	logger   *log.Logger
	confirms *panel.Confirmations

	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub returns an empty hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		logger:   logger,
		confirms: panel.NewConfirmations(),
		clients:  make(map[string]*client),
	}
}

// Confirmations is the registry clients answer confirm requests through.
func (h *Hub) Confirmations() *panel.Confirmations { return h.confirms }

// Dialog broadcasts notifications to every client. Confirmations go to
// all clients and the first reply wins.
func (h *Hub) Dialog() panel.Dialog {
	return panel.RemoteDialog{Out: h, Confirms: h.confirms}
}

// Publish implements panel.Publisher.
func (h *Hub) Publish(msg panel.Outbound) {
	data, err := msg.Encode()
	if err != nil {
		h.logger.Error("encode message", "err", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.push(data)
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register() *client {
	c := &client{id: uuid.NewString(), send: make(chan []byte, sendBuffer), hub: h}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.logger.Debug("client connected", "id", c.id)
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	h.logger.Debug("client disconnected", "id", c.id)
}

// client is one websocket connection. It also acts as the Publisher for
// replies to its own requests.
type client struct {
	id   string
	send chan []byte
	hub  *Hub
}

func (c *client) Publish(msg panel.Outbound) {
	data, err := msg.Encode()
	if err != nil {
		c.hub.logger.Error("encode message", "err", err)
		return
	}
	c.push(data)
}

func (c *client) dialog() panel.Dialog {
	return panel.RemoteDialog{Out: c, Confirms: c.hub.confirms}
}

// push never blocks. When the buffer is full the oldest message is
// dropped; every json message carries the full state, so a slow client
// catches up with the next one.
func (c *client) push(data []byte) {
	select {
	case c.send <- data:
		return
	default:
	}
	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- data:
	default:
	}
}
