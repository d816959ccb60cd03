package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/soar/padremap/backend/internal/metrics"
	"github.com/soar/padremap/backend/internal/remap"
)

var errNoReceiver = errors.New("no bridge page accepted the event")

// Hub manages bridge page clients. It is the browser-side host binding of the
// remapper: a remap.Target that forwards synthetic events to pages with an
// attached game document, and a remap.Notifier for toasts and status.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	seq        atomic.Int64
	log        zerolog.Logger

	// Replayed to clients on connect.
	lastMu     sync.Mutex
	lastStatus *WSMessage
	lastConfig *WSMessage
	lastRebind *WSMessage
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log.With().Str("subsystem", "hub").Logger(),
	}
}

// Register adds a new client to the hub.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Run starts the hub's main loop until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			metrics.WebsocketClients.Set(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WebsocketClients.Set(float64(total))
			h.log.Info().Str("client", client.id).Int("total", total).Msg("client connected")
			h.sendInitialState(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WebsocketClients.Set(float64(total))
			h.log.Info().Str("client", client.id).Int("total", total).Msg("client disconnected")
		}
	}
}

func (h *Hub) sendInitialState(c *Client) {
	h.lastMu.Lock()
	initial := []*WSMessage{h.lastStatus, h.lastConfig, h.lastRebind}
	h.lastMu.Unlock()
	for _, msg := range initial {
		if msg == nil {
			continue
		}
		data, err := json.Marshal(msg)
		if err != nil {
			h.log.Error().Err(err).Msg("marshal initial state")
			continue
		}
		select {
		case c.send <- data:
		default:
		}
	}
}

// broadcast sends msg to every client accepted by filter and returns how many
// clients queued it.
func (h *Hub) broadcast(msg *WSMessage, filter func(*Client) bool) (int, error) {
	msg.Seq = h.seq.Add(1)
	data, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("marshal %s message: %w", msg.Type, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for client := range h.clients {
		if filter != nil && !filter(client) {
			continue
		}
		select {
		case client.send <- data:
			sent++
		default:
			// Client send buffer full, disconnect
			go func(c *Client) {
				h.unregister <- c
			}(client)
		}
	}
	return sent, nil
}

func hasTarget(c *Client) bool {
	return c.target.Load()
}

// Ready reports whether any connected page has a game document attached.
func (h *Hub) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if hasTarget(client) {
			return true
		}
	}
	return false
}

func (h *Hub) dispatch(event any) error {
	sent, err := h.broadcast(NewInputMessage(event), hasTarget)
	if err != nil {
		return err
	}
	if sent == 0 {
		return errNoReceiver
	}
	return nil
}

func (h *Hub) DispatchKey(ev remap.KeyEvent) error { return h.dispatch(ev) }

func (h *Hub) DispatchMouseButton(ev remap.MouseButtonEvent) error { return h.dispatch(ev) }

func (h *Hub) DispatchMouseMove(ev remap.MouseMoveEvent) error { return h.dispatch(ev) }

// Notify shows a transient message on every page.
func (h *Hub) Notify(message string) {
	if _, err := h.broadcast(NewToastMessage(message), nil); err != nil {
		h.log.Error().Err(err).Msg("toast broadcast failed")
	}
}

// ControllerStatus updates the controller status indicator on every page.
func (h *Hub) ControllerStatus(connected bool, label string) {
	msg := NewStatusMessage(connected, label)
	h.lastMu.Lock()
	h.lastStatus = msg
	h.lastMu.Unlock()
	if _, err := h.broadcast(msg, nil); err != nil {
		h.log.Error().Err(err).Msg("status broadcast failed")
	}
}

// PublishConfig re-renders the settings UI with cfg.
func (h *Hub) PublishConfig(cfg remap.Config) {
	msg := NewConfigMessage(cfg)
	h.lastMu.Lock()
	h.lastConfig = msg
	h.lastMu.Unlock()
	if _, err := h.broadcast(msg, nil); err != nil {
		h.log.Error().Err(err).Msg("config broadcast failed")
	}
}

// PublishRebind tells pages whether a rebind is listening, so they capture
// input and suppress the context menu.
func (h *Hub) PublishRebind(state remap.RebindState, button int) {
	msg := NewRebindMessage(state, button)
	h.lastMu.Lock()
	h.lastRebind = msg
	h.lastMu.Unlock()
	if _, err := h.broadcast(msg, nil); err != nil {
		h.log.Error().Err(err).Msg("rebind broadcast failed")
	}
}
