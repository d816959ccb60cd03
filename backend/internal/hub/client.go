package hub

import (
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/soar/padremap/backend/internal/remap"
)

// Controller handles commands sent by the settings UI.
type Controller interface {
	StartRebind(button int) error
	CancelRebind() error
	Capture(in remap.Input) error
	ApplySettings(p remap.Partial) error
	SaveSettings()
}

// Client represents a connected bridge page.
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	target atomic.Bool // page has a game document to dispatch into
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// ID returns the client's unique id.
func (c *Client) ID() string {
	return c.id
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			break
		}
	}
}

// ReadPumpWithHandler reads messages from the WebSocket and handles client commands.
func (c *Client) ReadPumpWithHandler(ctrl Controller) {
	defer func() {
		c.target.Store(false)
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			c.hub.log.Warn().Err(err).Str("client", c.id).Msg("error parsing client message")
			continue
		}
		c.handle(ctrl, clientMsg)
	}
}

func (c *Client) handle(ctrl Controller, msg ClientMessage) {
	log := c.hub.log.With().Str("client", c.id).Str("type", msg.Type).Logger()

	var err error
	switch msg.Type {
	case TypeTarget:
		c.target.Store(msg.Ready)
		if msg.Ready {
			log.Info().Msg("game document attached")
		} else {
			log.Debug().Msg("game document detached")
		}
	case TypeRebindStart:
		err = ctrl.StartRebind(msg.Button)
		if errors.Is(err, remap.ErrRebindActive) {
			log.Debug().Int("button", msg.Button).Msg("rebind already listening, ignored")
			return
		}
	case TypeRebindCancel:
		err = ctrl.CancelRebind()
	case TypeCapture:
		if msg.Input == nil {
			log.Debug().Msg("capture without input")
			return
		}
		err = ctrl.Capture(*msg.Input)
	case TypeSettings:
		if msg.Settings == nil {
			return
		}
		err = ctrl.ApplySettings(*msg.Settings)
	case TypeSave:
		ctrl.SaveSettings()
	default:
		log.Debug().Msg("unknown client message")
		return
	}

	if err != nil {
		log.Debug().Err(err).Msg("client command rejected")
		c.reply(NewErrorMessage(err.Error()))
	}
}

func (c *Client) reply(msg *WSMessage) {
	msg.Seq = c.hub.seq.Add(1)
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
