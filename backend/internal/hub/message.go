package hub

import (
	"time"

	"github.com/soar/padremap/backend/internal/remap"
)

// Server → client message types.
const (
	TypeInput  = "input"
	TypeToast  = "toast"
	TypeStatus = "status"
	TypeConfig = "config"
	TypeRebind = "rebind"
	TypeError  = "error"
)

// Client → server message types.
const (
	TypeTarget       = "target"
	TypeCapture      = "capture"
	TypeRebindStart  = "rebind_start"
	TypeRebindCancel = "rebind_cancel"
	TypeSettings     = "settings"
	TypeSave         = "save"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string        `json:"type"`
	Seq       int64         `json:"seq"`
	Timestamp int64         `json:"timestamp"` // Unix milliseconds
	Event     any           `json:"event,omitempty"`
	Text      string        `json:"text,omitempty"`
	Connected *bool         `json:"connected,omitempty"`
	Label     string        `json:"label,omitempty"`
	Config    *remap.Config `json:"config,omitempty"`
	Listening *bool         `json:"listening,omitempty"`
	Button    *int          `json:"button,omitempty"`
}

func newMessage(typ string) *WSMessage {
	return &WSMessage{Type: typ, Timestamp: time.Now().UnixMilli()}
}

// NewInputMessage wraps a synthetic DOM event for the bridge page to dispatch.
func NewInputMessage(event any) *WSMessage {
	m := newMessage(TypeInput)
	m.Event = event
	return m
}

// NewToastMessage creates a transient notification.
func NewToastMessage(text string) *WSMessage {
	m := newMessage(TypeToast)
	m.Text = text
	return m
}

// NewStatusMessage reports the controller connection state.
func NewStatusMessage(connected bool, label string) *WSMessage {
	m := newMessage(TypeStatus)
	m.Connected = &connected
	m.Label = label
	return m
}

// NewConfigMessage carries the configuration for the settings UI.
func NewConfigMessage(cfg remap.Config) *WSMessage {
	m := newMessage(TypeConfig)
	m.Config = &cfg
	return m
}

// NewRebindMessage reports the rebinding state.
func NewRebindMessage(state remap.RebindState, button int) *WSMessage {
	m := newMessage(TypeRebind)
	listening := state == remap.Listening
	m.Listening = &listening
	m.Button = &button
	return m
}

// NewErrorMessage reports a rejected client command.
func NewErrorMessage(text string) *WSMessage {
	m := newMessage(TypeError)
	m.Text = text
	return m
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type     string         `json:"type"`
	Ready    bool           `json:"ready,omitempty"`
	Button   int            `json:"button,omitempty"`
	Input    *remap.Input   `json:"input,omitempty"`
	Settings *remap.Partial `json:"settings,omitempty"`
}
