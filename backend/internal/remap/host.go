package remap

import (
	"errors"

	"github.com/soar/padremap/backend/internal/gamepad"
)

// ErrTargetUnavailable is returned when no document is attached to receive
// synthetic events.
var ErrTargetUnavailable = errors.New("dispatch target unavailable")

// ErrUnsupportedInput is wrapped by targets that can never deliver a given
// key or mouse button. Such a binding is not retried until it is released.
var ErrUnsupportedInput = errors.New("input not supported by target")

// DOM event type names.
const (
	EventKeyDown   = "keydown"
	EventKeyUp     = "keyup"
	EventMouseDown = "mousedown"
	EventMouseUp   = "mouseup"
	EventMouseMove = "mousemove"
)

// KeyEvent mirrors the KeyboardEventInit dictionary.
type KeyEvent struct {
	Type       string `json:"type"`
	Key        string `json:"key"`
	Code       string `json:"code"`
	KeyCode    int    `json:"keyCode"`
	Which      int    `json:"which"`
	Bubbles    bool   `json:"bubbles"`
	Cancelable bool   `json:"cancelable"`
}

// MouseButtonEvent mirrors the MouseEventInit dictionary for button changes.
type MouseButtonEvent struct {
	Type       string `json:"type"`
	Button     int    `json:"button"`
	Buttons    int    `json:"buttons"`
	Bubbles    bool   `json:"bubbles"`
	Cancelable bool   `json:"cancelable"`
}

// MouseMoveEvent carries relative pointer motion for pointer-lock style aim.
type MouseMoveEvent struct {
	Type       string  `json:"type"`
	MovementX  float64 `json:"movementX"`
	MovementY  float64 `json:"movementY"`
	Bubbles    bool    `json:"bubbles"`
	Cancelable bool    `json:"cancelable"`
}

// Target is the host binding that delivers synthetic events to the embedded
// game document. Ready is false while no document is attached.
type Target interface {
	Ready() bool
	DispatchKey(KeyEvent) error
	DispatchMouseButton(MouseButtonEvent) error
	DispatchMouseMove(MouseMoveEvent) error
}

// Notifier is the host binding for transient user-facing messages.
type Notifier interface {
	Notify(message string)
	ControllerStatus(connected bool, label string)
}

// Source enumerates connected gamepads.
type Source interface {
	Gamepads() []gamepad.Pad
}

// ConfigSource supplies the configuration in effect for a tick.
type ConfigSource interface {
	Config() Config
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}
func (nopNotifier) ControllerStatus(bool, string) {}
