package remap

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/soar/padremap/backend/internal/gamepad"
	"github.com/soar/padremap/backend/internal/metrics"
)

var (
	ErrRebindActive   = errors.New("a rebind is already listening")
	ErrNotListening   = errors.New("no rebind is listening")
	ErrUnsupportedKey = errors.New("input cannot be used as a binding")
)

// CancelKey aborts a listening session without changing the binding.
const CancelKey = "Escape"

// RebindState is the state of the rebinding controller.
type RebindState int

const (
	Idle RebindState = iota
	Listening
)

func (s RebindState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	}
	return fmt.Sprintf("RebindState(%d)", int(s))
}

// Input is a keyboard key or mouse button captured while listening.
type Input struct {
	Key         string `json:"key,omitempty"`
	MouseButton *int   `json:"mouseButton,omitempty"`
}

// Binding returns the binding string Input would produce.
func (in Input) Binding() string {
	if in.MouseButton != nil {
		return MouseButton(*in.MouseButton).Name()
	}
	return in.Key
}

// BindingWriter persists a single button binding.
type BindingWriter interface {
	SetBinding(button int, binding string) error
}

// Rebinder is the two-state rebinding controller: Idle, or Listening for the
// next input to assign to one button.
type Rebinder struct {
	writer   BindingWriter
	notifier Notifier
	log      zerolog.Logger

	mu       sync.Mutex
	state    RebindState
	button   int
	onChange []func(RebindState, int)
}

// NewRebinder creates an idle Rebinder writing bindings through w.
func NewRebinder(w BindingWriter, n Notifier, log zerolog.Logger) *Rebinder {
	if n == nil {
		n = nopNotifier{}
	}
	return &Rebinder{
		writer:   w,
		notifier: n,
		log:      log.With().Str("subsystem", "rebind").Logger(),
	}
}

// OnChange registers fn to run after every state transition.
func (r *Rebinder) OnChange(fn func(state RebindState, button int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = append(r.onChange, fn)
}

// State returns the current state and, when listening, the target button.
func (r *Rebinder) State() (RebindState, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.button
}

// SuppressContextMenu reports whether the host should block the context menu
// so a right click can be captured.
func (r *Rebinder) SuppressContextMenu() bool {
	state, _ := r.State()
	return state == Listening
}

// Start begins listening for a new binding for button. Starting while another
// session is listening is a no-op that returns ErrRebindActive.
func (r *Rebinder) Start(button int) error {
	if button < 0 || button >= gamepad.StandardButtons {
		return fmt.Errorf("%w: %d", ErrButtonOutOfRange, button)
	}

	r.mu.Lock()
	if r.state == Listening {
		r.mu.Unlock()
		return ErrRebindActive
	}
	r.state = Listening
	r.button = button
	r.mu.Unlock()

	r.log.Debug().Int("button", button).Msg("listening for binding")
	r.changed(Listening, button)
	return nil
}

// Cancel aborts the listening session.
func (r *Rebinder) Cancel() error {
	r.mu.Lock()
	if r.state != Listening {
		r.mu.Unlock()
		return ErrNotListening
	}
	button := r.stopLocked()
	r.mu.Unlock()

	r.changed(Idle, button)
	r.cancelled()
	return nil
}

func (r *Rebinder) cancelled() {
	metrics.Rebinds.WithLabelValues("cancelled").Inc()
	r.notifier.Notify("Binding cancelled")
}

// Capture assigns in to the listening button and persists it. The cancel key
// aborts instead. Inputs that cannot be bindings keep the session listening.
// It returns the new binding, or "" when the session was cancelled.
func (r *Rebinder) Capture(in Input) (string, error) {
	cancel := in.MouseButton == nil && in.Key == CancelKey
	binding := in.Binding()

	// The session checked is the session ended: a concurrent Cancel and Start
	// cannot move the capture onto another button.
	r.mu.Lock()
	if r.state != Listening {
		r.mu.Unlock()
		return "", ErrNotListening
	}
	if !cancel && !ValidBinding(binding) {
		r.mu.Unlock()
		r.notifier.Notify(fmt.Sprintf("%q cannot be used as a binding", binding))
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKey, binding)
	}
	button := r.stopLocked()
	r.mu.Unlock()

	r.changed(Idle, button)
	if cancel {
		r.cancelled()
		return "", nil
	}

	if err := r.writer.SetBinding(button, binding); err != nil {
		metrics.Rebinds.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("set binding for button %d: %w", button, err)
	}
	metrics.Rebinds.WithLabelValues("bound").Inc()

	r.log.Info().Int("button", button).Str("binding", binding).Msg("button rebound")
	if in.MouseButton != nil {
		r.notifier.Notify(fmt.Sprintf("%s bound to %s", ButtonName(button), DisplayName(binding)))
	} else {
		r.notifier.Notify(fmt.Sprintf("✓ %s → %s", ButtonName(button), DisplayName(binding)))
	}
	return binding, nil
}

// stopLocked returns to Idle and reports the button that was listening.
// r.mu must be held.
func (r *Rebinder) stopLocked() int {
	button := r.button
	r.state = Idle
	r.button = 0
	return button
}

func (r *Rebinder) changed(state RebindState, button int) {
	r.mu.Lock()
	fns := append([]func(RebindState, int){}, r.onChange...)
	r.mu.Unlock()
	for _, fn := range fns {
		fn(state, button)
	}
}
