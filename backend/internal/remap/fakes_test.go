package remap_test

import (
	"errors"
	"fmt"
	"sync"

	"github.com/soar/padremap/backend/internal/gamepad"
	"github.com/soar/padremap/backend/internal/remap"
)

var errDispatch = errors.New("dispatch failed")

// recorder is a remap.Target that records every event it accepts.
type recorder struct {
	mu     sync.Mutex
	ready  bool
	fail   bool
	keys   []remap.KeyEvent
	mouse  []remap.MouseButtonEvent
	moves  []remap.MouseMoveEvent
	events []string
	reject map[string]bool
	tries  map[string]int
}

func newRecorder() *recorder { return &recorder{ready: true} }

func (r *recorder) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

func (r *recorder) setReady(v bool) {
	r.mu.Lock()
	r.ready = v
	r.mu.Unlock()
}

func (r *recorder) setFail(v bool) {
	r.mu.Lock()
	r.fail = v
	r.mu.Unlock()
}

// rejectInput makes the recorder refuse binding permanently.
func (r *recorder) rejectInput(binding string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reject == nil {
		r.reject = make(map[string]bool)
	}
	r.reject[binding] = true
}

// attempts counts dispatches of binding, rejected ones included.
func (r *recorder) attempts(binding string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tries[binding]
}

func (r *recorder) try(binding string) error {
	if r.tries == nil {
		r.tries = make(map[string]int)
	}
	r.tries[binding]++
	if r.fail {
		return errDispatch
	}
	if r.reject[binding] {
		return fmt.Errorf("no code for %q: %w", binding, remap.ErrUnsupportedInput)
	}
	return nil
}

func (r *recorder) DispatchKey(ev remap.KeyEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.try(ev.Key); err != nil {
		return err
	}
	r.keys = append(r.keys, ev)
	r.events = append(r.events, ev.Type+":"+ev.Key)
	return nil
}

func (r *recorder) DispatchMouseButton(ev remap.MouseButtonEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.try(remap.MouseButton(ev.Button).Name()); err != nil {
		return err
	}
	r.mouse = append(r.mouse, ev)
	r.events = append(r.events, ev.Type+":"+remap.MouseButton(ev.Button).Name())
	return nil
}

func (r *recorder) DispatchMouseMove(ev remap.MouseMoveEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errDispatch
	}
	r.moves = append(r.moves, ev)
	return nil
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) Moves() []remap.MouseMoveEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]remap.MouseMoveEvent(nil), r.moves...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys, r.mouse, r.moves, r.events = nil, nil, nil, nil
}

// notes is a remap.Notifier that keeps every message.
type notes struct {
	mu       sync.Mutex
	messages []string
	status   []string
}

func (n *notes) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *notes) ControllerStatus(connected bool, label string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	state := "disconnected"
	if connected {
		state = "connected"
	}
	n.status = append(n.status, state+":"+label)
}

func (n *notes) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func (n *notes) Status() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.status...)
}

// pads is a scripted remap.Source.
type pads struct {
	mu   sync.Mutex
	list []gamepad.Pad
}

func (p *pads) Gamepads() []gamepad.Pad {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]gamepad.Pad(nil), p.list...)
}

func (p *pads) set(list ...gamepad.Pad) {
	p.mu.Lock()
	p.list = list
	p.mu.Unlock()
}

// staticConfig is a remap.ConfigSource.
type staticConfig struct {
	cfg remap.Config
}

func (s *staticConfig) Config() remap.Config { return s.cfg }

// writer is a remap.BindingWriter.
type writer struct {
	err      error
	bindings map[int]string
}

func (w *writer) SetBinding(button int, binding string) error {
	if w.err != nil {
		return w.err
	}
	if w.bindings == nil {
		w.bindings = make(map[int]string)
	}
	w.bindings[button] = binding
	return nil
}
