package remap

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/soar/padremap/backend/internal/metrics"
)

// Synthesizer turns key and mouse intents into DOM events on a Target and
// tracks what it is holding down. Pressing a held input or releasing an
// input that is not held is a no-op.
type Synthesizer struct {
	target              Target
	log                 zerolog.Logger
	failLog             zerolog.Logger
	pressedKeys         map[string]struct{}
	pressedMouseButtons map[string]struct{}
}

// NewSynthesizer creates a Synthesizer dispatching to target.
func NewSynthesizer(target Target, log zerolog.Logger) *Synthesizer {
	l := log.With().Str("subsystem", "synth").Logger()
	return &Synthesizer{
		target:              target,
		log:                 l,
		failLog:             l.Sample(&zerolog.BurstSampler{Burst: failLogBurst, Period: time.Second}),
		pressedKeys:         make(map[string]struct{}),
		pressedMouseButtons: make(map[string]struct{}),
	}
}

// failLogBurst caps dispatch failure warnings per second; the failure
// counter still sees every one.
const failLogBurst = 5

func (s *Synthesizer) ready() bool {
	if s.target == nil || !s.target.Ready() {
		s.log.Debug().Msg("no dispatch target attached")
		return false
	}
	return true
}

func (s *Synthesizer) record(eventType string, err error) error {
	if err != nil {
		metrics.DispatchFailures.WithLabelValues(eventType).Inc()
		s.failLog.Warn().Err(err).Str("type", eventType).Msg("dispatch failed")
		return err
	}
	metrics.EventsDispatched.WithLabelValues(eventType).Inc()
	return nil
}

// Key dispatches a keydown or keyup for key. The pressed set only changes
// when the dispatch succeeds.
func (s *Synthesizer) Key(key string, pressed bool) error {
	_, held := s.pressedKeys[key]
	if held == pressed {
		return nil
	}
	if !s.ready() {
		return ErrTargetUnavailable
	}

	eventType := EventKeyUp
	if pressed {
		eventType = EventKeyDown
	}
	info := LookupKey(key)
	ev := KeyEvent{
		Type:       eventType,
		Key:        key,
		Code:       info.Code,
		KeyCode:    info.KeyCode,
		Which:      info.KeyCode,
		Bubbles:    true,
		Cancelable: true,
	}
	if err := s.record(eventType, s.target.DispatchKey(ev)); err != nil {
		return fmt.Errorf("dispatch %s %q: %w", eventType, key, err)
	}

	if pressed {
		s.pressedKeys[key] = struct{}{}
	} else {
		delete(s.pressedKeys, key)
	}
	return nil
}

// MouseButton dispatches a mousedown or mouseup for a named mouse button.
// Unknown names are ignored.
func (s *Synthesizer) MouseButton(name string, pressed bool) error {
	button, ok := ParseMouseButton(name)
	if !ok {
		s.log.Debug().Str("binding", name).Msg("not a mouse button")
		return nil
	}
	_, held := s.pressedMouseButtons[name]
	if held == pressed {
		return nil
	}
	if !s.ready() {
		return ErrTargetUnavailable
	}

	eventType := EventMouseUp
	buttons := 0
	if pressed {
		eventType = EventMouseDown
		buttons = button.Mask()
	}
	ev := MouseButtonEvent{
		Type:       eventType,
		Button:     int(button),
		Buttons:    buttons,
		Bubbles:    true,
		Cancelable: true,
	}
	if err := s.record(eventType, s.target.DispatchMouseButton(ev)); err != nil {
		return fmt.Errorf("dispatch %s %s: %w", eventType, name, err)
	}

	if pressed {
		s.pressedMouseButtons[name] = struct{}{}
	} else {
		delete(s.pressedMouseButtons, name)
	}
	return nil
}

// MouseMove dispatches relative pointer motion.
func (s *Synthesizer) MouseMove(dx, dy float64) error {
	if !s.ready() {
		return ErrTargetUnavailable
	}
	ev := MouseMoveEvent{
		Type:       EventMouseMove,
		MovementX:  dx,
		MovementY:  dy,
		Bubbles:    true,
		Cancelable: true,
	}
	if err := s.record(EventMouseMove, s.target.DispatchMouseMove(ev)); err != nil {
		return fmt.Errorf("dispatch mousemove: %w", err)
	}
	return nil
}

// Binding routes a configured binding to a mouse button when it names one and
// to a key otherwise.
func (s *Synthesizer) Binding(binding string, pressed bool) error {
	if _, ok := ParseMouseButton(binding); ok {
		return s.MouseButton(binding, pressed)
	}
	return s.Key(binding, pressed)
}

// KeyHeld reports whether key has an outstanding keydown.
func (s *Synthesizer) KeyHeld(key string) bool {
	_, ok := s.pressedKeys[key]
	return ok
}

// Held reports whether binding, a key or a mouse button name, is down.
func (s *Synthesizer) Held(binding string) bool {
	if _, ok := ParseMouseButton(binding); ok {
		_, held := s.pressedMouseButtons[binding]
		return held
	}
	return s.KeyHeld(binding)
}

// PressedKeys returns the held keys in sorted order.
func (s *Synthesizer) PressedKeys() []string {
	return sortedKeys(s.pressedKeys)
}

// PressedMouseButtons returns the held mouse buttons in sorted order.
func (s *Synthesizer) PressedMouseButtons() []string {
	return sortedKeys(s.pressedMouseButtons)
}

// ReleaseAll sends a release for every held key and mouse button, then
// empties both sets whether or not each release was delivered. It returns the
// number of releases delivered.
func (s *Synthesizer) ReleaseAll() int {
	released := 0
	for _, key := range s.PressedKeys() {
		if err := s.Key(key, false); err == nil {
			released++
		}
	}
	for _, name := range s.PressedMouseButtons() {
		if err := s.MouseButton(name, false); err == nil {
			released++
		}
	}
	clear(s.pressedKeys)
	clear(s.pressedMouseButtons)
	return released
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
