package remap

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/soar/padremap/backend/internal/gamepad"
	"github.com/soar/padremap/backend/internal/metrics"
)

const (
	// DefaultFrameInterval approximates one animation frame.
	DefaultFrameInterval = 16 * time.Millisecond

	// MovementThreshold is the shaped stick value past which a movement key
	// is held.
	MovementThreshold = 0.1

	// AimNoiseFloor is the shaped stick magnitude below which no pointer
	// motion is sent.
	AimNoiseFloor = 0.01
)

// Movement keys driven by the left stick.
const (
	KeyUp    = "w"
	KeyDown  = "s"
	KeyLeft  = "a"
	KeyRight = "d"
)

type buttonKey struct {
	pad    int
	button int
}

// holder is one source keeping a binding down: a pad button, or a left-stick
// direction (pad stickHolder) aggregated over every pad.
type holder struct {
	pad    int
	button int
}

const stickHolder = -1

var movementKeys = [4]string{KeyUp, KeyDown, KeyLeft, KeyRight}

// Engine is the per-session remapper: it samples gamepads once per frame and
// turns stick and button state into synthetic input.
type Engine struct {
	source   Source
	configs  ConfigSource
	synth    *Synthesizer
	notifier Notifier
	log      zerolog.Logger
	interval time.Duration

	mu          sync.Mutex
	prevButtons map[buttonKey]bool
	holders     map[string]map[holder]struct{}
	owned       map[holder]string
	releasing   map[string]struct{}
	rejected    map[string]struct{}
	lastTick    time.Time
	closed      bool
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithNotifier routes connection messages to n.
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) { e.notifier = n }
}

// WithFrameInterval sets the tick period used by Run.
func WithFrameInterval(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// NewEngine creates an Engine reading pads from source and configuration
// from configs, dispatching through target.
func NewEngine(source Source, configs ConfigSource, target Target, log zerolog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		source:      source,
		configs:     configs,
		notifier:    nopNotifier{},
		log:         log.With().Str("subsystem", "engine").Logger(),
		interval:    DefaultFrameInterval,
		prevButtons: make(map[buttonKey]bool),
		holders:     make(map[string]map[holder]struct{}),
		owned:       make(map[holder]string),
		releasing:   make(map[string]struct{}),
		rejected:    make(map[string]struct{}),
	}
	e.synth = NewSynthesizer(target, log)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Synthesizer exposes the engine's event synthesis layer.
func (e *Engine) Synthesizer() *Synthesizer {
	return e.synth
}

// Run ticks the engine every frame interval until ctx is done, handling
// connection events as they arrive. It releases all held input on return.
func (e *Engine) Run(ctx context.Context, events <-chan gamepad.Connection) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.mu.Lock()
	e.lastTick = time.Now()
	e.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			e.Close()
			return
		case now := <-ticker.C:
			e.Tick(now)
		case c, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			e.HandleConnection(c)
		}
	}
}

// Tick runs one poll iteration at time now.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	start := time.Now()
	defer func() { metrics.TickDuration.Observe(time.Since(start).Seconds()) }()

	var dt float64
	if !e.lastTick.IsZero() {
		dt = now.Sub(e.lastTick).Seconds()
	}
	e.lastTick = now

	cfg := e.configs.Config()
	pads := e.source.Gamepads()
	metrics.ConnectedPads.Set(float64(len(pads)))

	var move movement
	current := make(map[buttonKey]bool, len(pads)*gamepad.StandardButtons)
	for _, pad := range pads {
		move.add(pad, cfg.Deadzone)
		e.handleAim(pad, cfg, dt)
		e.handleButtons(pad, cfg, current)
	}
	e.applyMovement(move)
	e.prevButtons = current

	e.sync()
}

// movement holds the directional intents of the left stick, indexed like
// movementKeys.
type movement [4]bool

func (m *movement) add(pad gamepad.Pad, deadzone float64) {
	x := ApplyCurve(pad.Axes[gamepad.AxisLeftX], deadzone)
	y := ApplyCurve(pad.Axes[gamepad.AxisLeftY], deadzone)
	m[0] = m[0] || y < -MovementThreshold
	m[1] = m[1] || y > MovementThreshold
	m[2] = m[2] || x < -MovementThreshold
	m[3] = m[3] || x > MovementThreshold
}

func (e *Engine) applyMovement(m movement) {
	for dir, want := range m {
		h := holder{pad: stickHolder, button: dir}
		if want {
			e.hold(h, movementKeys[dir])
		} else {
			e.unhold(h)
		}
	}
}

// hold records that h wants binding down.
func (e *Engine) hold(h holder, binding string) {
	if prev, ok := e.owned[h]; ok {
		if prev == binding {
			return
		}
		e.unhold(h)
	}
	e.owned[h] = binding
	set := e.holders[binding]
	if set == nil {
		set = make(map[holder]struct{})
		e.holders[binding] = set
	}
	set[h] = struct{}{}
	delete(e.releasing, binding)
}

// unhold drops h. The binding is released once it has no holders left.
func (e *Engine) unhold(h holder) {
	binding, ok := e.owned[h]
	if !ok {
		return
	}
	delete(e.owned, h)
	set := e.holders[binding]
	delete(set, h)
	if len(set) > 0 {
		return
	}
	delete(e.holders, binding)
	delete(e.rejected, binding)
	e.releasing[binding] = struct{}{}
}

// sync makes the synthesizer's held set match the holders: bindings without
// holders are released and held bindings that are not down are pressed. A
// failed dispatch is left for the next tick.
func (e *Engine) sync() {
	for _, binding := range slices.Sorted(maps.Keys(e.releasing)) {
		if err := e.synth.Binding(binding, false); err != nil {
			e.log.Debug().Err(err).Str("binding", binding).Msg("release skipped this tick")
			continue
		}
		delete(e.releasing, binding)
	}
	for _, binding := range slices.Sorted(maps.Keys(e.holders)) {
		if _, ok := e.rejected[binding]; ok || e.synth.Held(binding) {
			continue
		}
		err := e.synth.Binding(binding, true)
		switch {
		case err == nil:
		case errors.Is(err, ErrUnsupportedInput):
			e.rejected[binding] = struct{}{}
			e.log.Info().Err(err).Str("binding", binding).Msg("output cannot deliver binding, ignoring until released")
		default:
			e.log.Debug().Err(err).Str("binding", binding).Msg("press skipped this tick")
		}
	}
}

func (e *Engine) handleAim(pad gamepad.Pad, cfg Config, dt float64) {
	x := ApplyCurve(pad.Axes[gamepad.AxisRightX], cfg.Deadzone)
	y := ApplyCurve(pad.Axes[gamepad.AxisRightY], cfg.Deadzone)
	if abs(x) < AimNoiseFloor && abs(y) < AimNoiseFloor {
		return
	}

	dx := x * cfg.Sensitivity * dt
	dy := y * cfg.Sensitivity * dt
	if cfg.InvertY {
		dy = -dy
	}
	if err := e.synth.MouseMove(dx, dy); err != nil {
		e.log.Debug().Err(err).Int("pad", pad.Index).Msg("aim skipped this tick")
	}
}

func (e *Engine) handleButtons(pad gamepad.Pad, cfg Config, current map[buttonKey]bool) {
	for button, pressed := range pad.Buttons {
		key := buttonKey{pad: pad.Index, button: button}
		current[key] = pressed
		if pressed == e.prevButtons[key] {
			continue
		}

		h := holder{pad: pad.Index, button: button}
		if !pressed {
			e.unhold(h)
			continue
		}
		if binding, ok := cfg.Binding(button); ok {
			e.hold(h, binding)
		}
	}
}

// HandleConnection reacts to a gamepad being attached or removed.
func (e *Engine) HandleConnection(c gamepad.Connection) {
	label := gamepad.FriendlyName(c.Pad.ID)
	if c.Connected {
		e.log.Info().Str("id", c.Pad.ID).Int("pad", c.Pad.Index).Msg("gamepad connected")
		e.notifier.ControllerStatus(true, label+" Connected")
		e.notifier.Notify("🎮 " + label + " Connected")
		return
	}

	e.log.Info().Str("id", c.Pad.ID).Int("pad", c.Pad.Index).Msg("gamepad disconnected")
	e.notifier.ControllerStatus(false, "No Controller Connected")
	e.notifier.Notify("Controller disconnected")
	e.HandleDisconnect(c.Pad.Index)
}

// HandleDisconnect force-releases every held key and mouse button and forgets
// the buttons and stick intents pad contributed. Inputs still held on other
// pads are pressed again on the next tick.
func (e *Engine) HandleDisconnect(pad int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	released := e.synth.ReleaseAll()
	clear(e.releasing)
	clear(e.rejected)
	for h := range e.owned {
		if h.pad == pad || h.pad == stickHolder {
			e.unhold(h)
		}
	}
	clear(e.releasing)
	for key := range e.prevButtons {
		if key.pad == pad {
			delete(e.prevButtons, key)
		}
	}
	e.log.Debug().Int("pad", pad).Int("released", released).Msg("released held input")
}

// Close stops further ticks and releases all held input.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.synth.ReleaseAll()
	clear(e.prevButtons)
	clear(e.holders)
	clear(e.owned)
	clear(e.releasing)
	clear(e.rejected)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
