// Package sdlreader reads controllers through SDL3. It is the only package
// that links libSDL3, which the binding loads when the package initializes.
package sdlreader

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/jupiterrider/purego-sdl3/sdl"
	"github.com/rs/zerolog"

	"github.com/soar/padremap/backend/internal/gamepad"
)

const defaultPollInterval = 16 * time.Millisecond // ~60Hz

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *gamepad.DeviceMapping
	name     string
	id       string
	index    int
}

// sdlDevice adapts an open SDL joystick to gamepad.RawDevice.
type sdlDevice struct {
	js *sdl.Joystick
}

func (d sdlDevice) Axis(index int32) int16 { return sdl.GetJoystickAxis(d.js, index) }
func (d sdlDevice) Button(index int32) bool { return sdl.GetJoystickButton(d.js, index) }
func (d sdlDevice) NumButtons() int32 { return sdl.GetNumJoystickButtons(d.js) }
func (d sdlDevice) Hat() (uint8, bool) {
	if sdl.GetNumJoystickHats(d.js) == 0 {
		return 0, false
	}
	return sdl.GetJoystickHat(d.js, 0), true
}

// Reader reads controllers through the SDL3 Joystick API and keeps a
// standard-layout snapshot of every connected pad.
type Reader struct {
	log       zerolog.Logger
	interval  time.Duration
	joysticks map[sdl.JoystickID]*joystickInfo
	pads      []gamepad.Pad
	events    chan gamepad.Connection
	onInit    func()
	mu        sync.RWMutex
}

// NewReader creates a Reader polling at interval. A zero interval uses ~60Hz.
func NewReader(log zerolog.Logger, interval time.Duration) *Reader {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Reader{
		log:       log.With().Str("subsystem", "gamepad").Logger(),
		interval:  interval,
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
		events:    make(chan gamepad.Connection, 64),
	}
}

// Events returns the channel on which connect/disconnect notifications are sent.
func (r *Reader) Events() <-chan gamepad.Connection {
	return r.events
}

// Gamepads returns a snapshot of the connected pads ordered by index.
// It is empty when SDL could not be initialized.
func (r *Reader) Gamepads() []gamepad.Pad {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]gamepad.Pad, len(r.pads))
	copy(out, r.pads)
	return out
}

// OnInit registers fn to run on the SDL thread right after initialization.
// Call it before Run.
func (r *Reader) OnInit(fn func()) {
	r.onInit = fn
}

// Run initializes SDL and runs the event+polling loop on the current thread
// until ctx is done.
func (r *Reader) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		// No controller support; Gamepads stays empty.
		r.log.Error().Str("sdl_error", sdl.GetError()).Msg("SDL init failed, gamepad input disabled")
		<-ctx.Done()
		return
	}
	defer sdl.Quit()

	r.log.Info().Msg("SDL3 joystick subsystem initialized")
	if r.onInit != nil {
		r.onInit()
	}

	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		default:
		}

		r.processEvents()
		r.pollState()
		sdl.DelayNS(uint64(r.interval.Nanoseconds()))
	}
}

func (r *Reader) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)
		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)
		}
	}
}

// nextIndex returns the lowest pad index not in use.
func (r *Reader) nextIndex() int {
	used := make(map[int]bool, len(r.joysticks))
	for _, info := range r.joysticks {
		used[info.index] = true
	}
	i := 0
	for used[i] {
		i++
	}
	return i
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		r.log.Warn().Uint32("instance", uint32(instanceID)).Str("sdl_error", sdl.GetError()).Msg("failed to open joystick")
		return
	}

	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	mapping := gamepad.GetMapping(vendorID, productID)

	info := &joystickInfo{
		joystick: js,
		mapping:  mapping,
		name:     name,
		id:       fmt.Sprintf("%s (Vendor: %04x Product: %04x)", name, vendorID, productID),
		index:    r.nextIndex(),
	}
	r.joysticks[sdl.GetJoystickID(js)] = info

	r.log.Info().
		Str("name", name).
		Str("mapping", mapping.Name).
		Int("index", info.index).
		Int32("axes", sdl.GetNumJoystickAxes(js)).
		Int32("buttons", sdl.GetNumJoystickButtons(js)).
		Int32("hats", sdl.GetNumJoystickHats(js)).
		Msgf("joystick connected VID=%04X PID=%04X", vendorID, productID)

	r.pollState()
	r.emit(gamepad.Connection{Pad: info.pad(), Connected: true})
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	r.log.Info().Str("name", info.name).Int("index", info.index).Msg("joystick disconnected")
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)

	r.pollState()
	r.emit(gamepad.Connection{Pad: info.pad(), Connected: false})
}

func (r *Reader) closeAll() {
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
	r.mu.Lock()
	r.pads = nil
	r.mu.Unlock()
}

func (info *joystickInfo) pad() gamepad.Pad {
	return gamepad.Pad{
		Index:   info.index,
		ID:      info.id,
		Name:    info.name,
		Mapping: info.mapping.Name,
	}
}

func (r *Reader) pollState() {
	pads := make([]gamepad.Pad, 0, len(r.joysticks))
	for _, info := range r.joysticks {
		if !sdl.JoystickConnected(info.joystick) {
			continue
		}
		pad := info.pad()
		info.mapping.Apply(sdlDevice{js: info.joystick}, &pad)
		pads = append(pads, pad)
	}
	sort.Slice(pads, func(i, j int) bool { return pads[i].Index < pads[j].Index })

	r.mu.Lock()
	r.pads = pads
	r.mu.Unlock()
}

func (r *Reader) emit(c gamepad.Connection) {
	select {
	case r.events <- c:
	default:
		r.log.Warn().Int("index", c.Pad.Index).Bool("connected", c.Connected).Msg("connection event dropped, channel full")
	}
}
