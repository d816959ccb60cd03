//go:build linux

package uinput

import (
	"fmt"
	"sync"

	"github.com/bendahl/uinput"
	"github.com/rs/zerolog"

	"github.com/soar/padremap/backend/internal/remap"
)

// Target is a remap.Target backed by uinput devices.
type Target struct {
	keyboard uinput.Keyboard
	mouse    uinput.Mouse
	log      zerolog.Logger

	mu   sync.Mutex
	remX float64
	remY float64
}

// New creates the virtual keyboard and mouse. It needs write access to
// /dev/uinput ('modprobe uinput' and a suitable udev rule).
func New(log zerolog.Logger) (*Target, error) {
	kb, err := uinput.CreateKeyboard(devicePath, []byte(keyboardName))
	if err != nil {
		return nil, fmt.Errorf("create virtual keyboard on %s: %w", devicePath, err)
	}
	mouse, err := uinput.CreateMouse(devicePath, []byte(mouseName))
	if err != nil {
		kb.Close()
		return nil, fmt.Errorf("create virtual mouse on %s: %w", devicePath, err)
	}
	return &Target{
		keyboard: kb,
		mouse:    mouse,
		log:      log.With().Str("subsystem", "uinput").Logger(),
	}, nil
}

// Ready is always true once the devices exist.
func (t *Target) Ready() bool {
	return t != nil && t.keyboard != nil
}

func (t *Target) DispatchKey(ev remap.KeyEvent) error {
	code, ok := KeyCode(ev.Code)
	if !ok {
		return fmt.Errorf("%w: key code %q", errUnmapped, ev.Code)
	}
	if ev.Type == remap.EventKeyDown {
		return t.keyboard.KeyDown(code)
	}
	return t.keyboard.KeyUp(code)
}

func (t *Target) DispatchMouseButton(ev remap.MouseButtonEvent) error {
	down := ev.Type == remap.EventMouseDown
	switch remap.MouseButton(ev.Button) {
	case remap.MouseLeft:
		if down {
			return t.mouse.LeftPress()
		}
		return t.mouse.LeftRelease()
	case remap.MouseRight:
		if down {
			return t.mouse.RightPress()
		}
		return t.mouse.RightRelease()
	case remap.MouseMiddle:
		if down {
			return t.mouse.MiddlePress()
		}
		return t.mouse.MiddleRelease()
	}
	return fmt.Errorf("%w: mouse button %d", errUnmapped, ev.Button)
}

// DispatchMouseMove moves the pointer by whole pixels, carrying the
// fractional remainder into the next move.
func (t *Target) DispatchMouseMove(ev remap.MouseMoveEvent) error {
	t.mu.Lock()
	dx, dy := Accumulate(&t.remX, ev.MovementX), Accumulate(&t.remY, ev.MovementY)
	t.mu.Unlock()
	if dx == 0 && dy == 0 {
		return nil
	}
	return t.mouse.Move(dx, dy)
}

// Close destroys the virtual devices.
func (t *Target) Close() error {
	kbErr := t.keyboard.Close()
	mouseErr := t.mouse.Close()
	if kbErr != nil {
		return kbErr
	}
	return mouseErr
}
