package remap

import (
	"errors"
	"fmt"
	"maps"

	"github.com/soar/padremap/backend/internal/gamepad"
)

var (
	ErrInvalidBinding     = errors.New("invalid binding")
	ErrButtonOutOfRange   = errors.New("button index out of range")
	ErrInvalidDeadzone    = errors.New("deadzone must be in [0,1)")
	ErrInvalidSensitivity = errors.New("sensitivity must not be negative")
)

// Config is the user-editable remapper configuration.
type Config struct {
	Deadzone       float64        `json:"deadzone"`
	Sensitivity    float64        `json:"sensitivity"`
	InvertY        bool           `json:"invertY"`
	ButtonMappings map[int]string `json:"buttonMappings"`
}

var defaultMappings = map[int]string{
	gamepad.ButtonA:         " ",
	gamepad.ButtonB:         "w",
	gamepad.ButtonX:         "r",
	gamepad.ButtonY:         "e",
	gamepad.ButtonLB:        "q",
	gamepad.ButtonRB:        "f",
	gamepad.ButtonLT:        "Shift",
	gamepad.ButtonRT:        "MouseLeft",
	gamepad.ButtonSelect:    "Escape",
	gamepad.ButtonStart:     "Escape",
	gamepad.ButtonL3:        "c",
	gamepad.ButtonR3:        "MouseRight",
	gamepad.ButtonDpadUp:    "w",
	gamepad.ButtonDpadDown:  "s",
	gamepad.ButtonDpadLeft:  "a",
	gamepad.ButtonDpadRight: "d",
}

// DefaultConfig returns the built-in configuration. Every standard button
// has a binding.
func DefaultConfig() Config {
	return Config{
		Deadzone:       0.18,
		Sensitivity:    900,
		InvertY:        false,
		ButtonMappings: maps.Clone(defaultMappings),
	}
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	c.ButtonMappings = maps.Clone(c.ButtonMappings)
	return c
}

// Partial is a sparse configuration overlay. Nil fields and absent mapping
// entries leave the target unchanged.
type Partial struct {
	Deadzone       *float64       `json:"deadzone,omitempty"`
	Sensitivity    *float64       `json:"sensitivity,omitempty"`
	InvertY        *bool          `json:"invertY,omitempty"`
	ButtonMappings map[int]string `json:"buttonMappings,omitempty"`
}

// Merge returns a copy of c with p laid over it. Button mappings merge per
// index.
func (c Config) Merge(p Partial) Config {
	out := c.Clone()
	if out.ButtonMappings == nil {
		out.ButtonMappings = make(map[int]string, len(p.ButtonMappings))
	}
	if p.Deadzone != nil {
		out.Deadzone = *p.Deadzone
	}
	if p.Sensitivity != nil {
		out.Sensitivity = *p.Sensitivity
	}
	if p.InvertY != nil {
		out.InvertY = *p.InvertY
	}
	for button, binding := range p.ButtonMappings {
		out.ButtonMappings[button] = binding
	}
	return out
}

// Binding returns the binding for a standard button, if any.
func (c Config) Binding(button int) (string, bool) {
	b, ok := c.ButtonMappings[button]
	return b, ok && b != ""
}

// Validate checks ranges and that every binding is dispatchable.
func (c Config) Validate() error {
	if c.Deadzone < 0 || c.Deadzone >= 1 {
		return fmt.Errorf("%w: %v", ErrInvalidDeadzone, c.Deadzone)
	}
	if c.Sensitivity < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSensitivity, c.Sensitivity)
	}
	for button, binding := range c.ButtonMappings {
		if err := ValidateBinding(button, binding); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBinding checks a single button→binding assignment.
func ValidateBinding(button int, binding string) error {
	if button < 0 || button >= gamepad.StandardButtons {
		return fmt.Errorf("%w: %d", ErrButtonOutOfRange, button)
	}
	if !ValidBinding(binding) {
		return fmt.Errorf("%w: button %d: %q", ErrInvalidBinding, button, binding)
	}
	return nil
}
