// Package gamepad holds the standard controller layout and the per-device
// mappings into it. It has no platform dependencies.
package gamepad

import "strings"

// Standard gamepad layout sizes.
const (
	StandardAxes    = 4
	StandardButtons = 16
)

// Standard axis indices. Positive Y points down.
const (
	AxisLeftX = iota
	AxisLeftY
	AxisRightX
	AxisRightY
)

// Standard button indices.
const (
	ButtonA = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonLB
	ButtonRB
	ButtonLT
	ButtonRT
	ButtonSelect
	ButtonStart
	ButtonL3
	ButtonR3
	ButtonDpadUp
	ButtonDpadDown
	ButtonDpadLeft
	ButtonDpadRight
)

// Pad is a snapshot of one connected controller in standard layout.
type Pad struct {
	Index   int                   `json:"index"`
	ID      string                `json:"id"`
	Name    string                `json:"name"`
	Mapping string                `json:"mapping"`
	Axes    [StandardAxes]float64 `json:"axes"`
	Buttons [StandardButtons]bool `json:"buttons"`
}

// Connection is emitted when a controller is attached or removed.
type Connection struct {
	Pad       Pad
	Connected bool
}

// FriendlyName returns a short label for a controller id string.
func FriendlyName(id string) string {
	switch {
	case strings.Contains(id, "Xbox"), strings.Contains(id, "360"), strings.Contains(id, "XInput"):
		return "Xbox Controller"
	case strings.Contains(id, "PlayStation"), strings.Contains(id, "DualShock"), strings.Contains(id, "DualSense"):
		return "PlayStation Controller"
	case strings.Contains(id, "Pro Controller"):
		return "Nintendo Pro Controller"
	default:
		return "Controller"
	}
}
