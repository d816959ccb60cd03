package remap

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/soar/padremap/backend/internal/gamepad"
)

// MouseButton is a DOM MouseEvent.button code.
type MouseButton int

const (
	MouseLeft    MouseButton = 0
	MouseMiddle  MouseButton = 1
	MouseRight   MouseButton = 2
	MouseBack    MouseButton = 3
	MouseForward MouseButton = 4
)

var mouseButtonNames = map[string]MouseButton{
	"MouseLeft":    MouseLeft,
	"MouseMiddle":  MouseMiddle,
	"MouseRight":   MouseRight,
	"MouseBack":    MouseBack,
	"MouseForward": MouseForward,
}

// Name returns the binding name for b, e.g. "MouseLeft".
func (b MouseButton) Name() string {
	for name, mb := range mouseButtonNames {
		if mb == b {
			return name
		}
	}
	return fmt.Sprintf("Mouse%d", int(b))
}

// Mask returns the DOM MouseEvent.buttons bit for b.
func (b MouseButton) Mask() int {
	switch b {
	case MouseLeft:
		return 1
	case MouseRight:
		return 2
	case MouseMiddle:
		return 4
	case MouseBack:
		return 8
	case MouseForward:
		return 16
	}
	return 0
}

// ParseMouseButton resolves a binding string to a mouse button. Any string that
// is not one of the five known names is not a mouse binding.
func ParseMouseButton(binding string) (MouseButton, bool) {
	b, ok := mouseButtonNames[binding]
	return b, ok
}

// KeyInfo carries the DOM KeyboardEvent fields for a key binding.
type KeyInfo struct {
	Key     string
	Code    string
	KeyCode int
}

var specialKeys = map[string]KeyInfo{
	" ":       {Key: " ", Code: "Space", KeyCode: 32},
	"Escape":  {Key: "Escape", Code: "Escape", KeyCode: 27},
	"Enter":   {Key: "Enter", Code: "Enter", KeyCode: 13},
	"Shift":   {Key: "Shift", Code: "ShiftLeft", KeyCode: 16},
	"Control": {Key: "Control", Code: "ControlLeft", KeyCode: 17},
	"Alt":     {Key: "Alt", Code: "AltLeft", KeyCode: 18},
	"Tab":     {Key: "Tab", Code: "Tab", KeyCode: 9},
}

// Named keys a user may capture while rebinding, beyond the special table.
var namedKeys = map[string]KeyInfo{
	"Backspace":  {Key: "Backspace", Code: "Backspace", KeyCode: 8},
	"CapsLock":   {Key: "CapsLock", Code: "CapsLock", KeyCode: 20},
	"Delete":     {Key: "Delete", Code: "Delete", KeyCode: 46},
	"Meta":       {Key: "Meta", Code: "MetaLeft", KeyCode: 91},
	"ArrowLeft":  {Key: "ArrowLeft", Code: "ArrowLeft", KeyCode: 37},
	"ArrowUp":    {Key: "ArrowUp", Code: "ArrowUp", KeyCode: 38},
	"ArrowRight": {Key: "ArrowRight", Code: "ArrowRight", KeyCode: 39},
	"ArrowDown":  {Key: "ArrowDown", Code: "ArrowDown", KeyCode: 40},
}

func init() {
	for i := 1; i <= 12; i++ {
		name := fmt.Sprintf("F%d", i)
		namedKeys[name] = KeyInfo{Key: name, Code: name, KeyCode: 111 + i}
	}
}

// LookupKey returns the KeyboardEvent fields for key. Special and named keys
// come from fixed tables; anything else derives its code from the uppercased
// first character.
func LookupKey(key string) KeyInfo {
	if info, ok := specialKeys[key]; ok {
		return info
	}
	if info, ok := namedKeys[key]; ok {
		return info
	}
	upper := strings.ToUpper(key)
	r, _ := utf8.DecodeRuneInString(upper)
	code := "Key" + upper
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		code = "Digit" + key
	}
	return KeyInfo{Key: key, Code: code, KeyCode: int(r)}
}

// ValidBinding reports whether binding is a known mouse name, a known named
// key, or exactly one printable character.
func ValidBinding(binding string) bool {
	if _, ok := mouseButtonNames[binding]; ok {
		return true
	}
	if _, ok := specialKeys[binding]; ok {
		return true
	}
	if _, ok := namedKeys[binding]; ok {
		return true
	}
	if utf8.RuneCountInString(binding) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(binding)
	return unicode.IsPrint(r)
}

var displayNames = map[string]string{
	" ":            "Spacebar",
	"Escape":       "Escape",
	"Enter":        "Enter",
	"Shift":        "Shift",
	"Control":      "Ctrl",
	"Alt":          "Alt",
	"Tab":          "Tab",
	"CapsLock":     "Caps Lock",
	"MouseLeft":    "Left Mouse",
	"MouseRight":   "Right Mouse",
	"MouseMiddle":  "Middle Mouse",
	"MouseBack":    "Back Mouse",
	"MouseForward": "Forward Mouse",
}

// DisplayName returns the label shown for a binding in the settings UI.
func DisplayName(binding string) string {
	if name, ok := displayNames[binding]; ok {
		return name
	}
	if utf8.RuneCountInString(binding) == 1 {
		return strings.ToUpper(binding)
	}
	return binding
}

var buttonNames = [gamepad.StandardButtons]string{
	"A Button / X (PS)",
	"B Button / Circle",
	"X Button / Square",
	"Y Button / Triangle",
	"Left Bumper / L1",
	"Right Bumper / R1",
	"Left Trigger / L2",
	"Right Trigger / R2",
	"Back / Select",
	"Start",
	"Left Stick Click",
	"Right Stick Click",
	"D-Pad Up",
	"D-Pad Down",
	"D-Pad Left",
	"D-Pad Right",
}

// ButtonName returns the human name of a standard gamepad button.
func ButtonName(button int) string {
	if button < 0 || button >= len(buttonNames) {
		return fmt.Sprintf("Button %d", button)
	}
	return buttonNames[button]
}
