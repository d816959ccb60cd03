//go:build linux

package uinput

import "github.com/bendahl/uinput"

// DOM KeyboardEvent.code → evdev key code.
var domCodes = map[string]int{
	"KeyA": uinput.KeyA, "KeyB": uinput.KeyB, "KeyC": uinput.KeyC, "KeyD": uinput.KeyD,
	"KeyE": uinput.KeyE, "KeyF": uinput.KeyF, "KeyG": uinput.KeyG, "KeyH": uinput.KeyH,
	"KeyI": uinput.KeyI, "KeyJ": uinput.KeyJ, "KeyK": uinput.KeyK, "KeyL": uinput.KeyL,
	"KeyM": uinput.KeyM, "KeyN": uinput.KeyN, "KeyO": uinput.KeyO, "KeyP": uinput.KeyP,
	"KeyQ": uinput.KeyQ, "KeyR": uinput.KeyR, "KeyS": uinput.KeyS, "KeyT": uinput.KeyT,
	"KeyU": uinput.KeyU, "KeyV": uinput.KeyV, "KeyW": uinput.KeyW, "KeyX": uinput.KeyX,
	"KeyY": uinput.KeyY, "KeyZ": uinput.KeyZ,

	"Digit1": uinput.Key1, "Digit2": uinput.Key2, "Digit3": uinput.Key3,
	"Digit4": uinput.Key4, "Digit5": uinput.Key5, "Digit6": uinput.Key6,
	"Digit7": uinput.Key7, "Digit8": uinput.Key8, "Digit9": uinput.Key9,
	"Digit0": uinput.Key0,

	"Space":       uinput.KeySpace,
	"Escape":      uinput.KeyEsc,
	"Enter":       uinput.KeyEnter,
	"Tab":         uinput.KeyTab,
	"Backspace":   uinput.KeyBackspace,
	"CapsLock":    uinput.KeyCapslock,
	"Delete":      uinput.KeyDelete,
	"ShiftLeft":   uinput.KeyLeftshift,
	"ControlLeft": uinput.KeyLeftctrl,
	"AltLeft":     uinput.KeyLeftalt,
	"MetaLeft":    uinput.KeyLeftmeta,
	"ArrowLeft":   uinput.KeyLeft,
	"ArrowUp":     uinput.KeyUp,
	"ArrowRight":  uinput.KeyRight,
	"ArrowDown":   uinput.KeyDown,

	"F1": uinput.KeyF1, "F2": uinput.KeyF2, "F3": uinput.KeyF3, "F4": uinput.KeyF4,
	"F5": uinput.KeyF5, "F6": uinput.KeyF6, "F7": uinput.KeyF7, "F8": uinput.KeyF8,
	"F9": uinput.KeyF9, "F10": uinput.KeyF10, "F11": uinput.KeyF11, "F12": uinput.KeyF12,

	// Punctuation arrives as "Key" + the character.
	"Key-":  uinput.KeyMinus,
	"Key=":  uinput.KeyEqual,
	"Key[":  uinput.KeyLeftbrace,
	"Key]":  uinput.KeyRightbrace,
	"Key;":  uinput.KeySemicolon,
	"Key'":  uinput.KeyApostrophe,
	"Key`":  uinput.KeyGrave,
	"Key\\": uinput.KeyBackslash,
	"Key,":  uinput.KeyComma,
	"Key.":  uinput.KeyDot,
	"Key/":  uinput.KeySlash,
}

// KeyCode maps a DOM key code to an evdev key code.
func KeyCode(domCode string) (int, bool) {
	code, ok := domCodes[domCode]
	return code, ok
}
