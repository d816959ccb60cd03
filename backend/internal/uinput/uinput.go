// Package uinput delivers synthetic input to a virtual keyboard and mouse
// created through the Linux uinput subsystem.
package uinput

import (
	"errors"
	"fmt"
	"math"

	"github.com/soar/padremap/backend/internal/remap"
)

// ErrUnsupported is returned for inputs or platforms the virtual devices
// cannot represent.
var ErrUnsupported = errors.New("unsupported by uinput target")

// errUnmapped marks an input with no evdev equivalent. The engine does not
// retry it while the button stays down.
var errUnmapped = fmt.Errorf("%w: %w", ErrUnsupported, remap.ErrUnsupportedInput)

const (
	devicePath   = "/dev/uinput"
	keyboardName = "padremap virtual keyboard"
	mouseName    = "padremap virtual mouse"
)

// Accumulate adds v to *rem and returns the whole-pixel part, leaving the
// fraction in *rem.
func Accumulate(rem *float64, v float64) int32 {
	*rem += v
	whole := math.Trunc(*rem)
	*rem -= whole
	return int32(whole)
}
