//go:build !nosdl

package main

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/soar/padremap/backend/internal/gamepad/sdlreader"
)

// newPadReader reads controllers through SDL3. The binding loads libSDL3 at
// process start, so this build needs the library next to the executable or
// on the loader path; build with -tags nosdl to run without it.
func newPadReader(log zerolog.Logger, interval time.Duration) padReader {
	return sdlreader.NewReader(log, interval)
}
