//go:build nosdl

package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/soar/padremap/backend/internal/gamepad"
)

// noPads stands in for the SDL reader in builds without SDL3. It reports no
// controllers, so the engine idles and the API lists no gamepads.
type noPads struct {
	log    zerolog.Logger
	events chan gamepad.Connection
}

func newPadReader(log zerolog.Logger, _ time.Duration) padReader {
	return &noPads{
		log:    log.With().Str("subsystem", "gamepad").Logger(),
		events: make(chan gamepad.Connection),
	}
}

func (p *noPads) Run(ctx context.Context) {
	p.log.Warn().Msg("built without SDL3, gamepad input disabled")
	<-ctx.Done()
}

func (*noPads) Gamepads() []gamepad.Pad { return nil }

func (p *noPads) Events() <-chan gamepad.Connection { return p.events }

func (*noPads) OnInit(func()) {}
