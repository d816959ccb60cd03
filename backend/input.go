package main

import (
	"context"

	"github.com/soar/padremap/backend/internal/gamepad"
)

// padReader is the gamepad input the engine and the API read from.
type padReader interface {
	Run(ctx context.Context)
	Gamepads() []gamepad.Pad
	Events() <-chan gamepad.Connection
	OnInit(fn func())
}
