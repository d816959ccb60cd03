//go:build !linux

package uinput

import (
	"github.com/rs/zerolog"

	"github.com/soar/padremap/backend/internal/remap"
)

// Target is unavailable outside Linux.
type Target struct{}

// New always fails outside Linux.
func New(zerolog.Logger) (*Target, error) {
	return nil, ErrUnsupported
}

func (*Target) Ready() bool { return false }

func (*Target) DispatchKey(remap.KeyEvent) error { return ErrUnsupported }

func (*Target) DispatchMouseButton(remap.MouseButtonEvent) error { return ErrUnsupported }

func (*Target) DispatchMouseMove(remap.MouseMoveEvent) error { return ErrUnsupported }

func (*Target) Close() error { return nil }
