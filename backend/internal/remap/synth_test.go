package remap_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padremap/backend/internal/remap"
)

func TestKeyIsIdempotent(t *testing.T) {
	target := newRecorder()
	s := remap.NewSynthesizer(target, zerolog.Nop())

	require.NoError(t, s.Key("w", true))
	require.NoError(t, s.Key("w", true))
	assert.Equal(t, []string{"w"}, s.PressedKeys())

	require.NoError(t, s.Key("w", false))
	require.NoError(t, s.Key("w", false))
	assert.Empty(t, s.PressedKeys())

	assert.Equal(t, []string{"keydown:w", "keyup:w"}, target.Events())
}

func TestKeyEventFields(t *testing.T) {
	target := newRecorder()
	s := remap.NewSynthesizer(target, zerolog.Nop())

	require.NoError(t, s.Key("w", true))
	require.NoError(t, s.Key(" ", true))
	require.NoError(t, s.Key("Shift", true))

	require.Len(t, target.keys, 3)
	assert.Equal(t, remap.KeyEvent{
		Type: remap.EventKeyDown, Key: "w", Code: "KeyW", KeyCode: 87, Which: 87, Bubbles: true, Cancelable: true,
	}, target.keys[0])
	assert.Equal(t, "Space", target.keys[1].Code)
	assert.Equal(t, 32, target.keys[1].KeyCode)
	assert.Equal(t, "ShiftLeft", target.keys[2].Code)
	assert.Equal(t, 16, target.keys[2].KeyCode)
}

func TestDispatchWithoutTarget(t *testing.T) {
	target := newRecorder()
	target.setReady(false)
	s := remap.NewSynthesizer(target, zerolog.Nop())

	assert.ErrorIs(t, s.Key("e", true), remap.ErrTargetUnavailable)
	assert.ErrorIs(t, s.MouseButton("MouseLeft", true), remap.ErrTargetUnavailable)
	assert.ErrorIs(t, s.MouseMove(1, 1), remap.ErrTargetUnavailable)
	assert.Empty(t, s.PressedKeys())
	assert.Empty(t, s.PressedMouseButtons())
	assert.Empty(t, target.Events())

	// Releasing something that was never pressed needs no target.
	assert.NoError(t, s.Key("e", false))

	target.setReady(true)
	require.NoError(t, s.Key("e", true))
	assert.Equal(t, []string{"keydown:e"}, target.Events())

	s2 := remap.NewSynthesizer(nil, zerolog.Nop())
	assert.ErrorIs(t, s2.Key("e", true), remap.ErrTargetUnavailable)
}

func TestFailedDispatchLeavesStateUnchanged(t *testing.T) {
	target := newRecorder()
	s := remap.NewSynthesizer(target, zerolog.Nop())

	target.setFail(true)
	assert.ErrorIs(t, s.Key("q", true), errDispatch)
	assert.False(t, s.KeyHeld("q"))

	target.setFail(false)
	require.NoError(t, s.Key("q", true))
	assert.True(t, s.KeyHeld("q"))

	target.setFail(true)
	assert.Error(t, s.Key("q", false))
	assert.True(t, s.KeyHeld("q"))
}

func TestMouseButtons(t *testing.T) {
	target := newRecorder()
	s := remap.NewSynthesizer(target, zerolog.Nop())

	require.NoError(t, s.MouseButton("MouseRight", true))
	require.NoError(t, s.MouseButton("MouseRight", true))
	require.NoError(t, s.MouseButton("MouseRight", false))
	require.NoError(t, s.MouseButton("MouseMiddle", true))

	require.Len(t, target.mouse, 3)
	assert.Equal(t, remap.MouseButtonEvent{Type: remap.EventMouseDown, Button: 2, Buttons: 2, Bubbles: true, Cancelable: true}, target.mouse[0])
	assert.Equal(t, remap.MouseButtonEvent{Type: remap.EventMouseUp, Button: 2, Buttons: 0, Bubbles: true, Cancelable: true}, target.mouse[1])
	assert.Equal(t, 1, target.mouse[2].Button)
	assert.Equal(t, 4, target.mouse[2].Buttons)
	assert.Equal(t, []string{"MouseMiddle"}, s.PressedMouseButtons())

	// Unknown mouse names are silently ignored.
	require.NoError(t, s.MouseButton("MouseSide", true))
	assert.Len(t, target.mouse, 3)
}

func TestBindingRouting(t *testing.T) {
	target := newRecorder()
	s := remap.NewSynthesizer(target, zerolog.Nop())

	require.NoError(t, s.Binding("MouseLeft", true))
	require.NoError(t, s.Binding("e", true))
	// Anything that is not a mouse name is a key, even a long string.
	require.NoError(t, s.Binding("MouseSide", true))

	assert.Equal(t, []string{"mousedown:MouseLeft", "keydown:e", "keydown:MouseSide"}, target.Events())
}

func TestMouseMove(t *testing.T) {
	target := newRecorder()
	s := remap.NewSynthesizer(target, zerolog.Nop())

	require.NoError(t, s.MouseMove(3.5, -2))
	require.NoError(t, s.MouseMove(3.5, -2))
	moves := target.Moves()
	require.Len(t, moves, 2)
	assert.Equal(t, remap.MouseMoveEvent{Type: remap.EventMouseMove, MovementX: 3.5, MovementY: -2, Bubbles: true, Cancelable: true}, moves[0])
}

func TestReleaseAll(t *testing.T) {
	target := newRecorder()
	s := remap.NewSynthesizer(target, zerolog.Nop())

	require.NoError(t, s.Key("w", true))
	require.NoError(t, s.Key("Shift", true))
	require.NoError(t, s.MouseButton("MouseLeft", true))
	target.reset()

	assert.Equal(t, 3, s.ReleaseAll())
	assert.Empty(t, s.PressedKeys())
	assert.Empty(t, s.PressedMouseButtons())
	assert.ElementsMatch(t, []string{"keyup:w", "keyup:Shift", "mouseup:MouseLeft"}, target.Events())

	assert.Zero(t, s.ReleaseAll())
}

func TestReleaseAllClearsEvenWhenUndeliverable(t *testing.T) {
	target := newRecorder()
	s := remap.NewSynthesizer(target, zerolog.Nop())

	require.NoError(t, s.Key("w", true))
	target.setReady(false)

	assert.Zero(t, s.ReleaseAll())
	assert.Empty(t, s.PressedKeys())

	// A fresh press after reattaching is dispatched again.
	target.setReady(true)
	target.reset()
	require.NoError(t, s.Key("w", true))
	assert.Equal(t, []string{"keydown:w"}, target.Events())
}
