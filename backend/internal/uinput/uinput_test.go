package uinput

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soar/padremap/backend/internal/remap"
)

func TestAccumulateCarriesFraction(t *testing.T) {
	var rem float64

	assert.Equal(t, int32(0), Accumulate(&rem, 0.4))
	assert.Equal(t, int32(0), Accumulate(&rem, 0.4))
	assert.Equal(t, int32(1), Accumulate(&rem, 0.4))
	assert.InDelta(t, 0.2, rem, 1e-9)
}

func TestAccumulateNegative(t *testing.T) {
	var rem float64

	assert.Equal(t, int32(-2), Accumulate(&rem, -2.5))
	assert.InDelta(t, -0.5, rem, 1e-9)
	assert.Equal(t, int32(-1), Accumulate(&rem, -0.5))
	assert.InDelta(t, 0, rem, 1e-9)
}

func TestAccumulateLargeStep(t *testing.T) {
	var rem float64
	assert.Equal(t, int32(14), Accumulate(&rem, 14.4))
	assert.Equal(t, int32(-14), Accumulate(&rem, -14.9))
	assert.InDelta(t, -0.5, rem, 1e-9)
}

func TestUnmappedInputIsNotRetriable(t *testing.T) {
	assert.True(t, errors.Is(errUnmapped, ErrUnsupported))
	assert.True(t, errors.Is(errUnmapped, remap.ErrUnsupportedInput))
}
