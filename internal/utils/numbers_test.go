package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(0))
	assert.True(t, IsFinite(-12.5))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(1)))
	assert.False(t, IsFinite(math.Inf(-1)))
}

func TestFinitePtr(t *testing.T) {
	v, ok := FinitePtr(nil)
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)

	v, ok = FinitePtr(Float64Ptr(math.NaN()))
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)

	v, ok = FinitePtr(Float64Ptr(150))
	assert.True(t, ok)
	assert.Equal(t, 150.0, v)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 64.17, Round(64.16666, 2))
	assert.Equal(t, 1.0, Round(0.999, 2))
	assert.Equal(t, -2.35, Round(-2.345001, 2))
}
