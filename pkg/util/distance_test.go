package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDistance(t *testing.T) {
	// Dam Square (Amsterdam) to Dom Tower (Utrecht), about 35 km.
	d := CalculateDistance(52.3731, 4.8926, 52.0907, 5.1214)
	assert.InDelta(t, 35, d, 2)

	// Same point.
	assert.InDelta(t, 0, CalculateDistance(52.37, 4.89, 52.37, 4.89), 1e-9)

	// Symmetry.
	a := CalculateDistance(52.3731, 4.8926, 51.9244, 4.4777)
	b := CalculateDistance(51.9244, 4.4777, 52.3731, 4.8926)
	assert.InDelta(t, a, b, 1e-9)
}
