package oddsmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		odds     float64
		expected float64
	}{
		{name: "Standard favorite price", odds: -110, expected: 1.9090909},
		{name: "Underdog price", odds: 150, expected: 2.5},
		{name: "Even money", odds: 100, expected: 2.0},
		{name: "Heavy favorite", odds: -200, expected: 1.5},
		{name: "Missing odds", odds: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, AmericanToDecimal(tt.odds), 0.0001)
		})
	}
}

func TestImpliedProbability(t *testing.T) {
	assert.InDelta(t, 52.38, ImpliedProbability(-110), 0.01)
	assert.InDelta(t, 40.0, ImpliedProbability(150), 0.01)
	assert.Equal(t, 0.0, ImpliedProbability(0))
}

func TestEdgeBreakEvenIdentity(t *testing.T) {
	// Betting at exactly the implied probability has zero expected value.
	for _, odds := range []float64{-250, -110, -105, 100, 120, 150, 300} {
		assert.InDelta(t, 0.0, Edge(ImpliedProbability(odds), odds), 0.0001,
			"odds %v should break even at implied probability", odds)
	}
}

func TestEdgeMonotonicInProbability(t *testing.T) {
	prev := Edge(10, -110)
	for p := 15.0; p <= 100; p += 5 {
		current := Edge(p, -110)
		assert.Greater(t, current, prev, "edge should increase with probability")
		prev = current
	}
}

func TestEdgeInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		prob float64
		odds float64
	}{
		{name: "Probability above 100", prob: 120, odds: -110},
		{name: "Negative probability", prob: -5, odds: -110},
		{name: "Missing odds", prob: 55, odds: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0.0, Edge(tt.prob, tt.odds))
		})
	}
}

func TestEdgeKnownValues(t *testing.T) {
	// 55% at -110: 0.55 * 1.90909 - 1 = 0.05, so a 5% edge.
	assert.InDelta(t, 5.0, Edge(55, -110), 0.01)
	// 50% at +150: 0.50 * 2.5 - 1 = 0.25, so a 25% edge.
	assert.InDelta(t, 25.0, Edge(50, 150), 0.01)
}

func TestKelly(t *testing.T) {
	// 55% at even money, quarter Kelly: ((0.55*2-1)/(2-1)) * 0.25 = 0.025
	assert.InDelta(t, 0.025, Kelly(0.55, 100, 0.25), 0.0001)

	// Negative expectation clamps to zero.
	assert.Equal(t, 0.0, Kelly(0.40, -110, 0.25))

	// Zero odds produce no stake.
	assert.Equal(t, 0.0, Kelly(0.60, 0, 0.25))

	// Non-positive fraction falls back to the default.
	assert.InDelta(t, Kelly(0.55, 100, DefaultKellyFraction), Kelly(0.55, 100, 0), 0.0001)
}
