// Package oddsmath provides pure conversion and staking math for American
// betting odds. Invalid inputs produce a neutral zero and a warning rather
// than an error, so display paths never have to branch on failures.
package oddsmath

import (
	"math"

	"github.com/sirupsen/logrus"
)

// DefaultKellyFraction is the fractional-Kelly multiplier applied to the raw
// Kelly stake. Quarter Kelly is the conventional variance-reduction choice.
const DefaultKellyFraction = 0.25

var log = logrus.StandardLogger()

// SetLogger replaces the package logger. Intended for wiring the
// application logger at startup.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		log = l
	}
}

// AmericanToDecimal converts American odds to decimal odds.
// -110 -> 1.909..., +150 -> 2.5. Zero odds convert to zero.
func AmericanToDecimal(odds float64) float64 {
	if odds == 0 {
		return 0
	}
	if odds < 0 {
		return 100/math.Abs(odds) + 1
	}
	return odds/100 + 1
}

// ImpliedProbability returns the probability implied by American odds, on a
// 0-100 scale.
func ImpliedProbability(odds float64) float64 {
	decimal := AmericanToDecimal(odds)
	if decimal == 0 {
		return 0
	}
	return 100 / decimal
}

// Edge returns the expected profit per unit stake, as a percentage, implied
// by a model win probability (0-100 scale) against an American price.
// Out-of-range probabilities or missing odds return 0 with a warning.
func Edge(modelProb, odds float64) float64 {
	if modelProb < 0 || modelProb > 100 {
		log.WithFields(logrus.Fields{
			"model_prob": modelProb,
			"odds":       odds,
		}).Warn("Edge calculation skipped: probability outside [0,100]")
		return 0
	}
	if odds == 0 {
		log.WithField("model_prob", modelProb).Warn("Edge calculation skipped: missing odds")
		return 0
	}
	return (modelProb/100*AmericanToDecimal(odds) - 1) * 100
}

// Kelly returns the suggested bankroll fraction for a bet with win
// probability prob (0-1 scale) at the given American odds, scaled by the
// fractional-Kelly multiplier. Negative-expectation bets return 0.
func Kelly(prob, odds, fraction float64) float64 {
	if fraction <= 0 {
		fraction = DefaultKellyFraction
	}
	decimal := AmericanToDecimal(odds)
	if decimal <= 1 {
		return 0
	}
	stake := (prob*decimal - 1) / (decimal - 1) * fraction
	return math.Max(0, stake)
}
