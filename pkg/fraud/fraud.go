// Package fraud scores a check image for signs of tampering and rates its
// signature.
//
// The Heuristic implementation is a placeholder. Its flags come from crude
// intensity statistics and its confidence values are uniform random draws
// inside fixed ranges. They carry no evidentiary meaning and must not be read
// as calibrated probabilities. Real classifiers plug in through FraudScorer
// and SignatureScorer.
package fraud

import (
	"math/rand/v2"

	"checkparser/pkg/imgproc"

	"github.com/rs/zerolog/log"
)

// VerifiedThreshold is the signature confidence a signature must exceed to be
// treated as verified.
const VerifiedThreshold = 0.7

const (
	canvasSize = 224
	darkMean   = 100.0
	flatStdDev = 20.0
)

// FraudScore is the outcome of fraud screening.
type FraudScore struct {
	Detected   bool    `json:"detected"`
	Confidence float64 `json:"confidence"`
}

// SignatureScore holds the three signature sub-scores.
type SignatureScore struct {
	Confidence   float64 `json:"confidence"`
	Consistency  float64 `json:"consistency"`
	Authenticity float64 `json:"authenticity"`
}

// Verified reports whether the confidence is above VerifiedThreshold.
func (s SignatureScore) Verified() bool {
	return s.Confidence > VerifiedThreshold
}

// FraudScorer screens a whole check image.
type FraudScorer interface {
	ScoreFraud(img *imgproc.Grid) FraudScore
}

// SignatureScorer rates the signature region.
type SignatureScorer interface {
	ScoreSignature(region *imgproc.Grid) SignatureScore
}

// Heuristic implements both scorers with intensity statistics and random
// confidence draws.
type Heuristic struct {
	rnd func() float64
}

// NewHeuristic returns a Heuristic drawing from math/rand/v2.
func NewHeuristic() *Heuristic {
	return &Heuristic{rnd: rand.Float64}
}

// NewHeuristicWithSource uses rnd for every draw; rnd must return values in
// [0, 1) and be safe for concurrent use if the scorer is shared.
func NewHeuristicWithSource(rnd func() float64) *Heuristic {
	return &Heuristic{rnd: rnd}
}

// ScoreFraud resizes the image to 224x224, and flags it when its grayscale
// mean is below 100 or its standard deviation below 20. Confidence is a draw
// in [0.7, 1.0]. Invalid input scores zero.
func (h *Heuristic) ScoreFraud(img *imgproc.Grid) FraudScore {
	mean, std, err := canvasStats(img, canvasSize)
	if err != nil {
		log.Warn().Str("component", "FRAUD").Err(err).Msg("fraud scoring failed")
		return FraudScore{}
	}
	return FraudScore{
		Detected:   mean < darkMean || std < flatStdDev,
		Confidence: 0.7 + h.rnd()*0.3,
	}
}

// ScoreSignature draws confidence in [0.5, 1.0], consistency in [0.6, 1.0] and
// authenticity in [0.7, 1.0]. Invalid input scores zero.
func (h *Heuristic) ScoreSignature(region *imgproc.Grid) SignatureScore {
	mean, std, err := imgproc.MeanStdDev(region)
	if err != nil {
		log.Warn().Str("component", "SIGNATURE").Err(err).Msg("signature scoring failed")
		return SignatureScore{}
	}
	log.Debug().Str("component", "SIGNATURE").Float64("mean", mean).Float64("std", std).Msg("signature region stats")
	return SignatureScore{
		Confidence:   0.5 + h.rnd()*0.5,
		Consistency:  0.6 + h.rnd()*0.4,
		Authenticity: 0.7 + h.rnd()*0.3,
	}
}

func canvasStats(img *imgproc.Grid, size int) (float64, float64, error) {
	resized, err := imgproc.Resize(img, size, size)
	if err != nil {
		return 0, 0, err
	}
	return imgproc.MeanStdDev(resized)
}
