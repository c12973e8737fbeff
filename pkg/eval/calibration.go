package eval

import (
	"fmt"
	"math"

	"github.com/forecastlab/pmeval/pkg/scoring"
)

// DefaultBins is the calibration bin count used when none is specified.
const DefaultBins = 10

// CalibrationBin is one equal-width probability interval [Lower, Upper) with
// the derived stats of the predictions that fell into it. Empty bins keep
// zeroed stats so consumers always see the full bin range.
type CalibrationBin struct {
	Lower    float64 `json:"lower" yaml:"lower"`
	Upper    float64 `json:"upper" yaml:"upper"`
	Size     int     `json:"size" yaml:"size"`
	ConfMean float64 `json:"confMean" yaml:"confMean"`
	AccMean  float64 `json:"accMean" yaml:"accMean"`
}

// Calibration compares mean predicted confidence against mean empirical
// accuracy per bin. Overconfident counts bins whose mean confidence exceeds
// accuracy, Underconfident the reverse; empty bins count toward neither.
// ECE is meaningful only when Samples > 0.
type Calibration struct {
	Bins           []CalibrationBin `json:"bins" yaml:"bins"`
	ECE            float64          `json:"ece" yaml:"ece"`
	Overconfident  int              `json:"overconfidenceCount" yaml:"overconfidenceCount"`
	Underconfident int              `json:"underconfidenceCount" yaml:"underconfidenceCount"`
	Samples        int              `json:"samples" yaml:"samples"`
	Dropped        int              `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

// Analyze bins predictions by confidence and measures the gap to empirical
// accuracy. Inputs must be parallel slices of equal length. Predictions that
// are not finite numbers in [0,1] are dropped together with their outcomes
// before binning and are reflected only in the Dropped count, never as an
// error. Predictions of exactly 1.0 are clamped into the last bin.
//
// The expected calibration error is delegated to the scoring library over the
// same valid prediction/outcome pairs and bin count, so the two never drift
// definitionally.
func Analyze(preds, outcomes []float64, numBins int) (*Calibration, error) {
	if len(preds) != len(outcomes) {
		return nil, fmt.Errorf("%d predictions vs %d outcomes: %w", len(preds), len(outcomes), ErrMismatchedLength)
	}
	if numBins < 1 {
		numBins = DefaultBins
	}

	validPreds := make([]float64, 0, len(preds))
	validOutcomes := make([]float64, 0, len(outcomes))
	for i, p := range preds {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1 {
			continue
		}
		validPreds = append(validPreds, p)
		validOutcomes = append(validOutcomes, outcomes[i])
	}

	confSum := make([]float64, numBins)
	accSum := make([]float64, numBins)
	counts := make([]int, numBins)
	for i, p := range validPreds {
		b := int(p * float64(numBins))
		if b > numBins-1 {
			b = numBins - 1
		}
		confSum[b] += p
		accSum[b] += validOutcomes[i]
		counts[b]++
	}

	cal := &Calibration{
		Bins:    make([]CalibrationBin, numBins),
		Samples: len(validPreds),
		Dropped: len(preds) - len(validPreds),
	}

	width := 1.0 / float64(numBins)
	for b := 0; b < numBins; b++ {
		bin := CalibrationBin{
			Lower: float64(b) * width,
			Upper: float64(b+1) * width,
			Size:  counts[b],
		}
		if counts[b] > 0 {
			c := float64(counts[b])
			bin.ConfMean = confSum[b] / c
			bin.AccMean = accSum[b] / c
			// Gaps within half a bin width are quantization noise, not
			// miscalibration.
			switch gap := bin.ConfMean - bin.AccMean; {
			case gap > width/2:
				cal.Overconfident++
			case gap < -width/2:
				cal.Underconfident++
			}
		}
		cal.Bins[b] = bin
	}

	if cal.Samples > 0 {
		cal.ECE = scoring.ExpectedCalibrationError(validPreds, validOutcomes, numBins)
	}
	return cal, nil
}
