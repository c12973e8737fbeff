package scoring

import (
	"math"
)

const (
	// DecompositionBins is the fixed bin count used by BrierDecomposition.
	DecompositionBins = 10

	// logEpsilon keeps the log score finite for probabilities at the boundaries.
	logEpsilon = 1e-15
)

// Brier returns the mean squared error between predicted probabilities and
// realized binary outcomes. Lower is better, 0 is perfect.
// Returns NaN when the inputs are empty or of unequal length.
func Brier(preds, outcomes []float64) float64 {
	if len(preds) == 0 || len(preds) != len(outcomes) {
		return math.NaN()
	}
	var sum float64
	for i, p := range preds {
		d := p - outcomes[i]
		sum += d * d
	}
	return sum / float64(len(preds))
}

// Log returns the mean negative log-likelihood of the realized outcomes under
// the predicted probabilities. Probabilities are clamped away from 0 and 1 so
// the result stays finite. Lower is better.
func Log(preds, outcomes []float64) float64 {
	if len(preds) == 0 || len(preds) != len(outcomes) {
		return math.NaN()
	}
	var sum float64
	for i, p := range preds {
		p = clamp(p, logEpsilon, 1-logEpsilon)
		if outcomes[i] > 0.5 {
			sum += -math.Log(p)
		} else {
			sum += -math.Log(1 - p)
		}
	}
	return sum / float64(len(preds))
}

// Spherical returns the mean spherical score, a strictly proper scoring rule
// that normalizes the probability assigned to the realized outcome by the
// norm of the forecast vector. Higher is better, 1 is perfect.
func Spherical(preds, outcomes []float64) float64 {
	if len(preds) == 0 || len(preds) != len(outcomes) {
		return math.NaN()
	}
	var sum float64
	for i, p := range preds {
		norm := math.Sqrt(p*p + (1-p)*(1-p))
		if norm == 0 {
			continue
		}
		if outcomes[i] > 0.5 {
			sum += p / norm
		} else {
			sum += (1 - p) / norm
		}
	}
	return sum / float64(len(preds))
}

// ExpectedCalibrationError returns the weighted average absolute gap between
// mean predicted confidence and mean empirical accuracy across equal-width
// probability bins. Predictions of exactly 1.0 land in the last bin.
func ExpectedCalibrationError(preds, outcomes []float64, bins int) float64 {
	if len(preds) == 0 || len(preds) != len(outcomes) || bins < 1 {
		return math.NaN()
	}

	confSum := make([]float64, bins)
	accSum := make([]float64, bins)
	counts := make([]int, bins)

	for i, p := range preds {
		b := binIndex(p, bins)
		confSum[b] += p
		accSum[b] += outcomes[i]
		counts[b]++
	}

	n := float64(len(preds))
	var ece float64
	for b := 0; b < bins; b++ {
		if counts[b] == 0 {
			continue
		}
		c := float64(counts[b])
		ece += (c / n) * math.Abs(accSum[b]/c-confSum[b]/c)
	}
	return ece
}

// BrierDecomposition splits the Brier score into its Murphy components over
// DecompositionBins equal-width bins: reliability (calibration error),
// resolution (discriminative power), and uncertainty (base-rate variance).
func BrierDecomposition(preds, outcomes []float64) (reliability, resolution, uncertainty float64) {
	if len(preds) == 0 || len(preds) != len(outcomes) {
		return math.NaN(), math.NaN(), math.NaN()
	}

	confSum := make([]float64, DecompositionBins)
	accSum := make([]float64, DecompositionBins)
	counts := make([]int, DecompositionBins)

	var base float64
	for i, p := range preds {
		b := binIndex(p, DecompositionBins)
		confSum[b] += p
		accSum[b] += outcomes[i]
		counts[b]++
		base += outcomes[i]
	}

	n := float64(len(preds))
	base /= n

	for b := 0; b < DecompositionBins; b++ {
		if counts[b] == 0 {
			continue
		}
		c := float64(counts[b])
		conf := confSum[b] / c
		acc := accSum[b] / c
		reliability += (c / n) * (conf - acc) * (conf - acc)
		resolution += (c / n) * (acc - base) * (acc - base)
	}
	uncertainty = base * (1 - base)
	return reliability, resolution, uncertainty
}

// Mean returns the arithmetic mean of vals, or NaN for empty input.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// StdDev returns the sample standard deviation (n-1 denominator) of vals.
// Returns NaN when fewer than two values are provided.
func StdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return math.NaN()
	}
	m := Mean(vals)
	var sum float64
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

// binIndex maps a probability to its equal-width bin, clamping the closed
// upper boundary 1.0 into the last bin.
func binIndex(p float64, bins int) int {
	b := int(p * float64(bins))
	if b > bins-1 {
		b = bins - 1
	}
	if b < 0 {
		b = 0
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
