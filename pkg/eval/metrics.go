package eval

import (
	"math"

	"github.com/forecastlab/pmeval/pkg/scoring"
)

// Metric keys produced by SplitMetrics.
const (
	MetricBrier       = "brierScore"
	MetricLog         = "logScore"
	MetricSpherical   = "sphericalScore"
	MetricECE         = "ece"
	MetricReliability = "reliability"
	MetricResolution  = "resolution"
	MetricUncertainty = "uncertainty"
	MetricSampleSize  = "sampleSize"
)

// minScoringSample is the smallest split for which scores are computed.
// Smaller splits report only their sample size.
const minScoringSample = 2

// MetricSet maps metric names to values. A missing key means the metric was
// not computable for the given input; absent keys are never substituted with
// zero.
type MetricSet map[string]float64

// SplitMetrics scores one dataset split with the scoring library, producing
// the engine's standard MetricSet. Splits with fewer than two records carry
// only sampleSize, signaling an insufficient sample in-band rather than as an
// error so batch pipelines can continue.
func SplitMetrics(ds Dataset, bins int) MetricSet {
	m := MetricSet{MetricSampleSize: float64(len(ds))}
	if len(ds) < minScoringSample {
		return m
	}

	preds := ds.Probabilities()
	outcomes := ds.Outcomes()

	put(m, MetricBrier, scoring.Brier(preds, outcomes))
	put(m, MetricLog, scoring.Log(preds, outcomes))
	put(m, MetricSpherical, scoring.Spherical(preds, outcomes))
	put(m, MetricECE, scoring.ExpectedCalibrationError(preds, outcomes, bins))

	rel, res, unc := scoring.BrierDecomposition(preds, outcomes)
	put(m, MetricReliability, rel)
	put(m, MetricResolution, res)
	put(m, MetricUncertainty, unc)

	return m
}

// put records a metric value, dropping non-finite results so a MetricSet
// always marshals cleanly.
func put(m MetricSet, key string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	m[key] = v
}
