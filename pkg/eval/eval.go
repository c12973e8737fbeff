// Package eval implements the deterministic evaluation engine: seeded
// train/validation/test partitioning, k-fold cross validation, calibration
// analysis, readiness assessment, and report compilation over an in-memory
// forecast dataset. Every operation is a pure function of its inputs; a
// failed call returns an error and leaves no partial state behind.
package eval

import (
	"fmt"
)

// Options configure one evaluation run. Zero values for fractions, folds, and
// bins fall back to the documented defaults.
type Options struct {
	Seed         int64      `json:"seed" yaml:"seed"`
	TestFraction float64    `json:"testFraction" yaml:"testFraction"`
	ValFraction  float64    `json:"valFraction" yaml:"valFraction"`
	Folds        int        `json:"folds" yaml:"folds"`
	Bins         int        `json:"bins" yaml:"bins"`
	Thresholds   Thresholds `json:"thresholds" yaml:"thresholds"`
}

// Default evaluation parameters.
const (
	DefaultSeed         = int64(42)
	DefaultTestFraction = 0.2
	DefaultValFraction  = 0.15
	DefaultFolds        = 5
)

// DefaultOptions returns the stock run configuration.
func DefaultOptions() Options {
	return Options{
		Seed:         DefaultSeed,
		TestFraction: DefaultTestFraction,
		ValFraction:  DefaultValFraction,
		Folds:        DefaultFolds,
		Bins:         DefaultBins,
		Thresholds:   DefaultThresholds(),
	}
}

// normalized fills unset option fields with defaults.
func (o Options) normalized() Options {
	if o.TestFraction == 0 {
		o.TestFraction = DefaultTestFraction
	}
	if o.ValFraction == 0 {
		o.ValFraction = DefaultValFraction
	}
	if o.Folds == 0 {
		o.Folds = DefaultFolds
	}
	if o.Bins == 0 {
		o.Bins = DefaultBins
	}
	if o.Thresholds == (Thresholds{}) {
		o.Thresholds = DefaultThresholds()
	}
	return o
}

// Evaluate runs the full pipeline over ds: partition, per-split scoring,
// k-fold cross validation for stability estimates, calibration analysis on
// the held-out test split, readiness assessment, and report compilation.
// Each stage's result is threaded into the next as an immutable value.
//
// Cross validation is skipped (with no error) when the dataset is smaller
// than the fold count; the report simply omits fold results.
func Evaluate(ds Dataset, opts Options) (*Report, error) {
	opts = opts.normalized()

	p, err := Split(ds, opts.Seed, opts.TestFraction, opts.ValFraction)
	if err != nil {
		return nil, fmt.Errorf("evaluating dataset: %w", err)
	}

	splits := map[string]MetricSet{
		SplitTrain:      SplitMetrics(p.Train, opts.Bins),
		SplitValidation: SplitMetrics(p.Validation, opts.Bins),
		SplitTest:       SplitMetrics(p.Test, opts.Bins),
	}

	var cv *KFoldResult
	if len(ds) >= opts.Folds && opts.Folds >= 2 {
		cv, err = KFold(ds, opts.Folds, opts.Seed, func(_, val Dataset) MetricSet {
			return SplitMetrics(val, opts.Bins)
		})
		if err != nil {
			return nil, fmt.Errorf("cross validation: %w", err)
		}
	}

	cal, err := Analyze(p.Test.Probabilities(), p.Test.Outcomes(), opts.Bins)
	if err != nil {
		return nil, fmt.Errorf("calibration analysis: %w", err)
	}

	return Compile(p, splits, cal, cv, opts.Thresholds), nil
}
