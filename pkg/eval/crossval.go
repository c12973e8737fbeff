package eval

import (
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/forecastlab/pmeval/pkg/scoring"
)

// MetricsFunc computes a MetricSet for one fold given its training and
// validation subsets. Implementations must be pure: the runner only
// orchestrates folds and aggregates, it never interprets metric semantics.
type MetricsFunc func(train, val Dataset) MetricSet

// FoldResult is the outcome of evaluating a single fold.
type FoldResult struct {
	Fold      int       `json:"fold" yaml:"fold"`
	TrainSize int       `json:"trainSize" yaml:"trainSize"`
	ValSize   int       `json:"valSize" yaml:"valSize"`
	Metrics   MetricSet `json:"metrics" yaml:"metrics"`
}

// KFoldResult carries per-fold metrics plus their mean and sample standard
// deviation for every metric key with at least one finite observation.
type KFoldResult struct {
	K          int          `json:"k" yaml:"k"`
	Seed       int64        `json:"seed" yaml:"seed"`
	Folds      []FoldResult `json:"folds" yaml:"folds"`
	AvgMetrics MetricSet    `json:"avgMetrics" yaml:"avgMetrics"`
	StdMetrics MetricSet    `json:"stdMetrics" yaml:"stdMetrics"`
}

// KFold rotates ds through k contiguous folds after a single deterministic
// shuffle and invokes fn once per fold. The shuffle uses a fresh generator
// seeded with seed, independent from any partitioning stream, so cross
// validation is reproducible on its own.
//
// Fold i owns validation indices [i*fs, (i+1)*fs) with fs = floor(n/k); the
// last fold extends to n, absorbing the integer-division remainder, so every
// index is validated exactly once. Folds are data independent given the
// shuffle and are computed concurrently, with results aggregated in fold
// order.
func KFold(ds Dataset, k int, seed int64, fn MetricsFunc) (*KFoldResult, error) {
	n := len(ds)
	if k < 2 {
		return nil, fmt.Errorf("fold count must be at least 2, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("%d records for %d folds: %w", n, k, ErrInsufficientData)
	}
	if fn == nil {
		return nil, fmt.Errorf("metrics function is required")
	}

	indices := shuffledIndices(n, rand.New(rand.NewSource(seed)))
	foldSize := n / k

	folds := make([]FoldResult, k)
	var g errgroup.Group
	for i := 0; i < k; i++ {
		i := i
		g.Go(func() error {
			lo := i * foldSize
			hi := lo + foldSize
			if i == k-1 {
				hi = n
			}

			valIdx := indices[lo:hi]
			trainIdx := make([]int, 0, n-len(valIdx))
			trainIdx = append(trainIdx, indices[:lo]...)
			trainIdx = append(trainIdx, indices[hi:]...)

			train := ds.subset(trainIdx)
			val := ds.subset(valIdx)
			folds[i] = FoldResult{
				Fold:      i,
				TrainSize: len(train),
				ValSize:   len(val),
				Metrics:   fn(train, val),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	avg, std := aggregateFolds(folds)
	return &KFoldResult{
		K:          k,
		Seed:       seed,
		Folds:      folds,
		AvgMetrics: avg,
		StdMetrics: std,
	}, nil
}

// aggregateFolds computes mean and sample standard deviation across folds for
// every key present in fold 0's metrics. Non-finite values are skipped; keys
// without any finite observation are omitted entirely, never reported as
// zero. The standard deviation is omitted for keys with fewer than two
// observations since the sample estimator is undefined there.
func aggregateFolds(folds []FoldResult) (avg, std MetricSet) {
	avg = MetricSet{}
	std = MetricSet{}
	if len(folds) == 0 || folds[0].Metrics == nil {
		return avg, std
	}

	for key := range folds[0].Metrics {
		vals := make([]float64, 0, len(folds))
		for _, f := range folds {
			v, ok := f.Metrics[key]
			if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			continue
		}
		avg[key] = scoring.Mean(vals)
		if len(vals) > 1 {
			std[key] = scoring.StdDev(vals)
		}
	}
	return avg, std
}
