package eval

import (
	"fmt"
	"math/rand"
	"time"
)

// Partition holds the deterministic train/validation/test split of a dataset,
// plus the run identity metadata recorded at split time. A Partition is a
// value: once returned it is never modified by the engine.
type Partition struct {
	Train      Dataset `json:"-" yaml:"-"`
	Validation Dataset `json:"-" yaml:"-"`
	Test       Dataset `json:"-" yaml:"-"`

	TrainIdx []int `json:"trainIdx,omitempty" yaml:"trainIdx,omitempty"`
	ValIdx   []int `json:"valIdx,omitempty" yaml:"valIdx,omitempty"`
	TestIdx  []int `json:"testIdx,omitempty" yaml:"testIdx,omitempty"`

	Seed         int64   `json:"seed" yaml:"seed"`
	TestFraction float64 `json:"testFraction" yaml:"testFraction"`
	ValFraction  float64 `json:"valFraction" yaml:"valFraction"`

	DatasetHash    string `json:"datasetHash" yaml:"datasetHash"`
	DatasetVersion string `json:"datasetVersion" yaml:"datasetVersion"`
}

// Split deterministically partitions ds into test, validation, and train
// subsets. The identity permutation [0..n-1] is shuffled with a Fisher-Yates
// pass driven by a generator seeded with seed, then sliced in test, validation,
// train order: floor(n*testFraction) records to test, floor(n*valFraction) to
// validation, and the remainder to train. Identical inputs always produce
// identical index assignments.
//
// Fractions must be non-negative and sum to at most 1; anything else is
// rejected with ErrInvalidFractions rather than silently producing a
// degenerate train split.
func Split(ds Dataset, seed int64, testFraction, valFraction float64) (*Partition, error) {
	n := len(ds)
	if n == 0 {
		return nil, fmt.Errorf("partitioning: %w", ErrEmptyDataset)
	}
	if testFraction < 0 || valFraction < 0 || testFraction+valFraction > 1 {
		return nil, fmt.Errorf("test %.3f + validation %.3f: %w", testFraction, valFraction, ErrInvalidFractions)
	}

	indices := shuffledIndices(n, rand.New(rand.NewSource(seed)))

	testSize := int(float64(n) * testFraction)
	valSize := int(float64(n) * valFraction)

	testIdx := indices[:testSize]
	valIdx := indices[testSize : testSize+valSize]
	trainIdx := indices[testSize+valSize:]

	hash := ds.Hash()
	return &Partition{
		Train:          ds.subset(trainIdx),
		Validation:     ds.subset(valIdx),
		Test:           ds.subset(testIdx),
		TrainIdx:       trainIdx,
		ValIdx:         valIdx,
		TestIdx:        testIdx,
		Seed:           seed,
		TestFraction:   testFraction,
		ValFraction:    valFraction,
		DatasetHash:    hash,
		DatasetVersion: datasetVersion(hash, time.Now().UTC()),
	}, nil
}

// shuffledIndices returns the identity permutation of size n shuffled with a
// Fisher-Yates pass over the provided generator.
func shuffledIndices(n int, rng *rand.Rand) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}
	return indices
}

func datasetVersion(hash string, ts time.Time) string {
	prefix := hash
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("%s-%s", ts.Format("20060102T150405Z"), prefix)
}
