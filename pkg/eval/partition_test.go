package eval

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDataset(n int) Dataset {
	ds := make(Dataset, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		ds[i] = Record{
			Probability: float64(i%100) / 100,
			Outcome:     i % 2,
			Created:     base.Add(time.Duration(i) * time.Hour),
		}
	}
	return ds
}

func TestSplit_Sizes(t *testing.T) {
	ds := makeDataset(100)

	p, err := Split(ds, 42, 0.2, 0.15)
	require.NoError(t, err)

	assert.Len(t, p.Test, 20)
	assert.Len(t, p.Validation, 15)
	assert.Len(t, p.Train, 65)
}

func TestSplit_Deterministic(t *testing.T) {
	ds := makeDataset(250)

	p1, err := Split(ds, 42, 0.2, 0.15)
	require.NoError(t, err)
	p2, err := Split(ds, 42, 0.2, 0.15)
	require.NoError(t, err)

	assert.Equal(t, p1.TestIdx, p2.TestIdx)
	assert.Equal(t, p1.ValIdx, p2.ValIdx)
	assert.Equal(t, p1.TrainIdx, p2.TrainIdx)
	assert.Equal(t, p1.DatasetHash, p2.DatasetHash)
}

func TestSplit_SeedChangesAssignment(t *testing.T) {
	ds := makeDataset(250)

	p1, err := Split(ds, 42, 0.2, 0.15)
	require.NoError(t, err)
	p2, err := Split(ds, 43, 0.2, 0.15)
	require.NoError(t, err)

	assert.NotEqual(t, p1.TestIdx, p2.TestIdx)
}

func TestSplit_Complete(t *testing.T) {
	tests := []struct {
		n        int
		testFrac float64
		valFrac  float64
	}{
		{1, 0.2, 0.15},
		{7, 0.5, 0.5},
		{23, 0.2, 0.15},
		{100, 0, 0},
		{101, 0.33, 0.33},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d_t=%.2f_v=%.2f", tt.n, tt.testFrac, tt.valFrac), func(t *testing.T) {
			p, err := Split(makeDataset(tt.n), 11, tt.testFrac, tt.valFrac)
			require.NoError(t, err)

			seen := make(map[int]int)
			for _, idx := range p.TestIdx {
				seen[idx]++
			}
			for _, idx := range p.ValIdx {
				seen[idx]++
			}
			for _, idx := range p.TrainIdx {
				seen[idx]++
			}

			require.Len(t, seen, tt.n)
			for i := 0; i < tt.n; i++ {
				assert.Equal(t, 1, seen[i], "index %d", i)
			}
			assert.Equal(t, tt.n, len(p.Train)+len(p.Validation)+len(p.Test))
		})
	}
}

func TestSplit_Empty(t *testing.T) {
	_, err := Split(Dataset{}, 42, 0.2, 0.15)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestSplit_InvalidFractions(t *testing.T) {
	ds := makeDataset(10)

	_, err := Split(ds, 42, 0.7, 0.4)
	assert.ErrorIs(t, err, ErrInvalidFractions)

	_, err = Split(ds, 42, -0.1, 0.2)
	assert.ErrorIs(t, err, ErrInvalidFractions)
}

func TestSplit_RecordsMatchIndices(t *testing.T) {
	ds := makeDataset(50)

	p, err := Split(ds, 7, 0.3, 0.2)
	require.NoError(t, err)

	for i, idx := range p.TestIdx {
		assert.Equal(t, ds[idx], p.Test[i])
	}
	for i, idx := range p.ValIdx {
		assert.Equal(t, ds[idx], p.Validation[i])
	}
}

func TestDataset_Hash(t *testing.T) {
	ds := makeDataset(10)

	assert.Equal(t, ds.Hash(), ds.Hash())
	assert.Len(t, ds.Hash(), 64)

	changed := makeDataset(10)
	changed[3].Probability = 0.999
	assert.NotEqual(t, ds.Hash(), changed.Hash())
}

func TestDatasetVersion(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	v := datasetVersion("abcdef0123456789", ts)
	assert.Equal(t, "20250601T123000Z-abcdef01", v)
}
