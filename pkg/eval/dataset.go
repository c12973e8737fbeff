package eval

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"
)

// Record is one forecast-outcome pair. Probability is expected in [0,1] and
// Outcome is 0 or 1; both are validated upstream (pkg/data) before a dataset
// reaches the engine. Records are never mutated by the engine.
type Record struct {
	Probability float64   `json:"probability" yaml:"probability"`
	Outcome     int       `json:"outcome" yaml:"outcome"`
	Created     time.Time `json:"created,omitempty" yaml:"created,omitempty"`
}

// Dataset is an in-memory, fully resolved forecast dataset.
type Dataset []Record

// Probabilities returns the predicted probabilities in record order.
func (d Dataset) Probabilities() []float64 {
	out := make([]float64, len(d))
	for i, r := range d {
		out[i] = r.Probability
	}
	return out
}

// Outcomes returns the realized outcomes in record order as floats.
func (d Dataset) Outcomes() []float64 {
	out := make([]float64, len(d))
	for i, r := range d {
		out[i] = float64(r.Outcome)
	}
	return out
}

// Hash returns a hex sha256 digest over the probability/outcome content of the
// dataset, in record order. Used as run identity, not for security.
func (d Dataset) Hash() string {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, r := range d {
		binary.BigEndian.PutUint64(buf, math.Float64bits(r.Probability))
		h.Write(buf)
		binary.BigEndian.PutUint64(buf, uint64(r.Outcome)) //nolint:gosec // outcome is 0 or 1
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// subset gathers the records at the given indices.
func (d Dataset) subset(indices []int) Dataset {
	out := make(Dataset, len(indices))
	for i, idx := range indices {
		out[i] = d[idx]
	}
	return out
}
