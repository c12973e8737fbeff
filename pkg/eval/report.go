package eval

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion identifies the report schema for downstream consumers.
const SchemaVersion = "v1"

// Split names used as Report.Splits keys.
const (
	SplitTrain      = "train"
	SplitValidation = "validation"
	SplitTest       = "test"
)

// SplitSizes records how many records landed in each split.
type SplitSizes struct {
	Train      int `json:"train" yaml:"train"`
	Validation int `json:"validation" yaml:"validation"`
	Test       int `json:"test" yaml:"test"`
}

// Report is the single output contract of an evaluation run: split metadata,
// per-split metrics, the calibration artifact, fold-level results, and the
// readiness verdict, under a deterministic dataset identity. Reports are
// write-once; a new run compiles a new report rather than patching an old one.
type Report struct {
	ID            string    `json:"id" yaml:"id"`
	SchemaVersion string    `json:"schemaVersion" yaml:"schemaVersion"`
	GeneratedAt   time.Time `json:"generatedAt" yaml:"generatedAt"`

	DatasetHash    string  `json:"datasetHash" yaml:"datasetHash"`
	DatasetVersion string  `json:"datasetVersion" yaml:"datasetVersion"`
	Seed           int64   `json:"seed" yaml:"seed"`
	TestFraction   float64 `json:"testFraction" yaml:"testFraction"`
	ValFraction    float64 `json:"valFraction" yaml:"valFraction"`

	Sizes           SplitSizes           `json:"sizes" yaml:"sizes"`
	Splits          map[string]MetricSet `json:"splits" yaml:"splits"`
	Calibration     *Calibration         `json:"calibration,omitempty" yaml:"calibration,omitempty"`
	CrossValidation *KFoldResult         `json:"crossValidation,omitempty" yaml:"crossValidation,omitempty"`
	Verdict         Verdict              `json:"verdict" yaml:"verdict"`
}

// Compile assembles one report from the artifacts of a completed run and
// stamps it with a fresh identifier. The verdict is derived last, over the
// assembled report.
func Compile(p *Partition, splits map[string]MetricSet, cal *Calibration, cv *KFoldResult, t Thresholds) *Report {
	r := &Report{
		ID:              newReportID(time.Now().UTC()),
		SchemaVersion:   SchemaVersion,
		GeneratedAt:     time.Now().UTC(),
		Splits:          splits,
		Calibration:     cal,
		CrossValidation: cv,
	}
	if p != nil {
		r.DatasetHash = p.DatasetHash
		r.DatasetVersion = p.DatasetVersion
		r.Seed = p.Seed
		r.TestFraction = p.TestFraction
		r.ValFraction = p.ValFraction
		r.Sizes = SplitSizes{
			Train:      len(p.Train),
			Validation: len(p.Validation),
			Test:       len(p.Test),
		}
	}
	r.Verdict = Assess(r, t)
	return r
}

func newReportID(ts time.Time) string {
	return fmt.Sprintf("%s-%s", ts.Format("20060102t150405"), uuid.NewString()[:8])
}
