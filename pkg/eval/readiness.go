package eval

import "fmt"

// Thresholds are the readiness policy constants. They are configuration, not
// derived values; callers may tune them (pkg/config exposes them in the app
// config file).
type Thresholds struct {
	// BrierWarn flags a test Brier score worse than this as a warning.
	// The default 0.5 is double the trivial always-0.5 baseline of 0.25.
	BrierWarn float64 `json:"brierWarn" yaml:"brierWarn"`
	// ECEWarn flags a calibration error above this as a warning.
	ECEWarn float64 `json:"eceWarn" yaml:"eceWarn"`
	// MinTestSize flags test splits smaller than this as statistically unstable.
	MinTestSize int `json:"minTestSize" yaml:"minTestSize"`
}

// DefaultThresholds returns the stock readiness policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BrierWarn:   0.5,
		ECEWarn:     0.15,
		MinTestSize: 100,
	}
}

// Verdict is the rule-based deployment readiness judgment. Ready is false iff
// at least one issue (hard failure) fired; warnings never affect Ready.
type Verdict struct {
	Ready    bool     `json:"ready" yaml:"ready"`
	Issues   []string `json:"issues" yaml:"issues"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}

// Assess derives a readiness verdict from a report's already-computed
// metrics. Pure: no I/O, no randomness, and every rule fires independently.
//
// A missing test Brier score is the one hard failure. A present score of 0.0
// is a valid (perfect) result, not a missing one.
func Assess(r *Report, t Thresholds) Verdict {
	v := Verdict{
		Issues:   []string{},
		Warnings: []string{},
	}
	if r == nil {
		v.Issues = append(v.Issues, "no report available")
		return v
	}

	test := r.Splits[SplitTest]
	brier, hasBrier := test[MetricBrier]
	if !hasBrier {
		v.Issues = append(v.Issues, "no test metrics available")
	} else if brier > t.BrierWarn {
		v.Warnings = append(v.Warnings, fmt.Sprintf("test Brier score %.4f exceeds %.2f, calibration worse than trivial baseline", brier, t.BrierWarn))
	}

	if ece, ok := reportECE(r); ok && ece > t.ECEWarn {
		v.Warnings = append(v.Warnings, fmt.Sprintf("calibration error %.4f exceeds %.2f, recalibration recommended", ece, t.ECEWarn))
	}

	if r.Sizes.Test < t.MinTestSize {
		v.Warnings = append(v.Warnings, fmt.Sprintf("test split size %d below %d, metrics may be statistically unstable", r.Sizes.Test, t.MinTestSize))
	}

	v.Ready = len(v.Issues) == 0
	return v
}

// reportECE prefers the calibration artifact's ECE and falls back to the test
// split metric.
func reportECE(r *Report) (float64, bool) {
	if r.Calibration != nil && r.Calibration.Samples > 0 {
		return r.Calibration.ECE, true
	}
	ece, ok := r.Splits[SplitTest][MetricECE]
	return ece, ok
}
