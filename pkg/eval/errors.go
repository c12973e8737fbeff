package eval

import "errors"

var (
	// ErrEmptyDataset is returned when a partition is requested over zero records.
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrInsufficientData is returned when the dataset is smaller than the
	// requested fold count.
	ErrInsufficientData = errors.New("dataset smaller than fold count")

	// ErrMismatchedLength is returned when predictions and outcomes passed to
	// calibration analysis have different lengths.
	ErrMismatchedLength = errors.New("predictions and outcomes length mismatch")

	// ErrInvalidFractions is returned when the test and validation fractions
	// are negative or sum to more than 1.
	ErrInvalidFractions = errors.New("invalid test/validation fractions")
)
