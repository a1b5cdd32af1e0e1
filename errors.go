package filter

import "github.com/pkg/errors"

var (
	// ErrDimensionMismatch is returned when a vector or matrix does not match the filter dimensions.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrNumericalDegeneracy is returned when a matrix decomposition fails.
	ErrNumericalDegeneracy = errors.New("numerical degeneracy")
)
