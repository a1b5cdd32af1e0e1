package filter

import "strconv"

// Var is an optional noise variance.
// The zero value is unset and resolves to unit variance, so Var{} and
// Variance(1) always yield the same noise matrix.
type Var struct {
	v   float64
	set bool
}

// Variance returns Var set to v.
func Variance(v float64) Var {
	return Var{v: v, set: true}
}

// Value returns the variance: v if set, otherwise 1.
func (v Var) Value() float64 {
	if !v.set {
		return 1.0
	}

	return v.v
}

// IsSet reports whether the variance was explicitly set.
func (v Var) IsSet() bool {
	return v.set
}

// String implements the Stringer interface.
func (v Var) String() string {
	if !v.set {
		return "Var(unset)"
	}

	return "Var(" + strconv.FormatFloat(v.v, 'g', -1, 64) + ")"
}
