package filter

import "gonum.org/v1/gonum/mat"

// Filter is a joint scene filter over a fixed number of object slots.
type Filter interface {
	// Predict advances the filter state by one step shifting every slot by dx, dy
	Predict(dx, dy float64, q Var) (Estimate, error)
	// Update corrects the filter state using external measurement z
	Update(z mat.Vector, r Var) (Estimate, error)
}

// Smoother is a filter smoother
type Smoother interface {
	// Smooth smooths filter estimates given the motion applied between them
	Smooth([]Estimate, []Motion) ([]Estimate, error)
}

// Motion is a single predict step: a uniform scene shift and its process noise.
type Motion struct {
	// DX is the shift applied to every slot x
	DX float64
	// DY is the shift applied to every slot y
	DY float64
	// Q is process noise variance
	Q Var
}

// InitCond is initial state condition of the filter
type InitCond interface {
	// State returns initial filter state
	State() mat.Vector
	// Cov returns initial state covariance
	Cov() mat.Symmetric
}

// Estimate is dynamical system filter estimate
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Symmetric
}

// Noise is dynamical system noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise
	Reset() error
}
