package model

import (
	"github.com/pkg/errors"
	filter "github.com/scenekf/go-scenekf"
	"github.com/scenekf/go-scenekf/slot"
	"gonum.org/v1/gonum/mat"
)

// Scene is a linear model of a scene of object slots.
//
// Its state transition is the identity plus a uniform shift of every slot
// position: the whole scene moves by the same screen offset (e.g. due to camera
// motion) while the objects themselves stay put. Its observation is y = H*x
// where H is the identity unless a custom output matrix is given.
//
//	x[n+1] = x[n] + shift(dx, dy)
//	y[n]   = H*x[n]
type Scene struct {
	// layout is slot layout
	layout slot.Layout
	// h is observation matrix; nil is identity
	h *mat.Dense
}

// NewScene creates new Scene with identity observation matrix and returns it.
func NewScene(l slot.Layout) (*Scene, error) {
	if l.Dim() <= 0 {
		return nil, errors.Wrapf(filter.ErrDimensionMismatch, "invalid layout dimension: %d", l.Dim())
	}

	return &Scene{layout: l}, nil
}

// NewSceneWithOutput creates new Scene with observation matrix h and returns it.
// h must have as many columns as is the layout dimension and at least one row.
func NewSceneWithOutput(l slot.Layout, h mat.Matrix) (*Scene, error) {
	s, err := NewScene(l)
	if err != nil {
		return nil, err
	}

	if h == nil {
		return nil, errors.Wrap(filter.ErrDimensionMismatch, "nil observation matrix")
	}

	rows, cols := h.Dims()
	if rows == 0 || cols != l.Dim() {
		return nil, errors.Wrapf(filter.ErrDimensionMismatch, "invalid observation matrix dimensions: [%d x %d]", rows, cols)
	}

	s.h = mat.DenseCopyOf(h)

	return s, nil
}

// Layout returns scene slot layout
func (s *Scene) Layout() slot.Layout {
	return s.layout
}

// Dims returns state vector length nx and output vector length ny.
func (s *Scene) Dims() (nx, ny int) {
	nx = s.layout.Dim()
	if s.h == nil {
		return nx, nx
	}
	ny, _ = s.h.Dims()

	return nx, ny
}

// IdentityOutput returns true if the observation matrix is the identity.
func (s *Scene) IdentityOutput() bool {
	return s.h == nil
}

// Propagate shifts x and y of every slot in state x by dx and dy and returns the result.
// All other slot variables are left unchanged. x itself is not modified.
// It returns error if x does not match the layout dimension.
func (s *Scene) Propagate(x mat.Vector, dx, dy float64) (*mat.VecDense, error) {
	if err := s.layout.Check(x); err != nil {
		return nil, err
	}

	out := &mat.VecDense{}
	out.CloneFromVec(x)

	for i := 0; i < s.layout.Slots(); i++ {
		xi := s.layout.Index(i, slot.X)
		yi := s.layout.Index(i, slot.Y)
		out.SetVec(xi, out.AtVec(xi)+dx)
		out.SetVec(yi, out.AtVec(yi)+dy)
	}

	return out, nil
}

// Observe returns observable output H*x of state x.
// It returns error if x does not match the layout dimension.
func (s *Scene) Observe(x mat.Vector) (*mat.VecDense, error) {
	if err := s.layout.Check(x); err != nil {
		return nil, err
	}

	out := &mat.VecDense{}
	if s.h == nil {
		out.CloneFromVec(x)
		return out, nil
	}
	out.MulVec(s.h, x)

	return out, nil
}

// StateMatrix returns state propagation matrix: the identity.
func (s *Scene) StateMatrix() mat.Matrix {
	return eye(s.layout.Dim())
}

// OutputMatrix returns observation matrix
func (s *Scene) OutputMatrix() mat.Matrix {
	if s.h == nil {
		return eye(s.layout.Dim())
	}

	m := &mat.Dense{}
	m.CloneFrom(s.h)

	return m
}

func eye(n int) *mat.DiagDense {
	d := make([]float64, n)
	for i := range d {
		d[i] = 1.0
	}

	return mat.NewDiagDense(n, d)
}
