// Package kf implements a linear Kalman filter over a scene of object slots.
//
// All slots are tracked jointly: the filter keeps one state vector holding every
// slot's [confidence, x, y, width, height] block and one dense covariance matrix
// over the whole vector, so correlations between slots are representable even
// though the scene model never introduces them itself.
package kf

import (
	"github.com/pkg/errors"
	filter "github.com/scenekf/go-scenekf"
	"github.com/scenekf/go-scenekf/estimate"
	"github.com/scenekf/go-scenekf/matrix"
	"github.com/scenekf/go-scenekf/model"
	"github.com/scenekf/go-scenekf/slot"
	"gonum.org/v1/gonum/mat"
)

// KF is Kalman Filter
type KF struct {
	// m is KF scene model
	m *model.Scene
	// x is KF state mean
	x *mat.VecDense
	// p is the KF covariance matrix
	p *mat.SymDense
	// inn is innovation vector
	inn *mat.VecDense
	// k is Kalman gain
	k *mat.Dense
}

// New creates new KF and returns it.
// It accepts the following parameters:
//   - m:    scene model
//   - x:    initial state; if nil the state is initialized to zero vector
//   - pVar: initial state variance; the covariance is initialized to pVar*I
//
// It returns error if either m is nil or x does not match the model dimensions.
func New(m *model.Scene, x mat.Vector, pVar filter.Var) (*KF, error) {
	if m == nil {
		return nil, errors.New("invalid scene model: nil")
	}

	nx, _ := m.Dims()

	state := mat.NewVecDense(nx, nil)
	if x != nil {
		if err := m.Layout().Check(x); err != nil {
			return nil, errors.Wrap(err, "invalid initial state")
		}
		state.CopyVec(x)
	}

	p, err := matrix.ScaledIdentity(nx, pVar.Value())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create state covariance")
	}

	return newKF(m, state, p), nil
}

// NewWithInitCond creates new KF from initial condition ic and returns it.
// Unlike New it accepts dense initial covariance, including cross-slot terms.
// It returns error if either m or ic is nil or ic does not match the model dimensions.
func NewWithInitCond(m *model.Scene, ic filter.InitCond) (*KF, error) {
	if m == nil {
		return nil, errors.New("invalid scene model: nil")
	}

	if ic == nil {
		return nil, errors.New("invalid initial condition: nil")
	}

	nx, _ := m.Dims()

	state := ic.State()
	if err := m.Layout().Check(state); err != nil {
		return nil, errors.Wrap(err, "invalid initial state")
	}

	cov := ic.Cov()
	if cov.SymmetricDim() != nx {
		return nil, errors.Wrapf(filter.ErrDimensionMismatch, "invalid initial covariance dims: [%d x %d]",
			cov.SymmetricDim(), cov.SymmetricDim())
	}

	x := mat.NewVecDense(nx, nil)
	x.CopyVec(state)

	p := mat.NewSymDense(nx, nil)
	p.CopySym(cov)

	return newKF(m, x, p), nil
}

func newKF(m *model.Scene, x *mat.VecDense, p *mat.SymDense) *KF {
	nx, ny := m.Dims()

	return &KF{
		m:   m,
		x:   x,
		p:   p,
		inn: mat.NewVecDense(ny, nil),
		k:   mat.NewDense(nx, ny, nil),
	}
}

// Predict propagates KF state to the next step and returns its estimate.
// Every slot x is shifted by dx and every slot y by dy; the remaining slot
// variables are unchanged. Process noise q*I is added to the state covariance.
func (k *KF) Predict(dx, dy float64, q filter.Var) (filter.Estimate, error) {
	x, err := k.m.Propagate(k.x, dx, dy)
	if err != nil {
		return nil, errors.Wrap(err, "system state propagation failed")
	}

	// the transition is identity: A*P*A' is P itself
	n := k.p.SymmetricDim()
	p := mat.NewSymDense(n, nil)
	p.CopySym(k.p)

	qv := q.Value()
	for i := 0; i < n; i++ {
		p.SetSym(i, i, p.At(i, i)+qv)
	}

	k.x = x
	k.p = p

	return estimate.NewBaseWithCov(k.x, k.p)
}

// Update corrects KF state using the measurement z with measurement noise r*I and returns the corrected estimate.
// The gain uses pseudo-inverse of the innovation covariance so singular
// innovation covariance results in reduced correction rather than failure.
// It returns error if z does not match the model output dimension or if the
// pseudo-inverse can not be computed. KF state is left unmodified on error.
func (k *KF) Update(z mat.Vector, r filter.Var) (filter.Estimate, error) {
	if err := k.checkMeas(z); err != nil {
		return nil, err
	}

	nx, ny := k.m.Dims()

	// H*x
	yNext, err := k.m.Observe(k.x)
	if err != nil {
		return nil, errors.Wrap(err, "failed to observe system output")
	}

	pxy := &mat.Dense{}
	pyy := &mat.Dense{}

	var h mat.Matrix
	if k.m.IdentityOutput() {
		pxy.CloneFrom(k.p)
		pyy.CloneFrom(k.p)
	} else {
		h = k.m.OutputMatrix()
		// P*H'
		pxy.Mul(k.p, h.T())
		// Note: pxy = P * H' so we reuse the result here
		// H*P*H'
		pyy.Mul(h, pxy)
	}

	// H*P*H' + R
	rv := r.Value()
	for i := 0; i < ny; i++ {
		pyy.Set(i, i, pyy.At(i, i)+rv)
	}

	pyyInv, err := matrix.Pinv(pyy)
	if err != nil {
		return nil, errors.Wrap(err, "failed to calculate Pyy pseudo-inverse")
	}

	// calculate Kalman gain
	gain := &mat.Dense{}
	gain.Mul(pxy, pyyInv)

	// innovation vector
	inn := &mat.VecDense{}
	inn.SubVec(z, yNext)

	// update state x
	x := &mat.VecDense{}
	x.MulVec(gain, inn)
	x.AddVec(k.x, x)

	// I - K*H
	a := &mat.Dense{}
	if h == nil {
		a.CloneFrom(gain)
	} else {
		a.Mul(gain, h)
	}
	a.Scale(-1, a)
	for i := 0; i < nx; i++ {
		a.Set(i, i, a.At(i, i)+1.0)
	}

	// (I - K*H)*P
	pCorr := &mat.Dense{}
	pCorr.Mul(a, k.p)

	p, err := matrix.Symmetrize(pCorr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update covariance")
	}

	k.x = x
	k.p = p
	k.inn = inn
	k.k = gain

	return estimate.NewBaseWithCov(k.x, k.p)
}

// Run runs one step of KF: it shifts the scene by dx and dy and then corrects
// the prediction using measurement z. It returns the corrected estimate.
// Measurement dimensions are checked before the state is propagated, so KF
// state is left unmodified if z is invalid.
func (k *KF) Run(dx, dy float64, q filter.Var, z mat.Vector, r filter.Var) (filter.Estimate, error) {
	if err := k.checkMeas(z); err != nil {
		return nil, err
	}

	if _, err := k.Predict(dx, dy, q); err != nil {
		return nil, err
	}

	return k.Update(z, r)
}

func (k *KF) checkMeas(z mat.Vector) error {
	_, ny := k.m.Dims()

	if z == nil {
		return errors.Wrap(filter.ErrDimensionMismatch, "invalid measurement: nil")
	}

	if z.Len() != ny {
		return errors.Wrapf(filter.ErrDimensionMismatch, "invalid measurement length: %d, expected %d", z.Len(), ny)
	}

	return nil
}

// Model returns KF model
func (k *KF) Model() *model.Scene {
	return k.m
}

// Mean returns KF state mean
func (k *KF) Mean() mat.Vector {
	x := &mat.VecDense{}
	x.CloneFromVec(k.x)

	return x
}

// Cov returns KF covariance
func (k *KF) Cov() mat.Symmetric {
	cov := mat.NewSymDense(k.p.SymmetricDim(), nil)
	cov.CopySym(k.p)

	return cov
}

// Boxes returns KF state mean unpacked into slot boxes
func (k *KF) Boxes() []slot.Box {
	// k.x always matches the layout
	boxes, _ := k.m.Layout().Unpack(k.x)

	return boxes
}

// Gain returns Kalman gain of the last update
func (k *KF) Gain() mat.Matrix {
	gain := &mat.Dense{}
	gain.CloneFrom(k.k)

	return gain
}

// Innovation returns innovation vector of the last update
func (k *KF) Innovation() mat.Vector {
	inn := &mat.VecDense{}
	inn.CloneFromVec(k.inn)

	return inn
}
