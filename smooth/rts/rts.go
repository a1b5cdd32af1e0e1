package rts

import (
	"github.com/pkg/errors"
	filter "github.com/scenekf/go-scenekf"
	"github.com/scenekf/go-scenekf/estimate"
	"github.com/scenekf/go-scenekf/matrix"
	"github.com/scenekf/go-scenekf/model"
	"gonum.org/v1/gonum/mat"
)

// RTS is Rauch-Tung-Striebel smoother
type RTS struct {
	// m is scene model
	m *model.Scene
}

// New creates new RTS and returns it.
// It returns error if m is nil.
func New(m *model.Scene) (*RTS, error) {
	if m == nil {
		return nil, errors.New("invalid scene model: nil")
	}

	return &RTS{m: m}, nil
}

// Smooth implements Rauch-Tung-Striebel smoothing algorithm.
// est are filtered (corrected) estimates and motion[k] is the predict step
// applied between est[k] and est[k+1], so len(motion) must be len(est)-1.
// It returns smoothed estimates, the last of which equals the last filtered estimate.
// It returns error if the arguments are inconsistent or smoothing could not be computed.
func (s *RTS) Smooth(est []filter.Estimate, motion []filter.Motion) ([]filter.Estimate, error) {
	if len(est) == 0 {
		return nil, errors.New("invalid estimates size: 0")
	}

	if len(motion) != len(est)-1 {
		return nil, errors.Errorf("invalid motion size: %d, expected %d", len(motion), len(est)-1)
	}

	nx, _ := s.m.Dims()
	for i := range est {
		if est[i] == nil {
			return nil, errors.Errorf("invalid estimate %d: nil", i)
		}
		if est[i].Val().Len() != nx || est[i].Cov().SymmetricDim() != nx {
			return nil, errors.Wrapf(filter.ErrDimensionMismatch, "invalid estimate %d dims", i)
		}
	}

	sx := make([]filter.Estimate, len(est))

	last, err := estimate.NewBaseWithCov(est[len(est)-1].Val(), est[len(est)-1].Cov())
	if err != nil {
		return nil, err
	}
	sx[len(est)-1] = last

	for k := len(est) - 2; k >= 0; k-- {
		xk := est[k].Val()
		pk := est[k].Cov()

		// propagate state to the next step
		xk1, err := s.m.Propagate(xk, motion[k].DX, motion[k].DY)
		if err != nil {
			return nil, errors.Wrap(err, "model state propagation failed")
		}

		// propagate covariance to the next step: A is identity
		pk1 := &mat.Dense{}
		pk1.CloneFrom(pk)
		q := motion[k].Q.Value()
		for i := 0; i < nx; i++ {
			pk1.Set(i, i, pk1.At(i, i)+q)
		}

		// P_(k+1) pseudo-inverse
		pinv, err := matrix.Pinv(pk1)
		if err != nil {
			return nil, errors.Wrap(err, "failed to invert predicted covariance")
		}

		// smoothing matrix: Pk*A'*P_(k+1)^-1
		c := &mat.Dense{}
		c.Mul(pk, pinv)

		// smooth the state: xk + C*(xs_(k+1) - x_(k+1))
		diff := &mat.VecDense{}
		diff.SubVec(sx[k+1].Val(), xk1)
		xs := &mat.VecDense{}
		xs.MulVec(c, diff)
		xs.AddVec(xk, xs)

		// smooth the covariance: Pk + C*(Ps_(k+1) - P_(k+1))*C'
		ps := &mat.Dense{}
		ps.Sub(sx[k+1].Cov(), pk1)
		ps.Mul(c, ps)
		ps.Mul(ps, c.T())
		ps.Add(pk, ps)

		pSmooth, err := matrix.Symmetrize(ps)
		if err != nil {
			return nil, err
		}

		e, err := estimate.NewBaseWithCov(xs, pSmooth)
		if err != nil {
			return nil, err
		}
		sx[k] = e
	}

	return sx, nil
}
