package rts

import (
	"os"
	"testing"

	"github.com/pkg/errors"
	filter "github.com/scenekf/go-scenekf"
	"github.com/scenekf/go-scenekf/kalman/kf"
	"github.com/scenekf/go-scenekf/matrix"
	"github.com/scenekf/go-scenekf/model"
	"github.com/scenekf/go-scenekf/slot"
	"github.com/scenekf/go-scenekf/smooth"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

var (
	scene *model.Scene
)

func setup() {
	l, _ := slot.NewLayout(2)
	scene, _ = model.NewScene(l)
}

func TestMain(m *testing.M) {
	// set up tests
	setup()
	// run the tests
	retCode := m.Run()
	// call with result of m.Run()
	os.Exit(retCode)
}

func TestNewRTS(t *testing.T) {
	assert := assert.New(t)

	s, err := New(scene)
	assert.NotNil(s)
	assert.NoError(err)

	var _ smooth.RTS = s

	s, err = New(nil)
	assert.Nil(s)
	assert.Error(err)
}

func run(t *testing.T, steps int) ([]filter.Estimate, []filter.Motion) {
	f, err := kf.New(scene, nil, filter.Variance(4))
	if err != nil {
		t.Fatalf("failed to create filter: %v", err)
	}

	l := scene.Layout()
	var est []filter.Estimate
	var motion []filter.Motion

	truth, _ := l.Pack([]slot.Box{
		{Conf: 1, X: 10, Y: 10, W: 4, H: 4},
		{Conf: 0.5, X: 20, Y: 5, W: 2, H: 3},
	})
	for n := 0; n < steps; n++ {
		m := filter.Motion{DX: 1.0, DY: 0.5, Q: filter.Variance(0.1)}
		if n > 0 {
			motion = append(motion, m)
			truth, _ = scene.Propagate(truth, m.DX, m.DY)
			if _, err := f.Predict(m.DX, m.DY, m.Q); err != nil {
				t.Fatalf("predict failed: %v", err)
			}
		}

		// alternate measurement error around the truth
		z := mat.NewVecDense(l.Dim(), nil)
		sign := 1.0
		if n%2 == 1 {
			sign = -1.0
		}
		for i := 0; i < l.Dim(); i++ {
			z.SetVec(i, truth.AtVec(i)+sign*0.3)
		}

		e, err := f.Update(z, filter.Variance(1))
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		est = append(est, e)
	}

	return est, motion
}

func TestSmooth(t *testing.T) {
	assert := assert.New(t)

	s, err := New(scene)
	assert.NoError(err)

	est, motion := run(t, 6)

	sx, err := s.Smooth(est, motion)
	assert.NoError(err)
	assert.Len(sx, len(est))

	// last smoothed estimate is the last filtered one
	last := len(est) - 1
	assert.True(mat.EqualApprox(est[last].Val(), sx[last].Val(), 1e-9))
	assert.True(mat.EqualApprox(est[last].Cov(), sx[last].Cov(), 1e-9))

	// smoothing never increases uncertainty
	for k := range sx {
		for i := 0; i < sx[k].Cov().SymmetricDim(); i++ {
			assert.True(sx[k].Cov().At(i, i) <= est[k].Cov().At(i, i)+1e-9)
		}
	}

	// a single estimate smooths to itself
	sx, err = s.Smooth(est[:1], nil)
	assert.NoError(err)
	assert.True(mat.EqualApprox(est[0].Val(), sx[0].Val(), 1e-9))
}

func TestSmoothTwoSteps(t *testing.T) {
	assert := assert.New(t)

	l, _ := slot.NewLayout(1)
	m, _ := model.NewScene(l)
	f, err := kf.New(m, nil, filter.Variance(1))
	assert.NoError(err)

	ones := mat.NewVecDense(l.Dim(), []float64{1, 1, 1, 1, 1})
	twos := mat.NewVecDense(l.Dim(), []float64{2, 2, 2, 2, 2})

	// x0 = 0.5, P0 = 0.5*I
	e0, err := f.Update(ones, filter.Var{})
	assert.NoError(err)

	// x1|0 = [0.5 1.5 1.0 0.5 0.5], P1|0 = 1.5*I, K = 0.6*I, P1 = 0.6*I
	step := filter.Motion{DX: 1, DY: 0.5, Q: filter.Variance(1)}
	_, err = f.Predict(step.DX, step.DY, step.Q)
	assert.NoError(err)
	e1, err := f.Update(twos, filter.Var{})
	assert.NoError(err)
	assert.True(mat.EqualApprox(mat.NewVecDense(5, []float64{1.4, 1.8, 1.6, 1.4, 1.4}), e1.Val(), 1e-9))

	s, err := New(m)
	assert.NoError(err)
	sx, err := s.Smooth([]filter.Estimate{e0, e1}, []filter.Motion{step})
	assert.NoError(err)
	assert.Len(sx, 2)

	// C = P0/P1|0 = 1/3, xs0 = x0 + C(x1 - x1|0), Ps0 = P0 + C^2(P1 - P1|0)
	expVal := mat.NewVecDense(5, []float64{0.8, 0.6, 0.7, 0.8, 0.8})
	assert.True(mat.EqualApprox(expVal, sx[0].Val(), 1e-9))
	expCov, _ := matrix.ScaledIdentity(5, 0.4)
	assert.True(mat.EqualApprox(expCov, sx[0].Cov(), 1e-9))

	assert.True(mat.EqualApprox(e1.Val(), sx[1].Val(), 1e-9))
	assert.True(mat.EqualApprox(e1.Cov(), sx[1].Cov(), 1e-9))
}

func TestSmoothErrors(t *testing.T) {
	assert := assert.New(t)

	s, err := New(scene)
	assert.NoError(err)

	sx, err := s.Smooth(nil, nil)
	assert.Nil(sx)
	assert.Error(err)

	est, motion := run(t, 3)

	sx, err = s.Smooth(est, motion[:1])
	assert.Nil(sx)
	assert.Error(err)

	l, _ := slot.NewLayout(1)
	other, _ := model.NewScene(l)
	o, err := New(other)
	assert.NoError(err)
	sx, err = o.Smooth(est, motion)
	assert.Nil(sx)
	assert.Equal(filter.ErrDimensionMismatch, errors.Cause(err))
}
