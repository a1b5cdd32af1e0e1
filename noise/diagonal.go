package noise

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"

	filter "github.com/scenekf/go-scenekf"
	"github.com/scenekf/go-scenekf/matrix"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Diagonal is zero mean isotropic noise: every component is drawn
// independently from the same normal distribution, so its covariance is v*I.
type Diagonal struct {
	// size is noise dimension
	size int
	// v is noise variance
	v filter.Var
	// dist is univariate normal distribution
	dist distuv.Normal
}

// NewDiagonal creates new Diagonal noise of given size and variance v.
// It returns error if size is non-positive or v is negative.
func NewDiagonal(size int, v filter.Var) (*Diagonal, error) {
	return NewDiagonalWithSeed(size, v, uint64(time.Now().UnixNano()))
}

// NewDiagonalWithSeed creates new Diagonal noise whose samples are drawn from a source seeded with seed.
func NewDiagonalWithSeed(size int, v filter.Var, seed uint64) (*Diagonal, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid noise dimension: %d", size)
	}

	if v.Value() < 0 {
		return nil, fmt.Errorf("invalid noise variance: %v", v)
	}

	return &Diagonal{
		size: size,
		v:    v,
		dist: newNormalDist(v.Value(), seed),
	}, nil
}

// Sample generates a sample from Diagonal noise and returns it.
func (d *Diagonal) Sample() mat.Vector {
	data := make([]float64, d.size)
	for i := range data {
		data[i] = d.dist.Rand()
	}

	return mat.NewVecDense(d.size, data)
}

// Cov returns covariance matrix of Diagonal noise: v*I.
func (d *Diagonal) Cov() mat.Symmetric {
	cov, _ := matrix.ScaledIdentity(d.size, d.v.Value())

	return cov
}

// Mean returns Diagonal mean: a slice of zeros.
func (d *Diagonal) Mean() []float64 {
	return make([]float64, d.size)
}

// Var returns Diagonal noise variance.
func (d *Diagonal) Var() filter.Var {
	return d.v
}

// Reset resets Diagonal noise: it reseeds the noise source.
func (d *Diagonal) Reset() error {
	d.dist = newNormalDist(d.v.Value(), uint64(time.Now().UnixNano()))

	return nil
}

func newNormalDist(v float64, seed uint64) distuv.Normal {
	return distuv.Normal{
		Mu:    0,
		Sigma: math.Sqrt(v),
		Src:   rand.NewSource(seed),
	}
}

// String implements the Stringer interface.
func (d *Diagonal) String() string {
	return fmt.Sprintf("Diagonal{\nSize=%d\nVar=%v\n}", d.size, d.v.Value())
}
