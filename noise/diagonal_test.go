package noise

import (
	"testing"

	filter "github.com/scenekf/go-scenekf"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestNewDiagonal(t *testing.T) {
	assert := assert.New(t)

	d, err := NewDiagonal(3, filter.Var{})
	assert.NotNil(d)
	assert.NoError(err)

	d, err = NewDiagonal(0, filter.Var{})
	assert.Nil(d)
	assert.Error(err)

	d, err = NewDiagonal(3, filter.Variance(-1))
	assert.Nil(d)
	assert.Error(err)

	d, err = NewDiagonal(3, filter.Variance(0))
	assert.NotNil(d)
	assert.NoError(err)
}

func TestDiagonalMeanCov(t *testing.T) {
	assert := assert.New(t)

	d, err := NewDiagonal(3, filter.Variance(2.5))
	assert.NoError(err)

	assert.EqualValues([]float64{0, 0, 0}, d.Mean())
	assert.Equal(filter.Variance(2.5), d.Var())

	exp := mat.NewSymDense(3, []float64{2.5, 0, 0, 0, 2.5, 0, 0, 0, 2.5})
	assert.True(mat.Equal(exp, d.Cov()))

	// unset variance is unit variance
	d, err = NewDiagonal(2, filter.Var{})
	assert.NoError(err)
	assert.True(mat.Equal(mat.NewSymDense(2, []float64{1, 0, 0, 1}), d.Cov()))
}

func TestDiagonalSample(t *testing.T) {
	assert := assert.New(t)

	size := 5000
	d, err := NewDiagonalWithSeed(size, filter.Variance(4), 7)
	assert.NoError(err)

	sample := d.Sample()
	assert.Equal(size, sample.Len())

	data := mat.Col(nil, 0, sample)
	assert.InDelta(0.0, stat.Mean(data, nil), 0.2)
	assert.InDelta(4.0, stat.Variance(data, nil), 0.4)

	// zero variance yields zero samples
	d, err = NewDiagonalWithSeed(3, filter.Variance(0), 7)
	assert.NoError(err)
	assert.True(mat.Equal(mat.NewVecDense(3, nil), d.Sample()))
}

func TestDiagonalReset(t *testing.T) {
	assert := assert.New(t)

	d, err := NewDiagonalWithSeed(4, filter.Var{}, 1)
	assert.NoError(err)

	sample1 := d.Sample()
	assert.NoError(d.Reset())
	sample2 := d.Sample()
	assert.NotEqual(sample1, sample2)
}

func TestDiagonalString(t *testing.T) {
	assert := assert.New(t)

	d, err := NewDiagonal(2, filter.Variance(0.5))
	assert.NoError(err)
	assert.Equal("Diagonal{\nSize=2\nVar=0.5\n}", d.String())
}
