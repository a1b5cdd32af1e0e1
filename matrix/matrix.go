package matrix

import (
	"math"

	mx "github.com/milosgajdos/matrix"
	"github.com/pkg/errors"
	filter "github.com/scenekf/go-scenekf"
	"gonum.org/v1/gonum/mat"
)

// RCond is the relative cutoff for small singular values in Pinv.
// Singular values smaller than RCond times the largest singular value are treated as zero.
const RCond = 1e-15

// Pinv returns Moore-Penrose pseudo-inverse of a.
// The pseudo-inverse is computed from thin SVD of a so it remains defined
// even if a is singular: its null space is simply dropped.
// It returns error if a is empty or if the SVD factorization fails.
func Pinv(a mat.Matrix) (*mat.Dense, error) {
	r, c := a.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrapf(filter.ErrDimensionMismatch, "empty matrix: [%d x %d]", r, c)
	}

	// Use SVD instead of LU as LU fails if a is (almost) singular
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, errors.Wrap(filter.ErrNumericalDegeneracy, "SVD factorization failed")
	}

	u, v := &mat.Dense{}, &mat.Dense{}
	svd.UTo(u)
	svd.VTo(v)
	vals := svd.Values(nil)

	// singular values are sorted in descending order
	cutoff := RCond * vals[0]
	vr, _ := v.Dims()
	for j, s := range vals {
		inv := 0.0
		if s > cutoff && !math.IsInf(1/s, 0) {
			inv = 1 / s
		}
		for i := 0; i < vr; i++ {
			v.Set(i, j, v.At(i, j)*inv)
		}
	}

	// V * Σ⁺ * U'
	pinv := mat.NewDense(c, r, nil)
	pinv.Mul(v, u.T())

	return pinv, nil
}

// Symmetrize returns a symmetric matrix (a + a')/2.
// It returns error if a is not square.
func Symmetrize(a mat.Matrix) (*mat.SymDense, error) {
	r, c := a.Dims()
	if r != c {
		return nil, errors.Wrapf(filter.ErrDimensionMismatch, "matrix not square: [%d x %d]", r, c)
	}

	sym := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			sym.SetSym(i, j, (a.At(i, j)+a.At(j, i))/2)
		}
	}

	return sym, nil
}

// IsSymmetric returns true if a is square and a[i,j] and a[j,i] differ by at most tol.
func IsSymmetric(a mat.Matrix, tol float64) bool {
	r, c := a.Dims()
	if r != c {
		return false
	}

	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			if math.Abs(a.At(i, j)-a.At(j, i)) > tol {
				return false
			}
		}
	}

	return true
}

// ScaledIdentity returns n x n symmetric matrix with v on its diagonal.
// It returns error if n is not a positive integer.
func ScaledIdentity(n int, v float64) (*mat.SymDense, error) {
	if n <= 0 {
		return nil, errors.Wrapf(filter.ErrDimensionMismatch, "invalid matrix size: %d", n)
	}

	eye, err := mx.NewDenseValIdentity(n, v)
	if err != nil {
		return nil, err
	}

	return Symmetrize(eye)
}
