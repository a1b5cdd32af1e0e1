package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RMSE returns root mean square error between estimates and their true values.
// It returns error if the series lengths differ, are empty or hold vectors of different lengths.
func RMSE(est, truth []mat.Vector) (float64, error) {
	if len(est) == 0 || len(est) != len(truth) {
		return 0, fmt.Errorf("invalid series length: %d, %d", len(est), len(truth))
	}

	var sum float64
	var n int
	for i := range est {
		if est[i].Len() != truth[i].Len() {
			return 0, fmt.Errorf("invalid vector length at %d: %d != %d", i, est[i].Len(), truth[i].Len())
		}

		diff := make([]float64, est[i].Len())
		floats.SubTo(diff, mat.Col(nil, 0, est[i]), mat.Col(nil, 0, truth[i]))
		sum += floats.Dot(diff, diff)
		n += len(diff)
	}

	if n == 0 {
		return 0, fmt.Errorf("invalid vector length: 0")
	}

	return math.Sqrt(sum / float64(n)), nil
}
