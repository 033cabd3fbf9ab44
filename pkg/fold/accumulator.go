package fold

import (
	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
	"github.com/matzehuels/rasterfold/pkg/grid"
)

// Accumulator holds the running result of a fold. It keeps a result grid
// and a per-pixel count of touching features for every method; the counts
// feed the mean division and identify untouched pixels for NoData.
//
// An Accumulator is not safe for concurrent use.
type Accumulator struct {
	method    Method
	result    *grid.Grid
	counts    *grid.Grid
	folded    int
	finalized bool
}

// NewAccumulator returns a zero-filled accumulator of the given shape.
func NewAccumulator(m Method, width, height int) *Accumulator {
	return &Accumulator{
		method: m,
		result: grid.New(width, height),
		counts: grid.New(width, height),
	}
}

// Method returns the reducer in use.
func (a *Accumulator) Method() Method { return a.method }

// Folded returns the number of occupancy grids folded so far.
func (a *Accumulator) Folded() int { return a.folded }

// Fold combines one feature's occupancy grid into the accumulator. occ
// holds 1 on touched pixels and 0 elsewhere. v is the feature's field value
// and is ignored for count.
func (a *Accumulator) Fold(occ *grid.Grid, v float64) error {
	if a.finalized {
		return rferrors.New(rferrors.ErrCodeInternal, "fold after finalize")
	}

	var err error
	switch a.method {
	case MethodCount:
		err = a.result.Add(occ)
	case MethodMax:
		err = a.result.MaxScaled(v, occ)
	case MethodMean:
		err = a.result.AddScaled(v, occ)
	default:
		return rferrors.New(rferrors.ErrCodeInvalidMethod, "invalid method %q", string(a.method))
	}
	if err != nil {
		return err
	}
	if err := a.counts.Add(occ); err != nil {
		return err
	}
	a.folded++
	return nil
}

// Finalize completes the reduction and returns the result grid. For mean
// the sums are divided by the counts; pixels no feature touched become
// NaN (0/0). Calling Finalize more than once returns the same grid.
func (a *Accumulator) Finalize() (*grid.Grid, error) {
	if a.finalized {
		return a.result, nil
	}
	if a.method == MethodMean {
		if err := a.result.Div(a.counts); err != nil {
			return nil, err
		}
	}
	a.finalized = true
	return a.result, nil
}

// ApplyNoData sets every pixel no feature touched to v. It must be called
// after Finalize.
func (a *Accumulator) ApplyNoData(v float64) error {
	if !a.finalized {
		return rferrors.New(rferrors.ErrCodeInternal, "nodata applied before finalize")
	}
	return a.result.SetWhereZero(a.counts, v)
}

// Touched returns the number of pixels touched by at least one feature.
func (a *Accumulator) Touched() int { return a.counts.CountNonZero() }
