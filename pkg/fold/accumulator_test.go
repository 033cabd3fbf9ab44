package fold

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
	"github.com/matzehuels/rasterfold/pkg/grid"
)

// rect returns a 4x4 occupancy grid with columns [x0,x1) and rows [y0,y1)
// set to 1.
func rect(x0, y0, x1, y1 int) *grid.Grid {
	g := grid.New(4, 4)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			g.Set(x, y, 1)
		}
	}
	return g
}

type feature struct {
	occ *grid.Grid
	v   float64
}

func run(t *testing.T, m Method, feats []feature) *grid.Grid {
	t.Helper()
	acc := NewAccumulator(m, 4, 4)
	for i, f := range feats {
		if err := acc.Fold(f.occ, f.v); err != nil {
			t.Fatalf("Fold(%d) error = %v", i, err)
		}
	}
	out, err := acc.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	return out
}

// Two polygons overlapping on the 2x2 block at columns 1-2, rows 1-2.
var (
	polyA = rect(0, 0, 3, 3)
	polyB = rect(1, 1, 4, 4)
)

func TestCountOverlap(t *testing.T) {
	got := run(t, MethodCount, []feature{{polyA, 0}, {polyB, 0}})
	want := []float64{
		1, 1, 1, 0,
		1, 2, 2, 1,
		1, 2, 2, 1,
		0, 1, 1, 1,
	}
	if diff := cmp.Diff(want, got.Data); diff != "" {
		t.Errorf("count mismatch (-want +got):\n%s", diff)
	}
}

func TestMaxOverlap(t *testing.T) {
	got := run(t, MethodMax, []feature{{polyA, 5}, {polyB, 10}})
	want := []float64{
		5, 5, 5, 0,
		5, 10, 10, 10,
		5, 10, 10, 10,
		0, 10, 10, 10,
	}
	if diff := cmp.Diff(want, got.Data); diff != "" {
		t.Errorf("max mismatch (-want +got):\n%s", diff)
	}
}

func TestMeanFullOverlap(t *testing.T) {
	full := rect(0, 0, 4, 2)
	got := run(t, MethodMean, []feature{{full, 4}, {full, 6}})

	nan := math.NaN()
	want := []float64{
		5, 5, 5, 5,
		5, 5, 5, 5,
		nan, nan, nan, nan,
		nan, nan, nan, nan,
	}
	if diff := cmp.Diff(want, got.Data, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("mean mismatch (-want +got):\n%s", diff)
	}
}

func TestMeanPartialOverlap(t *testing.T) {
	got := run(t, MethodMean, []feature{{polyA, 4}, {polyB, 8}})
	if v := got.At(0, 0); v != 4 {
		t.Errorf("single-feature pixel = %v, want 4", v)
	}
	if v := got.At(1, 1); v != 6 {
		t.Errorf("overlap pixel = %v, want 6", v)
	}
	if v := got.At(3, 0); !math.IsNaN(v) {
		t.Errorf("untouched pixel = %v, want NaN", v)
	}
}

func TestEmptyOccupancyContributesNothing(t *testing.T) {
	for _, m := range Methods {
		t.Run(string(m), func(t *testing.T) {
			base := run(t, m, []feature{{polyA, 3}})
			withEmpty := run(t, m, []feature{{polyA, 3}, {grid.New(4, 4), 100}})
			if diff := cmp.Diff(base.Data, withEmpty.Data, cmpopts.EquateNaNs()); diff != "" {
				t.Errorf("empty occupancy changed result (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOrderIndependence(t *testing.T) {
	feats := []feature{
		{polyA, 5},
		{polyB, 10},
		{rect(2, 0, 4, 2), 7},
		{rect(0, 3, 1, 4), 0},
	}
	perms := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}

	for _, m := range Methods {
		t.Run(string(m), func(t *testing.T) {
			var first *grid.Grid
			for _, p := range perms {
				ordered := make([]feature, len(p))
				for i, j := range p {
					ordered[i] = feats[j]
				}
				got := run(t, m, ordered)
				if first == nil {
					first = got
					continue
				}
				if diff := cmp.Diff(first.Data, got.Data, cmpopts.EquateNaNs()); diff != "" {
					t.Errorf("order %v changed result (-want +got):\n%s", p, diff)
				}
			}
		})
	}
}

func TestCountsTrackedForEveryMethod(t *testing.T) {
	for _, m := range Methods {
		acc := NewAccumulator(m, 4, 4)
		_ = acc.Fold(polyA, 1)
		_ = acc.Fold(polyB, 1)
		if got := acc.counts.At(1, 1); got != 2 {
			t.Errorf("%s: counts at overlap = %v, want 2", m, got)
		}
		if got := acc.Touched(); got != 14 {
			t.Errorf("%s: Touched() = %d, want 14", m, got)
		}
		if got := acc.Folded(); got != 2 {
			t.Errorf("%s: Folded() = %d, want 2", m, got)
		}
	}
}

func TestApplyNoData(t *testing.T) {
	tests := []struct {
		method Method
		v      float64
	}{
		{MethodCount, 0},
		{MethodMax, 5},
		{MethodMean, 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			acc := NewAccumulator(tt.method, 4, 4)
			if err := acc.Fold(polyA, tt.v); err != nil {
				t.Fatal(err)
			}
			if err := acc.ApplyNoData(-1); !rferrors.Is(err, rferrors.ErrCodeInternal) {
				t.Errorf("ApplyNoData before Finalize error = %v, want INTERNAL_ERROR", err)
			}
			out, err := acc.Finalize()
			if err != nil {
				t.Fatal(err)
			}
			if err := acc.ApplyNoData(-9999); err != nil {
				t.Fatal(err)
			}
			if got := out.At(3, 3); got != -9999 {
				t.Errorf("untouched pixel = %v, want -9999", got)
			}
			if got := out.At(0, 0); got == -9999 {
				t.Errorf("touched pixel was overwritten with nodata")
			}
		})
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	acc := NewAccumulator(MethodMean, 4, 4)
	_ = acc.Fold(polyA, 8)
	_ = acc.Fold(polyA, 4)

	first, err := acc.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	second, err := acc.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if got := second.At(0, 0); got != 6 {
		t.Errorf("second Finalize value = %v, want 6", got)
	}
	if first != second {
		t.Error("Finalize should return the same grid")
	}
	if err := acc.Fold(polyA, 1); !rferrors.Is(err, rferrors.ErrCodeInternal) {
		t.Errorf("Fold after Finalize error = %v, want INTERNAL_ERROR", err)
	}
}

func TestFoldShapeMismatch(t *testing.T) {
	acc := NewAccumulator(MethodCount, 4, 4)
	err := acc.Fold(grid.New(3, 4), 0)
	if !errors.Is(err, grid.ErrShapeMismatch) {
		t.Errorf("Fold() error = %v, want ErrShapeMismatch", err)
	}
	if acc.Folded() != 0 {
		t.Errorf("Folded() = %d after failed fold, want 0", acc.Folded())
	}
}
