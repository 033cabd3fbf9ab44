// Package grid provides the dense two-dimensional float64 grid used for
// accumulators and per-feature occupancy masks.
//
// Cells are stored row-major: the cell at column x, row y lives at
// Data[y*Width+x]. Row 0 is the first row of the model raster (the top row
// for north-up rasters).
//
// Elementwise operations follow IEEE-754 semantics exactly as an array
// library would: dividing 0 by 0 yields NaN, and Max propagates NaN.
// Operations between grids of different shapes fail with ErrShapeMismatch;
// grids never resize.
package grid

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
)

// ErrShapeMismatch is returned when two grids taking part in an operation
// do not have the same width and height.
var ErrShapeMismatch = rferrors.New(rferrors.ErrCodeShapeMismatch, "grid shapes differ")

// Grid is a Width x Height matrix of float64 values.
type Grid struct {
	Width  int
	Height int
	Data   []float64
}

// New returns a zero-filled grid. Width and height must be positive.
func New(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("grid: invalid shape %dx%d", width, height))
	}
	return &Grid{
		Width:  width,
		Height: height,
		Data:   make([]float64, width*height),
	}
}

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.Data) }

// At returns the value at column x, row y.
func (g *Grid) At(x, y int) float64 { return g.Data[y*g.Width+x] }

// Set stores v at column x, row y.
func (g *Grid) Set(x, y int, v float64) { g.Data[y*g.Width+x] = v }

// Row returns the cells of row y. The slice aliases the grid.
func (g *Grid) Row(y int) []float64 {
	return g.Data[y*g.Width : (y+1)*g.Width]
}

// Zero resets every cell to 0.
func (g *Grid) Zero() { clear(g.Data) }

// Fill sets every cell to v.
func (g *Grid) Fill(v float64) {
	for i := range g.Data {
		g.Data[i] = v
	}
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	c := &Grid{Width: g.Width, Height: g.Height, Data: make([]float64, len(g.Data))}
	copy(c.Data, g.Data)
	return c
}

// SameShape reports whether g and o have identical dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Width == o.Width && g.Height == o.Height
}

func (g *Grid) check(o *Grid) error {
	if !g.SameShape(o) {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, g.Width, g.Height, o.Width, o.Height)
	}
	return nil
}

// Add performs g += o elementwise.
func (g *Grid) Add(o *Grid) error {
	if err := g.check(o); err != nil {
		return err
	}
	floats.Add(g.Data, o.Data)
	return nil
}

// AddScaled performs g += alpha*o elementwise.
func (g *Grid) AddScaled(alpha float64, o *Grid) error {
	if err := g.check(o); err != nil {
		return err
	}
	floats.AddScaled(g.Data, alpha, o.Data)
	return nil
}

// MaxScaled performs g = max(g, alpha*o) elementwise. Cells where o is 0
// compare against 0, so a negative alpha never lowers a cell below 0.
func (g *Grid) MaxScaled(alpha float64, o *Grid) error {
	if err := g.check(o); err != nil {
		return err
	}
	for i, v := range o.Data {
		g.Data[i] = max(g.Data[i], alpha*v)
	}
	return nil
}

// Div performs g /= o elementwise. 0/0 cells become NaN and x/0 cells
// become ±Inf.
func (g *Grid) Div(o *Grid) error {
	if err := g.check(o); err != nil {
		return err
	}
	floats.Div(g.Data, o.Data)
	return nil
}

// SetWhereZero sets every cell of g to v where the matching cell of mask
// is 0.
func (g *Grid) SetWhereZero(mask *Grid, v float64) error {
	if err := g.check(mask); err != nil {
		return err
	}
	for i, m := range mask.Data {
		if m == 0 {
			g.Data[i] = v
		}
	}
	return nil
}

// Sum returns the sum of all cells.
func (g *Grid) Sum() float64 { return floats.Sum(g.Data) }

// CountNonZero returns the number of cells that are not 0. NaN cells count
// as non-zero.
func (g *Grid) CountNonZero() int {
	n := 0
	for _, v := range g.Data {
		if v != 0 {
			n++
		}
	}
	return n
}

// String renders the grid one row per line. It is meant for test failure
// messages and debug logging of small grids.
func (g *Grid) String() string {
	var b []byte
	for y := range g.Height {
		for x, v := range g.Row(y) {
			if x > 0 {
				b = append(b, ' ')
			}
			b = fmt.Appendf(b, "%g", v)
		}
		b = append(b, '\n')
	}
	return string(b)
}
