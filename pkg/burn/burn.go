// Package burn rasterizes a single geometry into an occupancy grid under
// the all-touched rule: every pixel the geometry intersects is set to 1.
//
// Burner is the boundary between the fold loop and the rasterization
// backend. The GDAL backend lives in package gdal; Native is a pure-Go
// implementation that needs no GDAL at burn time.
package burn

import (
	"github.com/paulmach/orb"

	"github.com/matzehuels/rasterfold/pkg/grid"
)

// Burner writes 1 into every pixel of dst touched by g. dst is zeroed by
// the caller and has the model raster's shape. A nil or empty geometry
// leaves dst unchanged.
type Burner interface {
	Burn(g orb.Geometry, dst *grid.Grid) error
}

// BurnerFunc adapts a function to the Burner interface.
type BurnerFunc func(g orb.Geometry, dst *grid.Grid) error

// Burn calls f(g, dst).
func (f BurnerFunc) Burn(g orb.Geometry, dst *grid.Grid) error { return f(g, dst) }
