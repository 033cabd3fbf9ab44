package raster

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
)

// GeoTransform is the affine map from pixel space to world coordinates in
// GDAL coefficient order:
//
//	X = gt[0] + col*gt[1] + row*gt[2]
//	Y = gt[3] + col*gt[4] + row*gt[5]
//
// Pixel (0,0) is the top-left corner of the first cell.
type GeoTransform [6]float64

// DefaultGeoTransform is the transform GDAL reports for rasters without
// georeferencing: world coordinates equal pixel coordinates.
var DefaultGeoTransform = GeoTransform{0, 1, 0, 0, 0, 1}

// Apply maps a pixel-space position to world coordinates.
func (gt GeoTransform) Apply(col, row float64) (x, y float64) {
	x = gt[0] + col*gt[1] + row*gt[2]
	y = gt[3] + col*gt[4] + row*gt[5]
	return x, y
}

// ToPixel returns the inverse transform, mapping world coordinates to
// pixel space, as a matrix in the (a, b, c, d, e, f) layout where
// x' = a*x + c*y + e and y' = b*x + d*y + f.
func (gt GeoTransform) ToPixel() (matrix.Matrix, error) {
	for _, v := range gt {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return matrix.Matrix{}, rferrors.New(rferrors.ErrCodeInvalidGeoTransform,
				"geotransform %v has non-finite coefficients", [6]float64(gt))
		}
	}
	det := gt[1]*gt[5] - gt[2]*gt[4]
	if det == 0 {
		return matrix.Matrix{}, rferrors.New(rferrors.ErrCodeInvalidGeoTransform,
			"geotransform %v is not invertible", [6]float64(gt))
	}

	a := gt[5] / det
	c := -gt[2] / det
	b := -gt[4] / det
	d := gt[1] / det
	e := -(a*gt[0] + c*gt[3])
	f := -(b*gt[0] + d*gt[3])
	return matrix.Matrix{a, b, c, d, e, f}, nil
}

// PixelSize returns the width and height of one cell in world units.
func (gt GeoTransform) PixelSize() (float64, float64) {
	return math.Hypot(gt[1], gt[4]), math.Hypot(gt[2], gt[5])
}

// IsNorthUp reports whether the transform has no rotation terms.
func (gt GeoTransform) IsNorthUp() bool {
	return gt[2] == 0 && gt[4] == 0
}

// WorldToPixel applies a matrix returned by ToPixel to a world point.
func WorldToPixel(m matrix.Matrix, x, y float64) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*x + m[2]*y + m[4],
		Y: m[1]*x + m[3]*y + m[5],
	}
}
