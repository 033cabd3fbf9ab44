// Package raster describes the reference ("model") raster that fixes the
// output grid: its shape, georeferencing and pixel data type.
package raster

import (
	"strings"

	"github.com/paulmach/orb"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
)

// Model is the read-only description of the reference raster.
type Model struct {
	Width        int
	Height       int
	GeoTransform GeoTransform
	// Projection is the spatial reference as WKT, "" when unset.
	Projection string
	// DataType is the GDAL name of the band 1 pixel type, e.g. "Float32".
	// It may name a type outside DataTypes; only the writer cares.
	DataType string
}

// Validate checks that the model describes a usable grid.
func (m Model) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return rferrors.New(rferrors.ErrCodeInvalidInput, "raster has invalid size %dx%d", m.Width, m.Height)
	}
	_, err := m.GeoTransform.ToPixel()
	return err
}

// Pixels returns the number of cells.
func (m Model) Pixels() int { return m.Width * m.Height }

// Bounds returns the world-coordinate extent covered by the grid.
func (m Model) Bounds() orb.Bound {
	w, h := float64(m.Width), float64(m.Height)
	corners := [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}}

	var b orb.Bound
	for i, c := range corners {
		x, y := m.GeoTransform.Apply(c[0], c[1])
		p := orb.Point{x, y}
		if i == 0 {
			b = orb.Bound{Min: p, Max: p}
			continue
		}
		b = b.Extend(p)
	}
	return b
}

// GDAL pixel data type names supported for output bands.
const (
	Byte    = "Byte"
	UInt16  = "UInt16"
	Int16   = "Int16"
	UInt32  = "UInt32"
	Int32   = "Int32"
	Float32 = "Float32"
	Float64 = "Float64"
)

// DataTypes lists the supported data type names.
var DataTypes = []string{Byte, UInt16, Int16, UInt32, Int32, Float32, Float64}

// ParseDataType returns the canonical GDAL spelling of name, matched
// case-insensitively.
func ParseDataType(name string) (string, error) {
	for _, dt := range DataTypes {
		if strings.EqualFold(dt, strings.TrimSpace(name)) {
			return dt, nil
		}
	}
	return "", rferrors.New(rferrors.ErrCodeInvalidInput,
		"unsupported data type %q (must be one of: %s)", name, strings.Join(DataTypes, ", "))
}

// IsInteger reports whether the named data type stores integers. NaN and
// fractional values do not survive a write to such a band.
func IsInteger(dt string) bool {
	switch dt {
	case Byte, UInt16, Int16, UInt32, Int32:
		return true
	}
	return false
}
