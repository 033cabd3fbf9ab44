package burn

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/paulmach/orb"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/rasterfold/pkg/grid"
	"github.com/matzehuels/rasterfold/pkg/raster"
)

// Numerical tolerances.
const (
	// horizontalEdgeThreshold is the minimum vertical extent, in pixels,
	// for a polygon edge to contribute coverage.
	horizontalEdgeThreshold = 1e-10

	// touchThreshold is the minimum covered fraction of a pixel for a
	// polygon to count as touching it.
	touchThreshold = 1e-9
)

// edge is a polygon edge in pixel space.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64 // (x1-x0)/(y1-y0)
}

// Native is the pure-Go all-touched burner.
//
// Polygons are scan-converted with an exact-area coverage accumulator
// using the even-odd rule, so holes are respected; a pixel is touched when
// the polygon covers a positive part of its area. Pixels that share only
// an edge or a corner with a polygon are not touched. Polygons with no
// area are burned as their outline.
//
// Line strings mark every pixel their segments pass through and points
// mark the pixel containing them. A point on a pixel boundary belongs to
// the pixel on its right (or below, in row order).
//
// Coordinates are mapped to pixel space with the inverse of the model's
// geotransform; no reprojection is done.
//
// A Native burner reuses internal buffers and is not safe for concurrent
// use.
type Native struct {
	toPixel matrix.Matrix
	clip    rect.Rect
	width   int
	height  int

	edges     []edge
	activeIdx []int
	cover     []float64
	area      []float64
}

var _ Burner = (*Native)(nil)

// NewNative returns a burner for grids of the model's shape.
func NewNative(m raster.Model) (*Native, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	toPixel, err := m.GeoTransform.ToPixel()
	if err != nil {
		return nil, err
	}
	return &Native{
		toPixel: toPixel,
		clip:    rect.Rect{LLx: 0, LLy: 0, URx: float64(m.Width), URy: float64(m.Height)},
		width:   m.Width,
		height:  m.Height,
	}, nil
}

// Burn implements Burner.
func (n *Native) Burn(g orb.Geometry, dst *grid.Grid) error {
	if dst.Width != n.width || dst.Height != n.height {
		return fmt.Errorf("%w: burner is %dx%d, grid is %dx%d",
			grid.ErrShapeMismatch, n.width, n.height, dst.Width, dst.Height)
	}
	n.burn(g, dst)
	return nil
}

func (n *Native) burn(g orb.Geometry, dst *grid.Grid) {
	switch g := g.(type) {
	case orb.Point:
		n.burnPoint(n.pixel(g), dst)
	case orb.MultiPoint:
		for _, p := range g {
			n.burnPoint(n.pixel(p), dst)
		}
	case orb.LineString:
		n.burnLine(g, dst)
	case orb.MultiLineString:
		for _, ls := range g {
			n.burnLine(ls, dst)
		}
	case orb.Ring:
		n.fillPolygon(orb.Polygon{g}, dst)
	case orb.Polygon:
		n.fillPolygon(g, dst)
	case orb.MultiPolygon:
		for _, p := range g {
			n.fillPolygon(p, dst)
		}
	case orb.Collection:
		for _, c := range g {
			n.burn(c, dst)
		}
	case orb.Bound:
		n.fillPolygon(g.ToPolygon(), dst)
	}
}

func (n *Native) pixel(p orb.Point) vec.Vec2 {
	return raster.WorldToPixel(n.toPixel, p[0], p[1])
}

func (n *Native) burnPoint(v vec.Vec2, dst *grid.Grid) {
	if !finite(v) {
		return
	}
	x, y := math.Floor(v.X), math.Floor(v.Y)
	if x < 0 || y < 0 || x >= float64(n.width) || y >= float64(n.height) {
		return
	}
	dst.Set(int(x), int(y), 1)
}

func (n *Native) burnLine(ls orb.LineString, dst *grid.Grid) {
	switch len(ls) {
	case 0:
		return
	case 1:
		n.burnPoint(n.pixel(ls[0]), dst)
		return
	}
	a := n.pixel(ls[0])
	for _, p := range ls[1:] {
		b := n.pixel(p)
		n.burnSegment(a, b, dst)
		a = b
	}
}

// burnSegment marks every cell the segment a-b passes through, walking the
// grid one cell boundary at a time.
func (n *Native) burnSegment(a, b vec.Vec2, dst *grid.Grid) {
	a, b, ok := clipSegment(a, b, n.clip)
	if !ok {
		return
	}

	x, y := n.cell(a)
	ex, ey := n.cell(b)
	d := b.Sub(a)
	stepX, tMaxX, tDeltaX := axisStep(a.X, d.X, x)
	stepY, tMaxY, tDeltaY := axisStep(a.Y, d.Y, y)

	for {
		dst.Set(x, y, 1)
		if x == ex && y == ey {
			return
		}
		switch {
		case x == ex:
			y += stepY
		case y == ey:
			x += stepX
		case tMaxX < tMaxY:
			x += stepX
			tMaxX += tDeltaX
		default:
			y += stepY
			tMaxY += tDeltaY
		}
	}
}

// cell returns the grid cell containing v, clamped to the grid. Points on
// the right or bottom grid border map to the last column or row.
func (n *Native) cell(v vec.Vec2) (int, int) {
	x := min(max(int(math.Floor(v.X)), 0), n.width-1)
	y := min(max(int(math.Floor(v.Y)), 0), n.height-1)
	return x, y
}

// axisStep returns the walking direction along one axis, the segment
// parameter at which the first cell boundary is crossed and the parameter
// distance between boundaries.
func axisStep(p, d float64, c int) (step int, tMax, tDelta float64) {
	switch {
	case d > 0:
		return 1, (float64(c+1) - p) / d, 1 / d
	case d < 0:
		return -1, (float64(c) - p) / d, -1 / d
	}
	return 0, math.Inf(1), math.Inf(1)
}

// clipSegment clips a-b to r (Liang-Barsky).
func clipSegment(a, b vec.Vec2, r rect.Rect) (vec.Vec2, vec.Vec2, bool) {
	if !finite(a) || !finite(b) {
		return a, b, false
	}
	d := b.Sub(a)
	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return false
			}
			t1 = min(t1, t)
		}
		return true
	}
	if !clip(-d.X, a.X-r.LLx) || !clip(d.X, r.URx-a.X) ||
		!clip(-d.Y, a.Y-r.LLy) || !clip(d.Y, r.URy-a.Y) {
		return a, b, false
	}
	return a.Add(d.Mul(t0)), a.Add(d.Mul(t1)), true
}

func clamp(v, lo, hi float64) float64 { return min(max(v, lo), hi) }

func finite(v vec.Vec2) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func (n *Native) fillPolygon(p orb.Polygon, dst *grid.Grid) {
	n.edges = n.edges[:0]
	for _, ring := range p {
		for i := range ring {
			a := n.pixel(ring[i])
			b := n.pixel(ring[(i+1)%len(ring)])
			n.addEdge(a, b)
		}
	}

	if len(n.edges) == 0 {
		for _, ring := range p {
			n.burnLine(orb.LineString(ring), dst)
		}
		return
	}

	xMinF, xMaxF := math.Inf(1), math.Inf(-1)
	yMinF, yMaxF := math.Inf(1), math.Inf(-1)
	for _, e := range n.edges {
		xMinF = min(xMinF, e.x0, e.x1)
		xMaxF = max(xMaxF, e.x0, e.x1)
		yMinF = min(yMinF, e.y0, e.y1)
		yMaxF = max(yMaxF, e.y0, e.y1)
	}
	xMin := int(math.Floor(clamp(xMinF, n.clip.LLx, n.clip.URx)))
	xMax := int(math.Ceil(clamp(xMaxF, n.clip.LLx, n.clip.URx)))
	yMin := int(math.Floor(clamp(yMinF, n.clip.LLy, n.clip.URy)))
	yMax := int(math.Ceil(clamp(yMaxF, n.clip.LLy, n.clip.URy)))
	if xMin >= xMax || yMin >= yMax {
		return
	}

	touched := false
	n.scan(xMin, xMax, yMin, yMax, func(y, x0 int, coverage []float64) {
		row := dst.Row(y)
		for i, c := range coverage {
			if c > touchThreshold {
				row[x0+i] = 1
				touched = true
			}
		}
	})

	// A polygon whose area falls below the threshold everywhere is a
	// sliver; burn its outline instead.
	if !touched {
		for _, ring := range p {
			n.burnLine(orb.LineString(ring), dst)
		}
	}
}

func (n *Native) addEdge(p0, p1 vec.Vec2) {
	if !finite(p0) || !finite(p1) {
		return
	}
	dy := p1.Y - p0.Y
	if dy > -horizontalEdgeThreshold && dy < horizontalEdgeThreshold {
		return
	}
	n.edges = append(n.edges, edge{
		x0: p0.X, y0: p0.Y,
		x1: p1.X, y1: p1.Y,
		dxdy: (p1.X - p0.X) / dy,
	})
}

// scan walks scanlines yMin..yMax-1 with an active edge list and emits the
// even-odd coverage of columns xMin..xMax-1 for every scanline some edge
// crosses.
func (n *Native) scan(xMin, xMax, yMin, yMax int, emit func(y, xMin int, coverage []float64)) {
	width := xMax - xMin
	n.cover = slices.Grow(n.cover[:0], width)[:width]
	n.area = slices.Grow(n.area[:0], width)[:width]

	slices.SortFunc(n.edges, func(a, b edge) int {
		return cmp.Compare(min(a.y0, a.y1), min(b.y0, b.y1))
	})

	n.activeIdx = n.activeIdx[:0]
	next := 0

	for y := yMin; y < yMax; y++ {
		yf := float64(y)
		yfNext := float64(y + 1)

		for next < len(n.edges) {
			e := &n.edges[next]
			if min(e.y0, e.y1) >= yfNext {
				break
			}
			n.activeIdx = append(n.activeIdx, next)
			next++
		}

		clear(n.cover)
		clear(n.area)
		contributed := false

		for i := 0; i < len(n.activeIdx); {
			e := &n.edges[n.activeIdx[i]]
			if max(e.y0, e.y1) <= yf {
				n.activeIdx[i] = n.activeIdx[len(n.activeIdx)-1]
				n.activeIdx = n.activeIdx[:len(n.activeIdx)-1]
				continue
			}
			if accumulateEdge(e, y, n.cover, n.area, xMin, xMax) {
				contributed = true
			}
			i++
		}

		if !contributed {
			continue
		}
		integrateEvenOdd(n.cover, n.area)
		emit(y, xMin, n.cover)
	}
}

// Coverage accumulation:
//
// For each pixel of a scanline two values are tracked. cover is the
// signed vertical extent of the edges crossing the pixel column; area is
// that extent weighted by the uncovered horizontal fraction of the pixel
// to the right of the crossing. The signed area of the polygon inside
// pixel i is then the sum of cover over all pixels left of i plus area[i].

// accumulateEdge adds the contribution of e within scanline y to cover and
// area, which are indexed by x-xMin. Contributions left of xMin are folded
// into index 0. It reports whether e crossed the scanline at all.
func accumulateEdge(e *edge, y int, cover, area []float64, xMin, xMax int) bool {
	yTop := max(float64(y), min(e.y0, e.y1))
	yBot := min(float64(y+1), max(e.y0, e.y1))
	if yBot <= yTop {
		return false
	}

	sign := 1.0
	if e.y1 < e.y0 {
		sign = -1
	}

	xAtTop := e.x0 + e.dxdy*(yTop-e.y0)
	xAtBot := e.x0 + e.dxdy*(yBot-e.y0)
	xLeft, xRight := min(xAtTop, xAtBot), max(xAtTop, xAtBot)
	pixLeft := int(math.Floor(xLeft))
	pixRight := int(math.Floor(xRight))

	if pixRight < xMin {
		c := sign * (yBot - yTop)
		cover[0] += c
		area[0] += c
		return true
	}
	if pixLeft >= xMax {
		return true
	}

	if pixLeft == pixRight {
		addColumn(e, yTop, yBot, sign, pixLeft, cover, area, xMin)
		return true
	}

	dydx := 1 / e.dxdy

	// The part of the edge left of xMin covers column xMin completely.
	if pixLeft < xMin {
		yAtMin := e.y0 + dydx*(float64(xMin)-e.x0)
		var segDy float64
		if xAtTop < float64(xMin) {
			segDy = min(yAtMin, yBot) - yTop
		} else {
			segDy = yBot - max(yAtMin, yTop)
		}
		if segDy > 0 {
			cover[0] += sign * segDy
			area[0] += sign * segDy
		}
		pixLeft = xMin
	}
	pixRight = min(pixRight, xMax-1)

	for pix := pixLeft; pix <= pixRight; pix++ {
		yAtLeft := e.y0 + dydx*(float64(pix)-e.x0)
		yAtRight := e.y0 + dydx*(float64(pix+1)-e.x0)
		segYMin := max(min(yAtLeft, yAtRight), yTop)
		segYMax := min(max(yAtLeft, yAtRight), yBot)
		segDy := segYMax - segYMin
		if segDy <= 0 {
			continue
		}
		c := sign * segDy
		yMid := (segYMin + segYMax) / 2
		xFrac := e.x0 + e.dxdy*(yMid-e.y0) - float64(pix)

		idx := pix - xMin
		cover[idx] += c
		area[idx] += c * (1 - xFrac)
	}
	return true
}

// addColumn handles an edge segment within a single pixel column.
func addColumn(e *edge, yTop, yBot, sign float64, pix int, cover, area []float64, xMin int) {
	c := sign * (yBot - yTop)
	if pix < xMin {
		cover[0] += c
		area[0] += c
		return
	}
	yMid := (yTop + yBot) / 2
	xFrac := e.x0 + e.dxdy*(yMid-e.y0) - float64(pix)

	idx := pix - xMin
	cover[idx] += c
	area[idx] += c * (1 - xFrac)
}

// integrateEvenOdd turns accumulated cover and area into per-pixel
// coverage under the even-odd rule, in place in cover.
func integrateEvenOdd(cover, area []float64) {
	var accum float64
	for i := range cover {
		raw := math.Abs(accum + area[i])
		accum += cover[i]
		mod := raw - 2*math.Floor(raw/2)
		cover[i] = 1 - math.Abs(1-mod)
	}
}
