// Package geom provides the integer and floating-point rectangle, point
// and quadrilateral types used by the compositor draw path, plus the 4x4
// transform helpers built on mgl32.
package geom

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Clamp limits v to the closed interval [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Abs returns the absolute value of v.
func Abs[T constraints.Signed | constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

type Point struct {
	X, Y int
}

type PointF struct {
	X, Y float32
}

func (p PointF) Add(q PointF) PointF { return PointF{p.X + q.X, p.Y + q.Y} }
func (p PointF) Sub(q PointF) PointF { return PointF{p.X - q.X, p.Y - q.Y} }

type Size struct {
	Width, Height int
}

func (s Size) IsEmpty() bool { return s.Width <= 0 || s.Height <= 0 }

type SizeF struct {
	Width, Height float32
}

// Rect is an axis-aligned integer rectangle, origin plus size.
type Rect struct {
	X, Y, Width, Height int
}

func RectFromSize(s Size) Rect { return Rect{0, 0, s.Width, s.Height} }

func (r Rect) Right() int          { return r.X + r.Width }
func (r Rect) Bottom() int         { return r.Y + r.Height }
func (r Rect) Origin() Point       { return Point{r.X, r.Y} }
func (r Rect) Size() Size          { return Size{r.Width, r.Height} }
func (r Rect) BottomRight() Point  { return Point{r.Right(), r.Bottom()} }
func (r Rect) IsEmpty() bool       { return r.Width <= 0 || r.Height <= 0 }
func (r Rect) Contains(o Rect) bool {
	if o.IsEmpty() {
		return true
	}
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

func (r Rect) Intersect(o Rect) Rect {
	x := max(r.X, o.X)
	y := max(r.Y, o.Y)
	right := min(r.Right(), o.Right())
	bottom := min(r.Bottom(), o.Bottom())
	if right <= x || bottom <= y {
		return Rect{}
	}
	return Rect{x, y, right - x, bottom - y}
}

func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	x := min(r.X, o.X)
	y := min(r.Y, o.Y)
	right := max(r.Right(), o.Right())
	bottom := max(r.Bottom(), o.Bottom())
	return Rect{x, y, right - x, bottom - y}
}

// Inset shrinks the rectangle by the given amounts on each side. Negative
// values grow it.
func (r Rect) Inset(left, top, right, bottom int) Rect {
	return Rect{
		X:      r.X + left,
		Y:      r.Y + top,
		Width:  r.Width - left - right,
		Height: r.Height - top - bottom,
	}
}

// RectF is an axis-aligned float rectangle.
type RectF struct {
	X, Y, Width, Height float32
}

func RectFFromRect(r Rect) RectF {
	return RectF{float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height)}
}

func (r RectF) Right() float32        { return r.X + r.Width }
func (r RectF) Bottom() float32       { return r.Y + r.Height }
func (r RectF) Origin() PointF        { return PointF{r.X, r.Y} }
func (r RectF) Center() PointF        { return PointF{r.X + r.Width/2, r.Y + r.Height/2} }
func (r RectF) IsEmpty() bool         { return r.Width <= 0 || r.Height <= 0 }
func (r RectF) BottomRight() PointF   { return PointF{r.Right(), r.Bottom()} }

func (r RectF) Inset(left, top, right, bottom float32) RectF {
	return RectF{
		X:      r.X + left,
		Y:      r.Y + top,
		Width:  r.Width - left - right,
		Height: r.Height - top - bottom,
	}
}

func (r RectF) Union(o RectF) RectF {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	x := min(r.X, o.X)
	y := min(r.Y, o.Y)
	right := max(r.Right(), o.Right())
	bottom := max(r.Bottom(), o.Bottom())
	return RectF{x, y, right - x, bottom - y}
}

// EnclosingRect returns the smallest integer rectangle containing r.
func EnclosingRect(r RectF) Rect {
	x := int(math.Floor(float64(r.X)))
	y := int(math.Floor(float64(r.Y)))
	right := int(math.Ceil(float64(r.Right())))
	bottom := int(math.Ceil(float64(r.Bottom())))
	return Rect{x, y, right - x, bottom - y}
}

// QuadF is a (possibly non-rectangular) quadrilateral. Points are ordered
// clockwise for screen coordinates: P1 top-left, P2 top-right, P3
// bottom-right, P4 bottom-left.
type QuadF struct {
	P1, P2, P3, P4 PointF
}

func QuadFFromRectF(r RectF) QuadF {
	return QuadF{
		P1: PointF{r.X, r.Y},
		P2: PointF{r.Right(), r.Y},
		P3: PointF{r.Right(), r.Bottom()},
		P4: PointF{r.X, r.Bottom()},
	}
}

func (q QuadF) Points() [4]PointF { return [4]PointF{q.P1, q.P2, q.P3, q.P4} }

// IsRectilinear reports whether the quad's edges are axis-aligned.
func (q QuadF) IsRectilinear() bool {
	const eps = 1e-5
	if Abs(q.P1.Y-q.P2.Y) < eps && Abs(q.P2.X-q.P3.X) < eps &&
		Abs(q.P3.Y-q.P4.Y) < eps && Abs(q.P4.X-q.P1.X) < eps {
		return true
	}
	if Abs(q.P1.X-q.P2.X) < eps && Abs(q.P2.Y-q.P3.Y) < eps &&
		Abs(q.P3.X-q.P4.X) < eps && Abs(q.P4.Y-q.P1.Y) < eps {
		return true
	}
	return false
}

// IsCounterClockwise reports whether the points wind counter-clockwise in
// a y-down coordinate system.
func (q QuadF) IsCounterClockwise() bool {
	// Twice the signed area via the shoelace formula; negative means
	// counter-clockwise with y pointing down.
	a := float64(q.P1.X)*float64(q.P2.Y) - float64(q.P2.X)*float64(q.P1.Y) +
		float64(q.P2.X)*float64(q.P3.Y) - float64(q.P3.X)*float64(q.P2.Y) +
		float64(q.P3.X)*float64(q.P4.Y) - float64(q.P4.X)*float64(q.P3.Y) +
		float64(q.P4.X)*float64(q.P1.Y) - float64(q.P1.X)*float64(q.P4.Y)
	return a < 0
}

func (q QuadF) BoundingBox() RectF {
	left := min(q.P1.X, q.P2.X, q.P3.X, q.P4.X)
	top := min(q.P1.Y, q.P2.Y, q.P3.Y, q.P4.Y)
	right := max(q.P1.X, q.P2.X, q.P3.X, q.P4.X)
	bottom := max(q.P1.Y, q.P2.Y, q.P3.Y, q.P4.Y)
	return RectF{left, top, right - left, bottom - top}
}

func (q QuadF) Scale(sx, sy float32) QuadF {
	s := func(p PointF) PointF { return PointF{p.X * sx, p.Y * sy} }
	return QuadF{s(q.P1), s(q.P2), s(q.P3), s(q.P4)}
}

// IsNearestRectWithinDistance reports whether r is within d of the
// integer-aligned rectangle nearest to it, on all four sides.
func IsNearestRectWithinDistance(r RectF, d float32) bool {
	near := func(v float32) bool {
		return Abs(v-float32(math.Round(float64(v)))) <= d
	}
	return near(r.X) && near(r.Y) && near(r.Right()) && near(r.Bottom())
}
