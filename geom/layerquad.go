package geom

import "math"

// AntiAliasingInflateDistance is how far quad edges are pushed outward to
// make room for coverage falloff.
const AntiAliasingInflateDistance = 0.5

// Edge is the signed-distance line equation a*x + b*y + c = 0 of one quad
// edge, normalized so that (a, b) is a unit normal pointing to the quad
// interior. Points inside the quad have positive distance.
type Edge struct {
	A, B, C float32
}

// NewEdge builds the edge through p and q, with the interior to the left
// of the p->q direction in a y-down coordinate system (clockwise winding).
func NewEdge(p, q PointF) Edge {
	if p == q {
		return Edge{}
	}
	e := Edge{
		A: p.Y - q.Y,
		B: q.X - p.X,
		C: p.X*q.Y - q.X*p.Y,
	}
	inv := 1 / float32(math.Hypot(float64(e.A), float64(e.B)))
	e.A *= inv
	e.B *= inv
	e.C *= inv
	return e
}

func (e Edge) Degenerate() bool { return e.A == 0 && e.B == 0 }

// Distance returns the signed distance from p to the edge.
func (e Edge) Distance(p PointF) float32 {
	return e.A*p.X + e.B*p.Y + e.C
}

// Scale multiplies the whole equation; scaling by -1 flips orientation.
func (e Edge) Scale(s float32) Edge {
	return Edge{e.A * s, e.B * s, e.C * s}
}

// Move pushes the edge outward by d, growing the quad.
func (e Edge) Move(d float32) Edge {
	return Edge{e.A, e.B, e.C + d}
}

// Intersect returns the intersection point of two edges. The edges must
// not be parallel.
func (e Edge) Intersect(o Edge) PointF {
	d := e.A*o.B - o.A*e.B
	return PointF{
		X: (e.B*o.C - o.B*e.C) / d,
		Y: (o.A*e.C - e.A*o.C) / d,
	}
}

// LayerQuad is a quad represented by its four edge equations, which makes
// inflation for antialiasing and per-edge substitution cheap.
type LayerQuad struct {
	Left, Top, Right, Bottom Edge
}

func NewLayerQuad(q QuadF) LayerQuad {
	lq := LayerQuad{
		Left:   NewEdge(q.P4, q.P1),
		Top:    NewEdge(q.P1, q.P2),
		Right:  NewEdge(q.P2, q.P3),
		Bottom: NewEdge(q.P3, q.P4),
	}
	if q.IsCounterClockwise() {
		lq = lq.Scale(-1)
	}
	return lq
}

func NewLayerQuadFromEdges(left, top, right, bottom Edge) LayerQuad {
	return LayerQuad{Left: left, Top: top, Right: right, Bottom: bottom}
}

func (lq LayerQuad) Scale(s float32) LayerQuad {
	return LayerQuad{
		Left:   lq.Left.Scale(s),
		Top:    lq.Top.Scale(s),
		Right:  lq.Right.Scale(s),
		Bottom: lq.Bottom.Scale(s),
	}
}

// Inflate moves all four edges outward by d.
func (lq LayerQuad) Inflate(d float32) LayerQuad {
	return LayerQuad{
		Left:   lq.Left.Move(d),
		Top:    lq.Top.Move(d),
		Right:  lq.Right.Move(d),
		Bottom: lq.Bottom.Move(d),
	}
}

// InflateAntiAliasingDistance inflates by the coverage falloff margin.
func (lq LayerQuad) InflateAntiAliasingDistance() LayerQuad {
	return lq.Inflate(AntiAliasingInflateDistance)
}

// ToQuadF reconstructs the corner points by intersecting adjacent edges.
func (lq LayerQuad) ToQuadF() QuadF {
	return QuadF{
		P1: lq.Left.Intersect(lq.Top),
		P2: lq.Top.Intersect(lq.Right),
		P3: lq.Right.Intersect(lq.Bottom),
		P4: lq.Bottom.Intersect(lq.Left),
	}
}

// AppendFloats appends the 12 edge coefficients (top, left, right, bottom;
// 3 floats each) in the order the antialiasing fragment shaders expect.
func (lq LayerQuad) AppendFloats(dst []float32) []float32 {
	for _, e := range [4]Edge{lq.Top, lq.Left, lq.Right, lq.Bottom} {
		dst = append(dst, e.A, e.B, e.C)
	}
	return dst
}
