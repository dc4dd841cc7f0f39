package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a 4x4 transform applied to quad geometry. The zero value is
// not useful; start from Identity or one of the constructors.
type Transform struct {
	M mgl32.Mat4
}

func Identity() Transform {
	return Transform{mgl32.Ident4()}
}

func Translation(x, y float32) Transform {
	return Transform{mgl32.Translate3D(x, y, 0)}
}

func Scaling(sx, sy float32) Transform {
	return Transform{mgl32.Scale3D(sx, sy, 1)}
}

// OrthoProjection returns the projection used to draw into a target whose
// device coordinates span the given rectangle.
func OrthoProjection(left, right, bottom, top float32) Transform {
	return Transform{mgl32.Ortho(left, right, bottom, top, -1, 1)}
}

// WindowMatrix maps normalized device coordinates onto the given viewport.
func WindowMatrix(x, y, width, height int) Transform {
	t := mgl32.Translate3D(float32(x)+float32(width)/2, float32(y)+float32(height)/2, 0.5)
	s := mgl32.Scale3D(float32(width)/2, float32(height)/2, 0.5)
	return Transform{t.Mul4(s)}
}

func (t Transform) Mul(o Transform) Transform {
	return Transform{t.M.Mul4(o.M)}
}

func (t Transform) Translate(x, y float32) Transform {
	return t.Mul(Translation(x, y))
}

func (t Transform) Scale(sx, sy float32) Transform {
	return t.Mul(Scaling(sx, sy))
}

// FlattenTo2D drops the z component of the transform, mapping everything
// onto the z=0 plane.
func (t Transform) FlattenTo2D() Transform {
	m := t.M
	m.SetRow(2, mgl32.Vec4{0, 0, 1, 0})
	m.SetCol(2, mgl32.Vec4{0, 0, 1, 0})
	return Transform{m}
}

// Invert returns the inverse transform. ok is false when the transform is
// singular, in which case the returned transform is meaningless.
func (t Transform) Invert() (Transform, bool) {
	if mgl32.FloatEqual(t.M.Det(), 0) {
		return Transform{}, false
	}
	return Transform{t.M.Inv()}, true
}

func (t Transform) IsInvertible() bool {
	return !mgl32.FloatEqual(t.M.Det(), 0)
}

// IsIdentityOrIntegerTranslation reports whether the transform only
// translates by whole pixels.
func (t Transform) IsIdentityOrIntegerTranslation() bool {
	id := mgl32.Ident4()
	for i := 0; i < 16; i++ {
		if i == 12 || i == 13 {
			v := t.M[i]
			if v != float32(int(v)) {
				return false
			}
			continue
		}
		if t.M[i] != id[i] {
			return false
		}
	}
	return true
}

// Cols returns the transform in column-major order as GL expects it.
func (t Transform) Cols() [16]float32 {
	return [16]float32(t.M)
}

// MapPoint maps p through the transform with perspective division.
// clipped is true when the point lands behind the w=0 plane; the
// unprojected coordinates are returned in that case.
func (t Transform) MapPoint(p PointF) (_ PointF, clipped bool) {
	v := t.M.Mul4x1(mgl32.Vec4{p.X, p.Y, 0, 1})
	if v.W() <= 0 {
		return PointF{v.X(), v.Y()}, true
	}
	inv := 1 / v.W()
	return PointF{v.X() * inv, v.Y() * inv}, false
}

// MapQuad maps all four corners. clipped is true if any corner clipped.
func (t Transform) MapQuad(q QuadF) (_ QuadF, clipped bool) {
	p1, c1 := t.MapPoint(q.P1)
	p2, c2 := t.MapPoint(q.P2)
	p3, c3 := t.MapPoint(q.P3)
	p4, c4 := t.MapPoint(q.P4)
	return QuadF{p1, p2, p3, p4}, c1 || c2 || c3 || c4
}

// MapClippedRect maps r and returns the bounding box of the result.
func (t Transform) MapClippedRect(r RectF) RectF {
	q, _ := t.MapQuad(QuadFFromRectF(r))
	return q.BoundingBox()
}

// QuadRectTransform composes draw with the matrix that maps the shared
// unit quad geometry (centered at the origin, side 1) onto rect.
func QuadRectTransform(draw Transform, rect RectF) Transform {
	return draw.
		Translate(0.5*rect.Width+rect.X, 0.5*rect.Height+rect.Y).
		Scale(rect.Width, rect.Height)
}
