package geom

import (
	"math"
	"testing"
)

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"overlap", Rect{0, 0, 10, 10}, Rect{5, 5, 10, 10}, Rect{5, 5, 5, 5}},
		{"contained", Rect{0, 0, 10, 10}, Rect{2, 2, 4, 4}, Rect{2, 2, 4, 4}},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 5, 5}, Rect{}},
		{"touching edges", Rect{0, 0, 10, 10}, Rect{10, 0, 5, 5}, Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersect(tt.b); got != tt.want {
				t.Errorf("%+v.Intersect(%+v) = %+v, want %+v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{20, 5, 10, 10}
	want := Rect{0, 0, 30, 15}
	if got := a.Union(b); got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("empty.Union(b) = %+v, want %+v", got, b)
	}
	if got := a.Union(Rect{}); got != a {
		t.Errorf("a.Union(empty) = %+v, want %+v", got, a)
	}
}

func TestRectContains(t *testing.T) {
	outer := Rect{0, 0, 10, 10}
	if !outer.Contains(Rect{2, 2, 4, 4}) {
		t.Error("inner rect not contained")
	}
	if outer.Contains(Rect{8, 8, 4, 4}) {
		t.Error("overflowing rect reported contained")
	}
	if !outer.Contains(Rect{}) {
		t.Error("empty rect not contained")
	}
}

func TestEnclosingRect(t *testing.T) {
	tests := []struct {
		in   RectF
		want Rect
	}{
		{RectF{0.2, 0.8, 9.5, 9.5}, Rect{0, 0, 10, 11}},
		{RectF{-1.5, -1.5, 3, 3}, Rect{-2, -2, 4, 4}},
		{RectF{1, 1, 2, 2}, Rect{1, 1, 2, 2}},
	}
	for _, tt := range tests {
		if got := EnclosingRect(tt.in); got != tt.want {
			t.Errorf("EnclosingRect(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestQuadFRectilinear(t *testing.T) {
	rect := QuadFFromRectF(RectF{0, 0, 10, 10})
	if !rect.IsRectilinear() {
		t.Error("axis-aligned rect quad not rectilinear")
	}
	rotated90 := QuadF{
		P1: PointF{10, 0}, P2: PointF{10, 10},
		P3: PointF{0, 10}, P4: PointF{0, 0},
	}
	if !rotated90.IsRectilinear() {
		t.Error("90 degree rotation not rectilinear")
	}
	sheared := QuadF{
		P1: PointF{1, 0}, P2: PointF{11, 1},
		P3: PointF{10, 11}, P4: PointF{0, 10},
	}
	if sheared.IsRectilinear() {
		t.Error("sheared quad reported rectilinear")
	}
}

func TestQuadFWinding(t *testing.T) {
	cw := QuadFFromRectF(RectF{0, 0, 10, 10})
	if cw.IsCounterClockwise() {
		t.Error("screen-space rect quad reported counter-clockwise")
	}
	ccw := QuadF{P1: cw.P4, P2: cw.P3, P3: cw.P2, P4: cw.P1}
	if !ccw.IsCounterClockwise() {
		t.Error("reversed quad not counter-clockwise")
	}
}

func TestQuadFBoundingBox(t *testing.T) {
	q := QuadF{
		P1: PointF{5, 0}, P2: PointF{10, 5},
		P3: PointF{5, 10}, P4: PointF{0, 5},
	}
	want := RectF{0, 0, 10, 10}
	if got := q.BoundingBox(); got != want {
		t.Errorf("BoundingBox = %+v, want %+v", got, want)
	}
}

func TestIsNearestRectWithinDistance(t *testing.T) {
	const d = 1.0 / 1024
	tests := []struct {
		name string
		r    RectF
		want bool
	}{
		{"exact", RectF{1, 2, 3, 4}, true},
		{"tiny offset", RectF{1 + d/2, 2, 3, 4}, true},
		{"half pixel", RectF{1.5, 2, 3, 4}, false},
		{"bad extent", RectF{1, 2, 3.25, 4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNearestRectWithinDistance(tt.r, d); got != tt.want {
				t.Errorf("IsNearestRectWithinDistance(%+v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("Clamp(5, 0, 10) = %d", got)
	}
	if got := Clamp(-1, 0, 10); got != 0 {
		t.Errorf("Clamp(-1, 0, 10) = %d", got)
	}
	if got := Clamp(1.5, 0.0, 1.0); got != 1.0 {
		t.Errorf("Clamp(1.5, 0, 1) = %v", got)
	}
}

func TestRectFInset(t *testing.T) {
	r := RectF{0, 0, 10, 10}
	got := r.Inset(1, 2, 3, 4)
	want := RectF{1, 2, 6, 4}
	if got != want {
		t.Errorf("Inset = %+v, want %+v", got, want)
	}
}

func TestRectInsetGrowsWithNegativeValues(t *testing.T) {
	r := Rect{10, 10, 10, 10}
	got := r.Inset(-2, -2, -2, -2)
	want := Rect{8, 8, 14, 14}
	if got != want {
		t.Errorf("Inset = %+v, want %+v", got, want)
	}
}

func almostEqual(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}
