package quads

import (
	"testing"

	"github.com/mosaic-engine/mosaic/geom"
)

func opaqueBase(rect geom.Rect, bounds geom.Size) Base {
	return Base{
		Shared: &SharedState{
			Transform:          geom.Identity(),
			ContentBounds:      bounds,
			VisibleContentRect: geom.RectFromSize(bounds),
			Opacity:            1,
		},
		Rect:        rect,
		OpaqueRect:  rect,
		VisibleRect: rect,
	}
}

func TestColorPremultiplied(t *testing.T) {
	tests := []struct {
		name    string
		c       Color
		opacity float32
		want    [4]float32
	}{
		{"opaque white", Color{255, 255, 255, 255}, 1, [4]float32{1, 1, 1, 1}},
		{"half opacity", Color{255, 255, 255, 255}, 0.5, [4]float32{0.5, 0.5, 0.5, 0.5}},
		{"translucent color", Color{255, 0, 0, 128}, 1, [4]float32{128.0 / 255, 0, 0, 128.0 / 255}},
		{"transparent", Color{255, 255, 255, 0}, 1, [4]float32{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.c.Premultiplied(tt.opacity)
			for i := range tt.want {
				if d := got[i] - tt.want[i]; d > 1e-6 || d < -1e-6 {
					t.Errorf("component %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestShouldDrawWithBlending(t *testing.T) {
	bounds := geom.Size{Width: 100, Height: 100}
	rect := geom.Rect{Width: 100, Height: 100}

	b := opaqueBase(rect, bounds)
	if b.ShouldDrawWithBlending() {
		t.Error("fully opaque quad wants blending")
	}

	b = opaqueBase(rect, bounds)
	b.Shared.Opacity = 0.5
	if !b.ShouldDrawWithBlending() {
		t.Error("translucent layer does not want blending")
	}

	b = opaqueBase(rect, bounds)
	b.NeedsBlending = true
	if !b.ShouldDrawWithBlending() {
		t.Error("per-quad blending flag ignored")
	}

	b = opaqueBase(rect, bounds)
	b.OpaqueRect = geom.Rect{Width: 50, Height: 100}
	if !b.ShouldDrawWithBlending() {
		t.Error("partially opaque quad does not want blending")
	}
}

func TestLayerEdgeDetection(t *testing.T) {
	bounds := geom.Size{Width: 100, Height: 100}
	tests := []struct {
		name                     string
		rect                     geom.Rect
		left, top, right, bottom bool
	}{
		{"full layer", geom.Rect{Width: 100, Height: 100}, true, true, true, true},
		{"top left tile", geom.Rect{Width: 50, Height: 50}, true, true, false, false},
		{"bottom right tile", geom.Rect{X: 50, Y: 50, Width: 50, Height: 50}, false, false, true, true},
		{"interior tile", geom.Rect{X: 25, Y: 25, Width: 50, Height: 50}, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := opaqueBase(tt.rect, bounds)
			if got := b.IsLeftEdge(); got != tt.left {
				t.Errorf("IsLeftEdge = %v, want %v", got, tt.left)
			}
			if got := b.IsTopEdge(); got != tt.top {
				t.Errorf("IsTopEdge = %v, want %v", got, tt.top)
			}
			if got := b.IsRightEdge(); got != tt.right {
				t.Errorf("IsRightEdge = %v, want %v", got, tt.right)
			}
			if got := b.IsBottomEdge(); got != tt.bottom {
				t.Errorf("IsBottomEdge = %v, want %v", got, tt.bottom)
			}
		})
	}
}

func TestBaseValidate(t *testing.T) {
	bounds := geom.Size{Width: 100, Height: 100}
	good := opaqueBase(geom.Rect{Width: 100, Height: 100}, bounds)
	if err := good.Validate(); err != nil {
		t.Errorf("well-formed quad failed validation: %v", err)
	}

	noShared := good
	noShared.Shared = nil
	if noShared.Validate() == nil {
		t.Error("quad with no shared state passed validation")
	}

	escaped := opaqueBase(geom.Rect{Width: 50, Height: 50}, bounds)
	escaped.VisibleRect = geom.Rect{Width: 80, Height: 80}
	if escaped.Validate() == nil {
		t.Error("visible rect outside quad rect passed validation")
	}
}

func TestBaseOf(t *testing.T) {
	bounds := geom.Size{Width: 10, Height: 10}
	quad := &SolidColorQuad{Base: opaqueBase(geom.Rect{Width: 10, Height: 10}, bounds)}
	if BaseOf(quad) != &quad.Base {
		t.Error("BaseOf did not return the embedded base")
	}
}
