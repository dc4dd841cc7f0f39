// Package quads defines the drawable primitives handed to the renderer:
// typed quads grouped into render passes. Quads are produced by an
// upstream layer system and are read-only to the draw path.
package quads

import (
	"fmt"
	"image"

	"github.com/mosaic-engine/mosaic/filters"
	"github.com/mosaic-engine/mosaic/geom"
)

// ResourceID names a texture in the external resource table.
type ResourceID uint32

// Color is a non-premultiplied RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Premultiplied returns the color with its alpha scaled by opacity and
// the color channels premultiplied by the resulting alpha, as four
// floats in [0, 1].
func (c Color) Premultiplied(opacity float32) [4]float32 {
	alpha := float32(c.A) / 255 * opacity
	return [4]float32{
		float32(c.R) / 255 * alpha,
		float32(c.G) / 255 * alpha,
		float32(c.B) / 255 * alpha,
		alpha,
	}
}

// SharedState carries per-layer attributes shared by every quad the
// layer emitted. Quads from one layer point at one SharedState.
type SharedState struct {
	// Transform maps quad-local content space into target space.
	Transform geom.Transform
	// ContentBounds is the full size of the layer's content. Quad rects
	// touching its boundary are the layer's true outer edges.
	ContentBounds      geom.Size
	VisibleContentRect geom.Rect
	ClipRect           geom.Rect
	IsClipped          bool
	Opacity            float32
}

// Base carries the geometry common to all quad materials.
type Base struct {
	Shared *SharedState
	// Rect is the quad's geometry in quad-local content space.
	Rect geom.Rect
	// OpaqueRect is the sub-rect known to be fully opaque.
	OpaqueRect geom.Rect
	// VisibleRect is the sub-rect that survives occlusion culling.
	// It is always contained in Rect.
	VisibleRect   geom.Rect
	NeedsBlending bool
}

func (b *Base) base() *Base { return b }

// Opacity returns the layer opacity this quad is drawn with.
func (b *Base) Opacity() float32 { return b.Shared.Opacity }

// ShouldDrawWithBlending reports whether this quad needs the blend
// stage enabled: translucent opacity, per-quad blending, or visible
// pixels outside the opaque region.
func (b *Base) ShouldDrawWithBlending() bool {
	return b.NeedsBlending || b.Shared.Opacity < 1 || !b.OpaqueRect.Contains(b.VisibleRect)
}

// IsLeftEdge reports whether the quad's left edge is the layer's true
// left boundary rather than an interior seam between adjacent quads.
func (b *Base) IsLeftEdge() bool { return b.Rect.X == 0 }

func (b *Base) IsTopEdge() bool { return b.Rect.Y == 0 }

func (b *Base) IsRightEdge() bool { return b.Rect.Right() == b.Shared.ContentBounds.Width }

func (b *Base) IsBottomEdge() bool { return b.Rect.Bottom() == b.Shared.ContentBounds.Height }

// Validate reports a broken quad invariant, or nil. Well-formed passes
// never produce one; callers treat a non-nil result as a programmer
// error.
func (b *Base) Validate() error {
	if b.Shared == nil {
		return fmt.Errorf("quad %v has no shared state", b.Rect)
	}
	if !b.Rect.Contains(b.VisibleRect) {
		return fmt.Errorf("visible rect %v not contained in quad rect %v", b.VisibleRect, b.Rect)
	}
	return nil
}

// Quad is one drawable primitive. The concrete type selects the draw
// routine. The set of implementations is closed; dispatching code type
// switches over it exhaustively.
type Quad interface {
	base() *Base
}

// BaseOf returns the shared geometry of any quad.
func BaseOf(q Quad) *Base { return q.base() }

// CheckerboardQuad stands in for content that has not been rastered
// yet. It draws a two-tone checker pattern in the given color.
type CheckerboardQuad struct {
	Base
	Color Color
}

// DebugBorderQuad outlines a layer for debug visualization.
type DebugBorderQuad struct {
	Base
	Color Color
	// Width is the border width in pixels.
	Width int
}

// IOSurfaceOrientation selects the vertical orientation of an
// IOSurface-backed texture.
type IOSurfaceOrientation int

const (
	IOSurfaceFlipped IOSurfaceOrientation = iota
	IOSurfaceUnflipped
)

// IOSurfaceQuad samples a rectangle texture shared from another
// process. Texture coordinates are unnormalized.
type IOSurfaceQuad struct {
	Base
	SurfaceSize geom.Size
	Orientation IOSurfaceOrientation
	ResourceID  ResourceID
}

// Picture rasterizes recorded drawing commands on demand into dst,
// a premultiplied-alpha buffer.
type Picture interface {
	Raster(dst *image.RGBA, contentRect geom.Rect, contentsScale float32)
}

// PictureQuad carries unrastered content that the renderer rasterizes
// on the CPU and uploads at draw time.
type PictureQuad struct {
	Base
	TexCoordRect  geom.RectF
	TextureSize   geom.Size
	ContentRect   geom.Rect
	ContentsScale float32
	Picture       Picture
}

// RenderPassQuad composites the output texture of an earlier pass,
// optionally through a mask and a filter chain.
type RenderPassQuad struct {
	Base
	PassID            PassID
	IsReplica         bool
	MaskResourceID    ResourceID
	MaskUVRect        geom.RectF
	Filters           filters.Chain
	BackgroundFilters filters.Chain
}

// SolidColorQuad fills its rect with one color.
type SolidColorQuad struct {
	Base
	Color Color
}

// StreamVideoQuad samples an external (stream) texture through a
// texture-space matrix supplied by the video source.
type StreamVideoQuad struct {
	Base
	ResourceID ResourceID
	Matrix     geom.Transform
}

// TextureQuad samples a plain 2D texture. Consecutive TextureQuads
// sharing a resource and blend mode are batched into one draw call.
type TextureQuad struct {
	Base
	ResourceID         ResourceID
	PremultipliedAlpha bool
	UVTopLeft          geom.PointF
	UVBottomRight      geom.PointF
	// VertexOpacity gives per-corner opacity in the order top-left,
	// bottom-left, bottom-right, top-right.
	VertexOpacity [4]float32
	Flipped       bool
}

// TileQuad samples a sub-rect of a tiled layer's texture. Adjacent
// tiles from one layer share seam edges that must stay hard under
// antialiasing.
type TileQuad struct {
	Base
	ResourceID      ResourceID
	TexCoordRect    geom.RectF
	TextureSize     geom.Size
	SwizzleContents bool
}

// YUVVideoQuad samples three planar textures and converts to RGB in
// the fragment stage.
type YUVVideoQuad struct {
	Base
	TexScale         geom.SizeF
	YPlaneResourceID ResourceID
	UPlaneResourceID ResourceID
	VPlaneResourceID ResourceID
}
