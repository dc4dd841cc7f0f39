package quads

import "github.com/mosaic-engine/mosaic/geom"

// PassID identifies a render pass within one frame. A RenderPassQuad
// in a later pass names an earlier pass's output texture by its ID.
type PassID struct {
	Layer int
	Index int
}

// RenderPass is an ordered list of quads drawn into one target, either
// the output surface (the last pass) or an intermediate texture.
type RenderPass struct {
	ID PassID
	// OutputRect is the pass's target geometry in its own content space.
	OutputRect geom.Rect
	// DamageRect bounds the content that changed since the last frame.
	DamageRect geom.RectF
	// TransformToRootTarget maps this pass's content space into the
	// root pass's target space.
	TransformToRootTarget geom.Transform
	// HasTransparentBackground is set when the pass composites over
	// unknown content. Background filters are rejected for such passes.
	HasTransparentBackground bool
	// Quads are in back-to-front paint order.
	Quads []Quad
}
