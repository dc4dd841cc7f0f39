package mosaic

import (
	"honnef.co/go/safeish"

	"github.com/mosaic-engine/mosaic/geom"
	"github.com/mosaic-engine/mosaic/gl"
	"github.com/mosaic-engine/mosaic/quads"
	"github.com/mosaic-engine/mosaic/shaders"
)

// textureQuadCache batches consecutive texture quads that share a
// program, resource and blend mode into one draw call. Uniform arrays
// carry the per-quad data; a vertex attribute indexes into them.
type textureQuadCache struct {
	program       *shaders.Program
	resource      quads.ResourceID
	premultiplied bool
	needsBlending bool

	matrices      [][16]float32
	uvTransforms  [][4]float32
	vertexOpacity []float32
}

func (c *textureQuadCache) empty() bool { return c.program == nil }

func (c *textureQuadCache) reset() {
	c.program = nil
	c.matrices = c.matrices[:0]
	c.uvTransforms = c.uvTransforms[:0]
	c.vertexOpacity = c.vertexOpacity[:0]
}

func (r *Renderer) enqueueTextureQuad(frame *drawingFrame, quad *quads.TextureQuad) {
	br := quad.Shared.VisibleContentRect.BottomRight()
	kind := shaders.KindTexture
	if !quad.PremultipliedAlpha {
		kind = shaders.KindTextureNonPremultiplied
	}
	prog := r.program(kind, r.texCoordPrecision(geom.Size{Width: br.X, Height: br.Y}))
	if !prog.Initialized() {
		return
	}

	c := &r.batch
	if c.program != prog ||
		c.resource != quad.ResourceID ||
		c.premultiplied != quad.PremultipliedAlpha ||
		c.needsBlending != quad.ShouldDrawWithBlending() ||
		len(c.matrices) >= shaders.MaxBatchQuads {
		r.flushTextureQuadCache(frame)
		c.program = prog
		c.resource = quad.ResourceID
		c.premultiplied = quad.PremultipliedAlpha
		c.needsBlending = quad.ShouldDrawWithBlending()
	}

	uv0, uv1 := quad.UVTopLeft, quad.UVBottomRight
	uv := [4]float32{uv0.X, uv0.Y, uv1.X - uv0.X, uv1.Y - uv0.Y}
	if quad.Flipped {
		// Fold the vertical flip into the uv transform instead of
		// keeping a separate program variant.
		uv[1] = 1 - uv0.Y
		uv[3] = uv0.Y - uv1.Y
	}
	c.uvTransforms = append(c.uvTransforms, uv)

	opacity := quad.Opacity()
	for _, v := range quad.VertexOpacity {
		c.vertexOpacity = append(c.vertexOpacity, v*opacity)
	}

	m := frame.projection.Mul(geom.QuadRectTransform(quad.Shared.Transform, geom.RectFFromRect(quad.Rect))).Cols()
	c.matrices = append(c.matrices, m)
}

// flushTextureQuadCache draws the accumulated texture quads in one
// call and resets the cache. A no-op when nothing is queued.
func (r *Renderer) flushTextureQuadCache(frame *drawingFrame) {
	c := &r.batch
	if c.empty() {
		return
	}

	r.setBlendEnabled(c.needsBlending)
	r.useProgram(c.program.Handle())
	ctx := r.cb.Ctx
	ctx.Uniform1i(c.program.Locs.Sampler, 0)

	if !r.bindReadTexture(c.resource, gl.Texture2D, gl.Linear) {
		c.reset()
		return
	}
	defer r.resources.UnlockRead(c.resource)

	if !c.premultiplied {
		// Straight-alpha texels premultiply in the shader; keep the
		// destination alpha untouched so it stays at 1.
		ctx.BlendFuncSeparate(gl.SrcAlpha, gl.OneMinusSrcAlpha, gl.Zero, gl.One)
	}

	ctx.UniformMatrix4fv(c.program.Locs.Matrix, safeish.SliceCast[[]float32](c.matrices))
	ctx.Uniform4fv(c.program.Locs.TexTransform, safeish.SliceCast[[]float32](c.uvTransforms))
	ctx.Uniform1fv(c.program.Locs.Opacity, c.vertexOpacity)

	r.cb.DrawElements(gl.Triangles, 6*len(c.matrices), gl.UnsignedShort, 0)

	if !c.premultiplied {
		ctx.BlendFunc(gl.One, gl.OneMinusSrcAlpha)
	}

	c.reset()
}
