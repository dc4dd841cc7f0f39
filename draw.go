package mosaic

import (
	"fmt"

	"github.com/mosaic-engine/mosaic/geom"
	"github.com/mosaic-engine/mosaic/gl"
	"github.com/mosaic-engine/mosaic/quads"
	"github.com/mosaic-engine/mosaic/shaders"
)

// antiAliasingEpsilon is how far a device-space rect may sit from
// integer alignment before edge filtering becomes visible.
const antiAliasingEpsilon = 1.0 / 1024.0

// doDrawQuad dispatches one quad to its material's draw routine.
// Texture quads accumulate in the batch cache; everything else flushes
// the cache first so paint order is preserved.
func (r *Renderer) doDrawQuad(frame *drawingFrame, q quads.Quad) {
	if r.opts.DebugChecks {
		if err := quads.BaseOf(q).Validate(); err != nil {
			panic(err)
		}
	}
	if _, batched := q.(*quads.TextureQuad); !batched {
		r.flushTextureQuadCache(frame)
	}
	switch q := q.(type) {
	case *quads.CheckerboardQuad:
		r.drawCheckerboardQuad(frame, q)
	case *quads.DebugBorderQuad:
		r.drawDebugBorderQuad(frame, q)
	case *quads.IOSurfaceQuad:
		r.drawIOSurfaceQuad(frame, q)
	case *quads.PictureQuad:
		r.drawPictureQuad(frame, q)
	case *quads.RenderPassQuad:
		r.drawRenderPassQuad(frame, q)
	case *quads.SolidColorQuad:
		r.drawSolidColorQuad(frame, q)
	case *quads.StreamVideoQuad:
		r.drawStreamVideoQuad(frame, q)
	case *quads.TextureQuad:
		r.enqueueTextureQuad(frame, q)
	case *quads.TileQuad:
		r.drawContentQuad(frame, &q.Base, q.ResourceID, q.TexCoordRect, q.TextureSize, q.SwizzleContents)
	case *quads.YUVVideoQuad:
		r.drawYUVVideoQuad(frame, q)
	default:
		panic(fmt.Sprintf("mosaic: unknown quad material %T", q))
	}
}

// bindReadTexture read-locks the resource, binds its texture on the
// active unit and sets the filter mode. The caller unlocks after its
// draw has been issued.
func (r *Renderer) bindReadTexture(id quads.ResourceID, target, filter gl.Enum) bool {
	tex, err := r.resources.LockForRead(id)
	if err != nil {
		Logger().Error("resource lock failed", "resource", uint32(id), "err", err)
		return false
	}
	ctx := r.cb.Ctx
	ctx.BindTexture(target, tex)
	if target != gl.TextureExternal {
		ctx.TexParameteri(target, gl.TextureMinFilter, int(filter))
		ctx.TexParameteri(target, gl.TextureMagFilter, int(filter))
	}
	return true
}

func (r *Renderer) setShaderQuad(loc int32, q geom.QuadF) {
	if loc == -1 {
		return
	}
	// Corner order matches the vertex buffer: top-left, bottom-left,
	// bottom-right, top-right.
	points := [8]float32{
		q.P1.X, q.P1.Y,
		q.P4.X, q.P4.Y,
		q.P3.X, q.P3.Y,
		q.P2.X, q.P2.Y,
	}
	r.cb.Ctx.Uniform2fv(loc, points[:])
}

func (r *Renderer) setShaderOpacity(loc int32, opacity float32) {
	if loc == -1 {
		return
	}
	r.cb.Ctx.Uniform1f(loc, opacity)
}

// drawQuadGeometry issues one quad: upload the combined matrix that
// maps the shared unit quad onto rect, then draw its six indices.
func (r *Renderer) drawQuadGeometry(frame *drawingFrame, draw geom.Transform, rect geom.RectF, matrixLoc int32) {
	m := frame.projection.Mul(geom.QuadRectTransform(draw, rect)).Cols()
	r.cb.Ctx.UniformMatrix4fv(matrixLoc, m[:])
	r.cb.DrawElements(gl.Triangles, 6, gl.UnsignedShort, 0)
}

// sharedGeometryQuad is the unit quad the vertex buffer holds, in its
// own centered coordinates.
func sharedGeometryQuad() geom.QuadF {
	return geom.QuadFFromRectF(geom.RectF{X: -0.5, Y: -0.5, Width: 1, Height: 1})
}

// setupQuadForAntialiasing decides whether the quad takes the
// antialiased path. When it does, it returns replacement local-space
// geometry inflated to carry the coverage falloff, plus the 24 edge
// coefficients for the edge uniform: the inflated layer boundary
// followed by the inflated bounding box.
func setupQuadForAntialiasing(deviceTransform geom.Transform, base *quads.Base) (local geom.QuadF, edge [24]float32, ok bool) {
	tileRect := base.VisibleRect

	layerQuad, clipped := deviceTransform.MapQuad(geom.QuadFFromRectF(geom.RectFFromRect(base.Shared.VisibleContentRect)))

	integerAligned := layerQuad.IsRectilinear() &&
		geom.IsNearestRectWithinDistance(layerQuad.BoundingBox(), antiAliasingEpsilon)
	isEdge := base.IsLeftEdge() || base.IsTopEdge() || base.IsRightEdge() || base.IsBottomEdge()
	if clipped || integerAligned || !isEdge {
		return geom.QuadF{}, edge, false
	}

	layerBounds := geom.NewLayerQuad(geom.QuadFFromRectF(layerQuad.BoundingBox())).InflateAntiAliasingDistance()
	layerEdges := geom.NewLayerQuad(layerQuad).InflateAntiAliasingDistance()

	coeffs := layerEdges.AppendFloats(edge[:0])
	layerBounds.AppendFloats(coeffs)

	corners, _ := deviceTransform.MapQuad(geom.QuadFFromRectF(geom.RectFFromRect(tileRect)))
	deviceQuad := geom.NewLayerQuad(corners)

	// Layer-boundary edges take the inflated equations so coverage
	// falls off past them. Interior seams between adjacent quads keep
	// their exact device positions and stay hard.
	if base.IsTopEdge() && tileRect.Y == base.Rect.Y {
		deviceQuad.Top = layerEdges.Top
	}
	if base.IsLeftEdge() && tileRect.X == base.Rect.X {
		deviceQuad.Left = layerEdges.Left
	}
	if base.IsRightEdge() && tileRect.Right() == base.Rect.Right() {
		deviceQuad.Right = layerEdges.Right
	}
	if base.IsBottomEdge() && tileRect.Bottom() == base.Rect.Bottom() {
		deviceQuad.Bottom = layerEdges.Bottom
	}

	inverse, invertible := deviceTransform.Invert()
	if !invertible {
		return geom.QuadF{}, edge, false
	}
	// Inflation may push corners across the w=0 plane; the clipped
	// mapping is still usable as draw geometry.
	local, _ = inverse.MapQuad(deviceQuad.ToQuadF())
	return local, edge, true
}

func (r *Renderer) drawCheckerboardQuad(frame *drawingFrame, quad *quads.CheckerboardQuad) {
	r.setBlendEnabled(quad.ShouldDrawWithBlending())

	prog := r.program(shaders.KindCheckerboard, shaders.PrecisionNA)
	if !prog.Initialized() {
		return
	}
	r.useProgram(prog.Handle())
	ctx := r.cb.Ctx

	ctx.Uniform4f(prog.Locs.Color,
		float32(quad.Color.R)/255,
		float32(quad.Color.G)/255,
		float32(quad.Color.B)/255,
		1)

	const checkerWidth = 16
	tile := quad.Rect
	// The pattern stays anchored to layer space so scrolling does not
	// make it swim.
	ctx.Uniform4f(prog.Locs.TexTransform,
		float32(tile.X%checkerWidth), float32(tile.Y%checkerWidth),
		float32(tile.Width), float32(tile.Height))
	ctx.Uniform1f(prog.Locs.Frequency, 1.0/checkerWidth)

	r.setShaderOpacity(prog.Locs.Alpha, quad.Opacity())
	r.drawQuadGeometry(frame, quad.Shared.Transform, geom.RectFFromRect(quad.Rect), prog.Locs.Matrix)
}

func (r *Renderer) drawDebugBorderQuad(frame *drawingFrame, quad *quads.DebugBorderQuad) {
	r.setBlendEnabled(quad.ShouldDrawWithBlending())

	prog := r.program(shaders.KindDebugBorder, shaders.PrecisionNA)
	if !prog.Initialized() {
		return
	}
	r.useProgram(prog.Handle())
	ctx := r.cb.Ctx

	// The full quad rect rather than the visible rect, so borders do
	// not move with partial swaps.
	m := frame.projection.Mul(geom.QuadRectTransform(quad.Shared.Transform, geom.RectFFromRect(quad.Rect))).Cols()
	ctx.UniformMatrix4fv(prog.Locs.Matrix, m[:])

	color := quad.Color.Premultiplied(1)
	ctx.Uniform4f(prog.Locs.Color, color[0], color[1], color[2], color[3])
	ctx.LineWidth(float32(quad.Width))

	// The first four indices double as a line loop around the quad.
	r.cb.DrawElements(gl.LineLoop, 4, gl.UnsignedShort, 0)
}

func (r *Renderer) drawSolidColorQuad(frame *drawingFrame, quad *quads.SolidColorQuad) {
	r.setBlendEnabled(quad.ShouldDrawWithBlending())
	tileRect := quad.VisibleRect
	if tileRect.IsEmpty() {
		return
	}

	deviceTransform := frame.window.Mul(frame.projection).Mul(quad.Shared.Transform).FlattenTo2D()
	if !deviceTransform.IsInvertible() {
		return
	}

	localQuad := geom.QuadFFromRectF(geom.RectFFromRect(tileRect))
	aaQuad, edge, useAA := setupQuadForAntialiasing(deviceTransform, &quad.Base)
	if useAA {
		localQuad = aaQuad
	}

	kind := shaders.KindSolidColor
	if useAA {
		kind = shaders.KindSolidColorAA
	}
	prog := r.program(kind, shaders.PrecisionNA)
	if !prog.Initialized() {
		return
	}
	r.useProgram(prog.Handle())
	ctx := r.cb.Ctx

	color := quad.Color.Premultiplied(quad.Opacity())
	ctx.Uniform4f(prog.Locs.Color, color[0], color[1], color[2], color[3])
	if useAA {
		ctx.Uniform3fv(prog.Locs.Edge, edge[:])
	}

	r.setBlendEnabled(quad.ShouldDrawWithBlending() || useAA)

	localQuad = localQuad.Scale(1/float32(tileRect.Width), 1/float32(tileRect.Height))
	r.setShaderQuad(prog.Locs.Quad, localQuad)

	// The matrix maps the centered rect; the quad uniform carries the
	// actual geometry, normalized to it.
	centered := geom.RectF{
		X:      -0.5 * float32(tileRect.Width),
		Y:      -0.5 * float32(tileRect.Height),
		Width:  float32(tileRect.Width),
		Height: float32(tileRect.Height),
	}
	r.drawQuadGeometry(frame, quad.Shared.Transform, centered, prog.Locs.Matrix)
}

// drawContentQuad draws tiled (or rastered picture) content: one
// sub-rect of a layer texture, with texel clamping so edge inflation
// never samples a neighboring tile.
func (r *Renderer) drawContentQuad(frame *drawingFrame, base *quads.Base, resource quads.ResourceID, texCoordRect geom.RectF, textureSize geom.Size, swizzle bool) {
	tileRect := base.VisibleRect
	if tileRect.IsEmpty() || texCoordRect.IsEmpty() {
		return
	}

	texToGeomScaleX := float32(base.Rect.Width) / texCoordRect.Width
	texToGeomScaleY := float32(base.Rect.Height) / texCoordRect.Height

	// texCoordRect corresponds to the full quad rect; shrink it to
	// match the visible sub-rect.
	texCoordRect = texCoordRect.Inset(
		float32(tileRect.X-base.Rect.X)/texToGeomScaleX,
		float32(tileRect.Y-base.Rect.Y)/texToGeomScaleY,
		float32(base.Rect.Right()-tileRect.Right())/texToGeomScaleX,
		float32(base.Rect.Bottom()-tileRect.Bottom())/texToGeomScaleY)

	// Deflate the sampled region half a texel (minus epsilon for
	// one-texel content) on each side. The vertex stage maps the clamp
	// region to the unit square; the fragment stage clamps to it and
	// maps into normalized texture space.
	clampGeomRect := geom.RectFFromRect(tileRect)
	clampTexRect := texCoordRect
	texClampX := min(0.5, 0.5*clampTexRect.Width-antiAliasingEpsilon)
	texClampY := min(0.5, 0.5*clampTexRect.Height-antiAliasingEpsilon)
	geomClampX := min(texClampX*texToGeomScaleX, 0.5*clampGeomRect.Width-antiAliasingEpsilon)
	geomClampY := min(texClampY*texToGeomScaleY, 0.5*clampGeomRect.Height-antiAliasingEpsilon)
	clampGeomRect = clampGeomRect.Inset(geomClampX, geomClampY, geomClampX, geomClampY)
	clampTexRect = clampTexRect.Inset(texClampX, texClampY, texClampX, texClampY)

	vertexTexTranslateX := -clampGeomRect.X / clampGeomRect.Width
	vertexTexTranslateY := -clampGeomRect.Y / clampGeomRect.Height
	vertexTexScaleX := float32(tileRect.Width) / clampGeomRect.Width
	vertexTexScaleY := float32(tileRect.Height) / clampGeomRect.Height

	fragmentTexTranslateX := clampTexRect.X / float32(textureSize.Width)
	fragmentTexTranslateY := clampTexRect.Y / float32(textureSize.Height)
	fragmentTexScaleX := clampTexRect.Width / float32(textureSize.Width)
	fragmentTexScaleY := clampTexRect.Height / float32(textureSize.Height)

	deviceTransform := frame.window.Mul(frame.projection).Mul(base.Shared.Transform).FlattenTo2D()
	if !deviceTransform.IsInvertible() {
		return
	}

	localQuad := geom.QuadFFromRectF(geom.RectFFromRect(tileRect))
	aaQuad, edge, useAA := setupQuadForAntialiasing(deviceTransform, base)
	if useAA {
		localQuad = aaQuad
	}

	var kind shaders.Kind
	switch {
	case useAA && swizzle:
		kind = shaders.KindTileSwizzleAA
	case useAA:
		kind = shaders.KindTileAA
	case base.ShouldDrawWithBlending() && swizzle:
		kind = shaders.KindTileSwizzle
	case base.ShouldDrawWithBlending():
		kind = shaders.KindTile
	case swizzle:
		kind = shaders.KindTileSwizzleOpaque
	default:
		kind = shaders.KindTileOpaque
	}
	prog := r.program(kind, r.texCoordPrecision(textureSize))
	if !prog.Initialized() {
		return
	}
	r.useProgram(prog.Handle())
	ctx := r.cb.Ctx
	ctx.Uniform1i(prog.Locs.Sampler, 0)

	scaled := texToGeomScaleX != 1 || texToGeomScaleY != 1
	filter := gl.Linear
	if !useAA && !scaled && base.Shared.Transform.IsIdentityOrIntegerTranslation() {
		filter = gl.Nearest
	}
	if !r.bindReadTexture(resource, gl.Texture2D, filter) {
		return
	}
	defer r.resources.UnlockRead(resource)

	if useAA {
		ctx.Uniform3fv(prog.Locs.Edge, edge[:])
		ctx.Uniform4f(prog.Locs.VertexTexTransform,
			vertexTexTranslateX, vertexTexTranslateY,
			vertexTexScaleX, vertexTexScaleY)
		ctx.Uniform4f(prog.Locs.FragmentTexTransform,
			fragmentTexTranslateX, fragmentTexTranslateY,
			fragmentTexScaleX, fragmentTexScaleY)
	} else {
		// Without inflation the interpolated coordinates never leave
		// the clamp region, so the fragment transform folds into the
		// vertex stage.
		vertexTexScaleX *= fragmentTexScaleX
		vertexTexScaleY *= fragmentTexScaleY
		vertexTexTranslateX = vertexTexTranslateX*fragmentTexScaleX + fragmentTexTranslateX
		vertexTexTranslateY = vertexTexTranslateY*fragmentTexScaleY + fragmentTexTranslateY
		ctx.Uniform4f(prog.Locs.VertexTexTransform,
			vertexTexTranslateX, vertexTexTranslateY,
			vertexTexScaleX, vertexTexScaleY)
	}

	r.setBlendEnabled(base.ShouldDrawWithBlending() || useAA)

	localQuad = localQuad.Scale(1/float32(tileRect.Width), 1/float32(tileRect.Height))
	r.setShaderOpacity(prog.Locs.Alpha, base.Opacity())
	r.setShaderQuad(prog.Locs.Quad, localQuad)

	centered := geom.RectF{
		X:      -0.5 * float32(tileRect.Width),
		Y:      -0.5 * float32(tileRect.Height),
		Width:  float32(tileRect.Width),
		Height: float32(tileRect.Height),
	}
	r.drawQuadGeometry(frame, base.Shared.Transform, centered, prog.Locs.Matrix)
}

func (r *Renderer) drawYUVVideoQuad(frame *drawingFrame, quad *quads.YUVVideoQuad) {
	r.setBlendEnabled(quad.ShouldDrawWithBlending())

	br := quad.Shared.VisibleContentRect.BottomRight()
	prog := r.program(shaders.KindVideoYUV, r.texCoordPrecision(geom.Size{Width: br.X, Height: br.Y}))
	if !prog.Initialized() {
		return
	}
	ctx := r.cb.Ctx

	planes := [3]quads.ResourceID{quad.YPlaneResourceID, quad.UPlaneResourceID, quad.VPlaneResourceID}
	units := [3]gl.Enum{gl.Texture1, gl.Texture2, gl.Texture3}
	locked := 0
	for i, id := range planes {
		ctx.ActiveTexture(units[i])
		if !r.bindReadTexture(id, gl.Texture2D, gl.Linear) {
			break
		}
		locked++
	}
	defer func() {
		for i := 0; i < locked; i++ {
			r.resources.UnlockRead(planes[i])
		}
		ctx.ActiveTexture(gl.Texture0)
	}()
	if locked != len(planes) {
		return
	}

	r.useProgram(prog.Handle())
	ctx.Uniform2f(prog.Locs.TexScale, quad.TexScale.Width, quad.TexScale.Height)
	ctx.Uniform1i(prog.Locs.SamplerY, 1)
	ctx.Uniform1i(prog.Locs.SamplerU, 2)
	ctx.Uniform1i(prog.Locs.SamplerV, 3)

	// BT.601 limited-range YUV to RGB, column major.
	yuvToRGB := [9]float32{
		1.164, 1.164, 1.164,
		0, -0.391, 2.018,
		1.596, -0.813, 0,
	}
	ctx.UniformMatrix3fv(prog.Locs.YUVMatrix, yuvToRGB[:])

	// Y is in [16/255, 235/255], U and V are centered on 0.5.
	yuvAdjust := [3]float32{-0.0625, -0.5, -0.5}
	ctx.Uniform3fv(prog.Locs.YUVAdjust, yuvAdjust[:])

	r.setShaderOpacity(prog.Locs.Alpha, quad.Opacity())
	r.drawQuadGeometry(frame, quad.Shared.Transform, geom.RectFFromRect(quad.Rect), prog.Locs.Matrix)
}

func (r *Renderer) drawStreamVideoQuad(frame *drawingFrame, quad *quads.StreamVideoQuad) {
	if !r.caps.EGLImageExternal {
		return
	}
	r.setBlendEnabled(quad.ShouldDrawWithBlending())

	br := quad.Shared.VisibleContentRect.BottomRight()
	prog := r.program(shaders.KindVideoStream, r.texCoordPrecision(geom.Size{Width: br.X, Height: br.Y}))
	if !prog.Initialized() {
		return
	}
	r.useProgram(prog.Handle())
	ctx := r.cb.Ctx

	m := quad.Matrix.Cols()
	ctx.UniformMatrix4fv(prog.Locs.TexMatrix, m[:])

	if !r.bindReadTexture(quad.ResourceID, gl.TextureExternal, gl.Linear) {
		return
	}
	defer r.resources.UnlockRead(quad.ResourceID)

	ctx.Uniform1i(prog.Locs.Sampler, 0)
	r.setShaderOpacity(prog.Locs.Alpha, quad.Opacity())
	r.drawQuadGeometry(frame, quad.Shared.Transform, geom.RectFFromRect(quad.Rect), prog.Locs.Matrix)
}

func (r *Renderer) drawIOSurfaceQuad(frame *drawingFrame, quad *quads.IOSurfaceQuad) {
	if !r.caps.TextureRectangle {
		return
	}
	r.setBlendEnabled(quad.ShouldDrawWithBlending())

	br := quad.Shared.VisibleContentRect.BottomRight()
	prog := r.program(shaders.KindTextureIOSurface, r.texCoordPrecision(geom.Size{Width: br.X, Height: br.Y}))
	if !prog.Initialized() {
		return
	}
	r.useProgram(prog.Handle())
	ctx := r.cb.Ctx
	ctx.Uniform1i(prog.Locs.Sampler, 0)

	// Rectangle textures use unnormalized coordinates.
	if quad.Orientation == quads.IOSurfaceFlipped {
		ctx.Uniform4f(prog.Locs.TexTransform,
			0, float32(quad.SurfaceSize.Height),
			float32(quad.SurfaceSize.Width), -float32(quad.SurfaceSize.Height))
	} else {
		ctx.Uniform4f(prog.Locs.TexTransform,
			0, 0,
			float32(quad.SurfaceSize.Width), float32(quad.SurfaceSize.Height))
	}

	r.setShaderOpacity(prog.Locs.Alpha, quad.Opacity())

	if !r.bindReadTexture(quad.ResourceID, gl.TextureRectangle, gl.Linear) {
		return
	}
	defer func() {
		ctx.BindTexture(gl.TextureRectangle, 0)
		r.resources.UnlockRead(quad.ResourceID)
	}()

	r.drawQuadGeometry(frame, quad.Shared.Transform, geom.RectFFromRect(quad.Rect), prog.Locs.Matrix)
}

// copyTextureToFramebuffer draws tex onto the current target covering
// rect under drawMatrix, at full opacity with identity texture
// coordinates.
func (r *Renderer) copyTextureToFramebuffer(frame *drawingFrame, tex gl.Texture, rect geom.Rect, drawMatrix geom.Transform) {
	br := rect.BottomRight()
	prog := r.program(shaders.KindRenderPass, r.texCoordPrecision(geom.Size{Width: br.X, Height: br.Y}))
	if !prog.Initialized() {
		return
	}
	ctx := r.cb.Ctx
	ctx.BindTexture(gl.Texture2D, tex)
	ctx.TexParameteri(gl.Texture2D, gl.TextureMinFilter, int(gl.Linear))
	ctx.TexParameteri(gl.Texture2D, gl.TextureMagFilter, int(gl.Linear))
	r.useProgram(prog.Handle())
	ctx.Uniform1i(prog.Locs.Sampler, 0)
	ctx.Uniform4f(prog.Locs.TexTransform, 0, 0, 1, 1)
	r.setShaderOpacity(prog.Locs.Alpha, 1)
	r.drawQuadGeometry(frame, drawMatrix, geom.RectFFromRect(rect), prog.Locs.Matrix)
}
