package mosaic

import (
	"image"

	"github.com/mosaic-engine/mosaic/filters"
	"github.com/mosaic-engine/mosaic/geom"
	"github.com/mosaic-engine/mosaic/gl"
	"github.com/mosaic-engine/mosaic/quads"
	"github.com/mosaic-engine/mosaic/shaders"
)

func renderPassKind(aa, mask, colorMatrix bool) shaders.Kind {
	switch {
	case aa && mask && colorMatrix:
		return shaders.KindRenderPassMaskColorMatrixAA
	case aa && mask:
		return shaders.KindRenderPassMaskAA
	case aa && colorMatrix:
		return shaders.KindRenderPassColorMatrixAA
	case aa:
		return shaders.KindRenderPassAA
	case mask && colorMatrix:
		return shaders.KindRenderPassMaskColorMatrix
	case mask:
		return shaders.KindRenderPassMask
	case colorMatrix:
		return shaders.KindRenderPassColorMatrix
	default:
		return shaders.KindRenderPass
	}
}

func (r *Renderer) drawRenderPassQuad(frame *drawingFrame, quad *quads.RenderPassQuad) {
	r.setBlendEnabled(quad.ShouldDrawWithBlending())

	contents := r.contentsTexture(quad.PassID)
	if contents == nil || contents.id == 0 {
		return
	}

	contentsDeviceTransform := frame.window.Mul(frame.projection).
		Mul(geom.QuadRectTransform(quad.Shared.Transform, geom.RectFFromRect(quad.Rect))).
		FlattenTo2D()
	inverse, invertible := contentsDeviceTransform.Invert()
	if !invertible {
		return
	}

	var backgroundTexture quads.ResourceID
	if !quad.BackgroundFilters.IsEmpty() {
		// The filtered background replaces the current pixels outright.
		wasBlending := r.blendEnabled
		r.setBlendEnabled(false)
		backgroundTexture = r.drawBackgroundFilters(frame, quad, contentsDeviceTransform, inverse)
		r.setBlendEnabled(wasBlending)
		r.enableScissorTestForQuad(frame, &quad.Base)
	}
	if backgroundTexture != 0 {
		defer r.resources.DeleteResource(backgroundTexture)
	}

	var colorMatrix [20]float32
	useColorMatrix := false
	var filteredTexture quads.ResourceID
	if !quad.Filters.IsEmpty() {
		if m, ok := quad.Filters.AsColorMatrix(); ok {
			// A pure color matrix runs in the fragment stage; no
			// intermediate pixels needed.
			colorMatrix = m
			useColorMatrix = true
		} else {
			filteredTexture = r.applyContentsFilters(frame, quad.Filters, contents)
		}
	}
	if filteredTexture != 0 {
		defer r.resources.DeleteResource(filteredTexture)
	}

	if backgroundTexture != 0 {
		if tex, err := r.resources.LockForRead(backgroundTexture); err == nil {
			r.copyTextureToFramebuffer(frame, tex, quad.Rect, quad.Shared.Transform)
			r.resources.UnlockRead(backgroundTexture)
		}
	}

	deviceQuad, _ := contentsDeviceTransform.MapQuad(sharedGeometryQuad())
	layerBounds := geom.NewLayerQuad(geom.QuadFFromRectF(deviceQuad.BoundingBox()))
	layerEdges := geom.NewLayerQuad(deviceQuad)

	useAA := !deviceQuad.IsRectilinear() ||
		!geom.IsNearestRectWithinDistance(deviceQuad.BoundingBox(), antiAliasingEpsilon)
	if useAA {
		layerBounds = layerBounds.InflateAntiAliasingDistance()
		layerEdges = layerEdges.InflateAntiAliasingDistance()
	}

	hasMask := quad.MaskResourceID != 0
	br := quad.Shared.VisibleContentRect.BottomRight()
	prog := r.program(renderPassKind(useAA, hasMask, useColorMatrix),
		r.texCoordPrecision(geom.Size{Width: br.X, Height: br.Y}))
	if !prog.Initialized() {
		return
	}
	r.useProgram(prog.Handle())
	ctx := r.cb.Ctx
	ctx.Uniform1i(prog.Locs.Sampler, 0)

	contentsID := contents.id
	if filteredTexture != 0 {
		contentsID = filteredTexture
	}
	if !r.bindReadTexture(contentsID, gl.Texture2D, gl.Linear) {
		return
	}
	defer r.resources.UnlockRead(contentsID)

	texScaleX := float32(quad.Rect.Width) / float32(contents.size.Width)
	texScaleY := float32(quad.Rect.Height) / float32(contents.size.Height)
	if r.opts.DebugChecks && !r.cb.DeviceLost() && (texScaleX > 1 || texScaleY > 1) {
		panic("mosaic: render pass contents smaller than the quad sampling them")
	}

	if useAA {
		// The AA vertex stage derives texture coordinates from the
		// unit-quad geometry: (pos + 0.5) * texScale.
		ctx.Uniform4f(prog.Locs.VertexTexTransform,
			0.5*texScaleX, 0.5*texScaleY, texScaleX, texScaleY)
	} else {
		ctx.Uniform4f(prog.Locs.TexTransform, 0, 0, texScaleX, texScaleY)
	}

	if hasMask {
		ctx.ActiveTexture(gl.Texture1)
		ctx.Uniform1i(prog.Locs.MaskSampler, 1)
		ctx.Uniform2f(prog.Locs.MaskTexCoordOffset, quad.MaskUVRect.X, quad.MaskUVRect.Y)
		ctx.Uniform2f(prog.Locs.MaskTexCoordScale,
			quad.MaskUVRect.Width/texScaleX,
			quad.MaskUVRect.Height/texScaleY)
		if !r.bindReadTexture(quad.MaskResourceID, gl.Texture2D, gl.Linear) {
			ctx.ActiveTexture(gl.Texture0)
			return
		}
		defer r.resources.UnlockRead(quad.MaskResourceID)
		ctx.ActiveTexture(gl.Texture0)
	}

	if useAA {
		var edge [24]float32
		coeffs := layerEdges.AppendFloats(edge[:0])
		layerBounds.AppendFloats(coeffs)
		ctx.Uniform3fv(prog.Locs.Edge, edge[:])
	}

	if useColorMatrix {
		// Row-major 4x5 to a column-major mat4 plus an offset vector.
		var m [16]float32
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				m[i*4+j] = colorMatrix[j*5+i]
			}
		}
		ctx.UniformMatrix4fv(prog.Locs.ColorMatrix, m[:])
		offset := [4]float32{colorMatrix[4], colorMatrix[9], colorMatrix[14], colorMatrix[19]}
		ctx.Uniform4fv(prog.Locs.ColorOffset, offset[:])
	}

	// Map the device-space edge quad back into unit-quad space. The
	// transform was flattened, so no projection is needed.
	surfaceQuad, _ := inverse.MapQuad(layerEdges.ToQuadF())

	r.setShaderOpacity(prog.Locs.Alpha, quad.Opacity())
	r.setShaderQuad(prog.Locs.Quad, surfaceQuad)
	r.drawQuadGeometry(frame, quad.Shared.Transform, geom.RectFFromRect(quad.Rect), prog.Locs.Matrix)
}

// drawBackgroundFilters filters the pixels behind the quad and returns
// a texture the size of quad.Rect holding them, to be composited under
// the pass contents before the contents draw. Returns 0 when the
// background cannot be captured; the quad then draws unfiltered.
func (r *Renderer) drawBackgroundFilters(frame *drawingFrame, quad *quads.RenderPassQuad, contentsDeviceTransform, inverse geom.Transform) quads.ResourceID {
	// A translucent target composites over content the readback cannot
	// see, so filtering would only cover part of the background.
	if frame.currentPass.HasTransparentBackground {
		return 0
	}
	if r.offscreen == nil {
		return 0
	}

	deviceRect := geom.EnclosingRect(contentsDeviceTransform.MapClippedRect(sharedGeometryQuad().BoundingBox()))
	if frame.flippedY {
		// The device transform lands in GL window coordinates; the
		// readback and the output rect use a top-left origin.
		deviceRect.Y = r.viewport.Height - deviceRect.Bottom()
	}
	left, top, right, bottom := quad.BackgroundFilters.Outsets()
	deviceRect = deviceRect.Inset(-left, -top, -right, -bottom)
	deviceRect = deviceRect.Intersect(frame.currentPass.OutputRect)
	if deviceRect.IsEmpty() {
		return 0
	}

	background := r.readFramebufferRegion(frame, deviceRect)
	if background == nil {
		return 0
	}
	if err := r.offscreen.Apply(quad.BackgroundFilters, background); err != nil {
		Logger().Error("background filter chain failed", "err", err)
		return 0
	}

	filtered := r.resources.CreateResource(deviceRect.Size(), gl.RGBA)
	if filtered == 0 {
		return 0
	}
	defer r.resources.DeleteResource(filtered)
	r.resources.SetPixels(filtered, background.Pix, deviceRect.Size())

	backgroundTexture := r.resources.CreateResource(quad.Rect.Size(), gl.RGBA)
	if backgroundTexture == 0 {
		return 0
	}

	deviceToContent := inverse
	if frame.flippedY {
		deviceToContent = inverse.Mul(
			geom.Translation(0, float32(r.viewport.Height)).Scale(1, -1))
	}

	targetPass := frame.currentPass
	ok := r.useScopedTexture(frame, backgroundTexture, quad.Rect)
	if ok {
		// Pull the filtered device pixels into the quad's content
		// space through the inverse transform. The destination bounds
		// clip them to the quad implicitly.
		deviceToFramebuffer := geom.Translation(
			0.5*float32(quad.Rect.Width)+float32(quad.Rect.X),
			0.5*float32(quad.Rect.Height)+float32(quad.Rect.Y)).
			Scale(float32(quad.Rect.Width), float32(quad.Rect.Height)).
			Mul(deviceToContent)
		if tex, err := r.resources.LockForRead(filtered); err == nil {
			r.copyTextureToFramebuffer(frame, tex, deviceRect, deviceToFramebuffer)
			r.resources.UnlockRead(filtered)
		} else {
			ok = false
		}
	}
	r.useRenderPass(frame, targetPass)
	if !ok {
		r.resources.DeleteResource(backgroundTexture)
		return 0
	}
	return backgroundTexture
}

// applyContentsFilters evaluates a filter chain against the pass
// contents and returns a texture with the filtered pixels, or 0 to
// draw the contents unfiltered.
func (r *Renderer) applyContentsFilters(frame *drawingFrame, chain filters.Chain, contents *passTexture) quads.ResourceID {
	if r.offscreen == nil {
		return 0
	}
	img := r.readTexturePixels(frame, contents)
	if img == nil {
		return 0
	}
	if err := r.offscreen.Apply(chain, img); err != nil {
		Logger().Error("filter chain failed", "err", err)
		return 0
	}
	filtered := r.resources.CreateResource(contents.size, gl.RGBA)
	if filtered == 0 {
		return 0
	}
	r.resources.SetPixels(filtered, img.Pix, contents.size)
	return filtered
}

// useScopedTexture redirects drawing into a bare resource for a helper
// copy. The caller restores the real target with useRenderPass.
func (r *Renderer) useScopedTexture(frame *drawingFrame, id quads.ResourceID, rect geom.Rect) bool {
	r.flushTextureQuadCache(frame)
	tmp := &passTexture{id: id, size: rect.Size()}
	if !r.bindFramebufferToTexture(tmp) {
		return false
	}
	frame.currentPass = nil
	frame.currentTexture = tmp
	frame.haveRootScissor = false
	r.disableScissorTest()
	r.initializeViewport(frame, rect, geom.RectFromSize(rect.Size()), false)
	return true
}

// readTexturePixels reads the full contents of a pass texture by
// attaching it to the offscreen framebuffer, then restores the current
// target.
func (r *Renderer) readTexturePixels(frame *drawingFrame, tex *passTexture) *image.RGBA {
	targetPass := frame.currentPass
	if !r.useScopedTexture(frame, tex.id, geom.RectFromSize(tex.size)) {
		return nil
	}
	img := r.readFramebufferRegion(frame, geom.RectFromSize(tex.size))
	r.useRenderPass(frame, targetPass)
	return img
}
