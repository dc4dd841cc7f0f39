package mosaic

import (
	"github.com/mosaic-engine/mosaic/geom"
	"github.com/mosaic-engine/mosaic/gl"
	"github.com/mosaic-engine/mosaic/quads"
)

// drawingFrame is the state of the frame currently being drawn.
type drawingFrame struct {
	rootPass       *quads.RenderPass
	currentPass    *quads.RenderPass
	currentTexture *passTexture

	// flippedY is set when drawing into the output surface, whose GL
	// origin is bottom-left while pass content is y-down.
	flippedY   bool
	projection geom.Transform
	window     geom.Transform

	// rootScissor confines root-pass draws to the frame's damage when
	// partial swap is active. Empty means no confinement.
	rootScissor     geom.Rect
	haveRootScissor bool
}

// DrawFrame draws one frame's passes, leaf passes first, the root pass
// last. It returns the device-space damage drawn into the output
// surface. The frame always runs to completion; on a lost device the
// remaining draws are dropped and gl.ErrDeviceLost is returned.
func (r *Renderer) DrawFrame(passes []*quads.RenderPass) (geom.Rect, error) {
	if len(passes) == 0 {
		return geom.Rect{}, nil
	}
	if err := r.cb.Status(); err != nil {
		r.client.SetFullRootLayerDamage()
		return geom.Rect{}, err
	}

	if vp := r.client.DeviceViewport(); vp != r.viewport {
		r.viewport = vp
		r.viewportChanged = true
	}
	if r.viewport.IsEmpty() {
		return geom.Rect{}, nil
	}

	root := passes[len(passes)-1]
	r.frame = drawingFrame{rootPass: root}
	r.beginDrawingFrame(passes)
	for _, pass := range passes {
		r.drawRenderPass(&r.frame, pass)
	}
	damage := r.finishDrawingFrame(root)
	if err := r.cb.Status(); err != nil {
		r.client.SetFullRootLayerDamage()
		return damage, err
	}
	return damage, nil
}

func (r *Renderer) beginDrawingFrame(passes []*quads.RenderPass) {
	r.ensureBackbuffer()
	if r.viewportChanged {
		// Reshape only when a draw is actually happening; a viewport
		// that is never drawn must not resize the surface.
		r.viewportChanged = false
		r.surface.Reshape(r.viewport.Size())
	}
	r.cullPassTextures(passes)

	ctx := r.cb.Ctx
	ctx.Disable(gl.DepthTest)
	ctx.Disable(gl.CullFace)
	ctx.ColorMask(true, true, true, true)
	r.blendEnabled = true
	ctx.Enable(gl.Blend)
	// Premultiplied-alpha source over.
	ctx.BlendFunc(gl.One, gl.OneMinusSrcAlpha)
	ctx.ActiveTexture(gl.Texture0)
	r.geometry.bind(ctx)
}

// cullPassTextures frees cached pass textures this frame will not
// redraw or sample.
func (r *Renderer) cullPassTextures(passes []*quads.RenderPass) {
	inFrame := make(map[quads.PassID]bool, len(passes))
	for _, pass := range passes {
		inFrame[pass.ID] = true
		for _, q := range pass.Quads {
			if rpq, ok := q.(*quads.RenderPassQuad); ok {
				inFrame[rpq.PassID] = true
			}
		}
	}
	for id, tex := range r.passTextures {
		if !inFrame[id] {
			tex.release(r.resources)
			delete(r.passTextures, id)
		}
	}
}

func (r *Renderer) drawRenderPass(frame *drawingFrame, pass *quads.RenderPass) {
	if r.cb.DeviceLost() {
		return
	}
	if !r.useRenderPass(frame, pass) {
		return
	}
	r.clearFramebuffer(frame)
	for _, q := range pass.Quads {
		if r.cb.DeviceLost() {
			return
		}
		r.enableScissorTestForQuad(frame, quads.BaseOf(q))
		r.doDrawQuad(frame, q)
	}
	r.flushTextureQuadCache(frame)
}

// useRenderPass makes pass the current render target. It returns false
// when an intermediate texture cannot be backed, in which case the
// pass and every quad sampling it are skipped.
func (r *Renderer) useRenderPass(frame *drawingFrame, pass *quads.RenderPass) bool {
	r.flushTextureQuadCache(frame)
	frame.currentPass = pass
	frame.haveRootScissor = false

	if pass == frame.rootPass {
		frame.currentTexture = nil
		r.bindFramebufferToOutputSurface()
		viewport := geom.RectFromSize(r.viewport.Size())
		r.initializeViewport(frame, pass.OutputRect, viewport, true)
		r.setupRootScissor(frame, pass)
		return true
	}

	tex := r.passTexture(pass)
	if tex == nil || !r.bindFramebufferToTexture(tex) {
		return false
	}
	frame.currentTexture = tex
	r.initializeViewport(frame, pass.OutputRect, geom.RectFromSize(tex.size), false)
	return true
}

// setupRootScissor confines root drawing to the damage rect when a
// partial swap will follow, so undamaged pixels survive from the
// previous frame.
func (r *Renderer) setupRootScissor(frame *drawingFrame, pass *quads.RenderPass) {
	if !r.caps.PartialSwap || !r.opts.AllowPartialSwap {
		return
	}
	damage := geom.EnclosingRect(pass.DamageRect).Intersect(geom.RectFromSize(r.viewport.Size()))
	if damage == geom.RectFromSize(r.viewport.Size()) {
		return
	}
	frame.rootScissor = r.moveToWindowSpace(frame, damage)
	frame.haveRootScissor = true
}

func (r *Renderer) initializeViewport(frame *drawingFrame, drawRect, viewport geom.Rect, flipY bool) {
	frame.flippedY = flipY
	if flipY {
		frame.projection = geom.OrthoProjection(
			float32(drawRect.X), float32(drawRect.Right()),
			float32(drawRect.Bottom()), float32(drawRect.Y))
	} else {
		frame.projection = geom.OrthoProjection(
			float32(drawRect.X), float32(drawRect.Right()),
			float32(drawRect.Y), float32(drawRect.Bottom()))
	}
	frame.window = geom.WindowMatrix(0, 0, viewport.Width, viewport.Height)
	r.cb.Ctx.Viewport(0, 0, viewport.Width, viewport.Height)
}

// releaseFramebufferLock drops the write lock on the previous render
// target, held for the whole time we drew into it.
func (r *Renderer) releaseFramebufferLock() {
	if r.lockedTarget == nil {
		return
	}
	r.resources.UnlockWrite(r.lockedTarget.id)
	r.lockedTarget = nil
}

func (r *Renderer) bindFramebufferToOutputSurface() {
	r.releaseFramebufferLock()
	r.surface.BindFramebuffer()
}

func (r *Renderer) bindFramebufferToTexture(tex *passTexture) bool {
	ctx := r.cb.Ctx
	r.releaseFramebufferLock()
	handle, err := r.resources.LockForWrite(tex.id)
	if err != nil {
		return false
	}
	r.lockedTarget = tex
	ctx.BindFramebuffer(gl.Framebuffer2D, r.offscreenFramebuffer)
	ctx.FramebufferTexture2D(gl.Framebuffer2D, gl.ColorAttachment0, gl.Texture2D, handle, 0)
	if r.opts.DebugChecks && !r.cb.DeviceLost() {
		if status := ctx.CheckFramebufferStatus(gl.Framebuffer2D); status != gl.FramebufferComplete {
			panic("incomplete framebuffer attachment")
		}
	}
	return true
}

// clearFramebuffer clears transparent targets to transparent black.
// Opaque targets get every pixel repainted anyway; with debug checks on
// they are cleared to a loud blue so any missed draw shows.
func (r *Renderer) clearFramebuffer(frame *drawingFrame) {
	ctx := r.cb.Ctx
	if frame.currentPass.HasTransparentBackground {
		ctx.ClearColor(0, 0, 0, 0)
	} else if r.opts.DebugChecks {
		ctx.ClearColor(0, 0, 1, 1)
	} else {
		return
	}
	if frame.haveRootScissor {
		r.setScissorTestRect(frame.rootScissor)
	} else {
		r.disableScissorTest()
	}
	ctx.Clear(gl.ColorBufferBit)
}

// enableScissorTestForQuad sets up the scissor for one quad: its clip
// rect when clipped, otherwise the root damage scissor if any.
func (r *Renderer) enableScissorTestForQuad(frame *drawingFrame, base *quads.Base) {
	if base.Shared.IsClipped {
		clip := r.moveToWindowSpace(frame, base.Shared.ClipRect)
		if frame.haveRootScissor {
			clip = clip.Intersect(frame.rootScissor)
		}
		r.setScissorTestRect(clip)
		return
	}
	if frame.haveRootScissor {
		r.setScissorTestRect(frame.rootScissor)
		return
	}
	r.disableScissorTest()
}

// moveToWindowSpace converts a target-space rect into GL window
// coordinates, flipping y for the output surface.
func (r *Renderer) moveToWindowSpace(frame *drawingFrame, rect geom.Rect) geom.Rect {
	if frame.flippedY {
		rect.Y = r.viewport.Height - rect.Bottom()
	}
	return rect
}

func (r *Renderer) finishDrawingFrame(root *quads.RenderPass) geom.Rect {
	r.flushTextureQuadCache(&r.frame)
	r.releaseFramebufferLock()
	r.disableScissorTest()
	r.setBlendEnabled(false)
	r.useProgram(0)
	damage := geom.EnclosingRect(root.DamageRect).Intersect(geom.RectFromSize(r.viewport.Size()))
	r.swapRect = r.swapRect.Union(damage)
	return damage
}

// SwapBuffers presents the frame, using a partial swap of the
// accumulated damage when the device supports it, and rotates the
// resource read-lock fence. The latency payload travels to the surface
// untouched.
func (r *Renderer) SwapBuffers(latency LatencyInfo) {
	viewport := geom.RectFromSize(r.viewport.Size())
	if r.caps.PartialSwap && r.opts.AllowPartialSwap && r.swapRect != viewport && !r.swapRect.IsEmpty() {
		// The surface takes the sub-rect with a bottom-left origin.
		rect := r.swapRect
		rect.Y = r.viewport.Height - rect.Bottom()
		r.surface.PostSubBuffer(rect, latency)
	} else {
		r.surface.SwapBuffers(latency)
	}
	r.swapRect = geom.Rect{}
	r.rotateSwapFence()
}
