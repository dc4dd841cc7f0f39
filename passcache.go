package mosaic

import (
	"github.com/mosaic-engine/mosaic/geom"
	"github.com/mosaic-engine/mosaic/quads"
)

// passTexture backs one intermediate render pass between the frame
// that draws it and the frames that sample it.
type passTexture struct {
	id   quads.ResourceID
	size geom.Size
}

func (t *passTexture) release(resources ResourceProvider) {
	if t.id != 0 {
		resources.DeleteResource(t.id)
		t.id = 0
	}
}

// renderPassTextureSize caps the pass output to what the device can
// texture from. Oversized passes draw scaled content rather than fail.
func (r *Renderer) renderPassTextureSize(pass *quads.RenderPass) geom.Size {
	size := pass.OutputRect.Size()
	if m := r.caps.MaxTextureSize; m > 0 {
		size.Width = min(size.Width, m)
		size.Height = min(size.Height, m)
	}
	return size
}

// passTexture returns the backing texture for pass, allocating or
// resizing it as needed. Returns nil when no backing can be allocated.
func (r *Renderer) passTexture(pass *quads.RenderPass) *passTexture {
	size := r.renderPassTextureSize(pass)
	if size.IsEmpty() {
		return nil
	}
	tex := r.passTextures[pass.ID]
	if tex != nil && tex.size != size {
		tex.release(r.resources)
		tex = nil
	}
	if tex == nil {
		id := r.resources.CreateResource(size, r.resources.BestTextureFormat())
		if id == 0 {
			return nil
		}
		tex = &passTexture{id: id, size: size}
		r.passTextures[pass.ID] = tex
	}
	return tex
}

// contentsTexture returns the drawn output of the pass a quad wants to
// sample, or nil when the pass was never drawn this frame.
func (r *Renderer) contentsTexture(id quads.PassID) *passTexture {
	return r.passTextures[id]
}

// releasePassTextures drops every cached intermediate texture. The
// next frame that needs them redraws from scratch.
func (r *Renderer) releasePassTextures() {
	for id, tex := range r.passTextures {
		tex.release(r.resources)
		delete(r.passTextures, id)
	}
}
