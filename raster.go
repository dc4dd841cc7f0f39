package mosaic

import (
	"image"

	"github.com/mosaic-engine/mosaic/geom"
	"github.com/mosaic-engine/mosaic/quads"
)

// rasterStaging is the reused CPU bitmap and upload resource for
// picture quads. Both are reallocated only when the required texture
// size changes.
type rasterStaging struct {
	bitmap   *image.RGBA
	resource quads.ResourceID
	size     geom.Size
}

func (s *rasterStaging) release(resources ResourceProvider) {
	if s.resource != 0 {
		resources.DeleteResource(s.resource)
		s.resource = 0
	}
	s.bitmap = nil
}

// drawPictureQuad rasterizes the quad's recorded content on the CPU,
// uploads it, and draws it like tiled content.
func (r *Renderer) drawPictureQuad(frame *drawingFrame, quad *quads.PictureQuad) {
	if quad.Picture == nil || quad.TextureSize.IsEmpty() {
		return
	}

	if r.rasterStage == nil {
		r.rasterStage = &rasterStaging{}
	}
	stage := r.rasterStage
	if stage.size != quad.TextureSize {
		stage.release(r.resources)
		stage.bitmap = image.NewRGBA(image.Rect(0, 0, quad.TextureSize.Width, quad.TextureSize.Height))
		stage.resource = r.resources.CreateResource(quad.TextureSize, r.resources.BestTextureFormat())
		stage.size = quad.TextureSize
	}
	if stage.resource == 0 {
		return
	}

	quad.Picture.Raster(stage.bitmap, quad.ContentRect, quad.ContentsScale)
	r.resources.SetPixels(stage.resource, stage.bitmap.Pix, quad.TextureSize)

	r.drawContentQuad(frame, &quad.Base, stage.resource, quad.TexCoordRect, quad.TextureSize, false)
}
