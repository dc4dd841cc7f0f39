package mosaic

import (
	"fmt"
	"image"

	"github.com/mosaic-engine/mosaic/geom"
	"github.com/mosaic-engine/mosaic/gl"
)

// readFramebufferRegion reads rect, in the current target's content
// space, into a premultiplied RGBA image with a top-left origin. Rows
// are reordered and channels normalized as the device requires.
func (r *Renderer) readFramebufferRegion(frame *drawingFrame, rect geom.Rect) *image.RGBA {
	if rect.IsEmpty() {
		return nil
	}
	y := rect.Y
	if frame.flippedY {
		y = r.viewport.Height - rect.Bottom()
	}
	format := gl.RGBA
	if r.caps.BGRAReadback {
		format = gl.BGRA
	}
	buf := make([]byte, rect.Width*rect.Height*4)
	r.cb.Ctx.ReadPixels(buf, rect.X, y, rect.Width, rect.Height, format, gl.UnsignedByte)
	if r.cb.DeviceLost() {
		return nil
	}

	img := image.NewRGBA(image.Rect(0, 0, rect.Width, rect.Height))
	rowBytes := rect.Width * 4
	for row := 0; row < rect.Height; row++ {
		src := row
		if frame.flippedY {
			src = rect.Height - 1 - row
		}
		copy(img.Pix[row*rowBytes:(row+1)*rowBytes], buf[src*rowBytes:(src+1)*rowBytes])
	}
	if format == gl.BGRA {
		swizzleBGRA(img.Pix)
	}
	return img
}

func swizzleBGRA(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

// GetFramebufferPixels reads back rect from the output surface into a
// premultiplied RGBA image. rect is in device space with a top-left
// origin and must lie within the viewport. Intended for pixel tests
// and capture; call after DrawFrame, before SwapBuffers.
func (r *Renderer) GetFramebufferPixels(rect geom.Rect) (*image.RGBA, error) {
	if !geom.RectFromSize(r.viewport.Size()).Contains(rect) {
		return nil, fmt.Errorf("mosaic: readback rect %v outside viewport %v", rect, r.viewport.Size())
	}
	if err := r.cb.Status(); err != nil {
		return nil, err
	}

	ctx := r.cb.Ctx

	// Some devices corrupt later readbacks when reading straight from
	// a surface-backed framebuffer. Route through a copy when the
	// workaround is on.
	var tmpTexture gl.Texture
	var tmpFramebuffer gl.Framebuffer
	if r.opts.ForceReadbackWorkaround {
		tmpTexture = ctx.CreateTexture()
		ctx.BindTexture(gl.Texture2D, tmpTexture)
		ctx.TexParameteri(gl.Texture2D, gl.TextureMinFilter, int(gl.Linear))
		ctx.TexParameteri(gl.Texture2D, gl.TextureMagFilter, int(gl.Linear))
		ctx.TexParameteri(gl.Texture2D, gl.TextureWrapS, int(gl.ClampToEdge))
		ctx.TexParameteri(gl.Texture2D, gl.TextureWrapT, int(gl.ClampToEdge))
		ctx.CopyTexImage2D(gl.Texture2D, 0, gl.RGBA, 0, 0, r.viewport.Width, r.viewport.Height, 0)

		tmpFramebuffer = ctx.CreateFramebuffer()
		ctx.BindFramebuffer(gl.Framebuffer2D, tmpFramebuffer)
		ctx.FramebufferTexture2D(gl.Framebuffer2D, gl.ColorAttachment0, gl.Texture2D, tmpTexture, 0)
		if r.opts.DebugChecks && !r.cb.DeviceLost() {
			if status := ctx.CheckFramebufferStatus(gl.Framebuffer2D); status != gl.FramebufferComplete {
				panic("incomplete readback framebuffer")
			}
		}
	}

	flipped := drawingFrame{flippedY: true}
	img := r.readFramebufferRegion(&flipped, rect)

	if r.opts.ForceReadbackWorkaround {
		ctx.BindFramebuffer(gl.Framebuffer2D, 0)
		ctx.BindTexture(gl.Texture2D, 0)
		ctx.DeleteFramebuffer(tmpFramebuffer)
		ctx.DeleteTexture(tmpTexture)
	}

	r.enforceMemoryPolicy()

	if img == nil {
		return nil, gl.ErrDeviceLost
	}
	return img, nil
}

// CopyCurrentRenderPassToImage reads back the full output of the most
// recently drawn pass target.
func (r *Renderer) CopyCurrentRenderPassToImage() (*image.RGBA, error) {
	pass := r.frame.currentPass
	if pass == nil {
		return nil, fmt.Errorf("mosaic: no render pass drawn")
	}
	if err := r.cb.Status(); err != nil {
		return nil, err
	}
	img := r.readFramebufferRegion(&r.frame, geom.RectFromSize(pass.OutputRect.Size()))
	if img == nil {
		return nil, gl.ErrDeviceLost
	}
	return img, nil
}
