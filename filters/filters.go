// Package filters describes post-processing filter chains attached to
// render-pass quads, and evaluates them on the CPU for the offscreen
// filter path.
package filters

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Type identifies one filter operation.
type Type int

const (
	TypeBlur Type = iota
	TypeBrightness
	TypeContrast
	TypeSaturate
	TypeGrayscale
	TypeOpacity
	TypeColorMatrix
	TypeZoom
)

// Op is one filter operation. Amount's meaning depends on Type: a
// pixel radius for Blur, a scale factor for Brightness/Contrast/Zoom,
// a [0, 1] fraction for Saturate/Grayscale/Opacity. Matrix is used
// only by ColorMatrix, Inset only by Zoom.
type Op struct {
	Type   Type
	Amount float32
	// Matrix is a row-major 4x5 color matrix. Each output channel is a
	// weighted sum of the four input channels plus an offset, with all
	// channels and offsets in [0, 1].
	Matrix [20]float32
	Inset  int
}

func Blur(radius float32) Op      { return Op{Type: TypeBlur, Amount: radius} }
func Brightness(v float32) Op     { return Op{Type: TypeBrightness, Amount: v} }
func Contrast(v float32) Op       { return Op{Type: TypeContrast, Amount: v} }
func Saturate(v float32) Op       { return Op{Type: TypeSaturate, Amount: v} }
func Grayscale(v float32) Op      { return Op{Type: TypeGrayscale, Amount: v} }
func Opacity(v float32) Op        { return Op{Type: TypeOpacity, Amount: v} }
func Zoom(v float32, inset int) Op { return Op{Type: TypeZoom, Amount: v, Inset: inset} }

func ColorMatrix(m [20]float32) Op { return Op{Type: TypeColorMatrix, Matrix: m} }

// colorMatrix returns the op as a color matrix. Blur and Zoom move
// pixels and have no matrix form.
func (op Op) colorMatrix() ([20]float32, bool) {
	switch op.Type {
	case TypeBrightness:
		return scaleMatrix(op.Amount, op.Amount, op.Amount, 1), true
	case TypeContrast:
		m := scaleMatrix(op.Amount, op.Amount, op.Amount, 1)
		offset := 0.5 - 0.5*op.Amount
		m[4], m[9], m[14] = offset, offset, offset
		return m, true
	case TypeSaturate:
		return saturateMatrix(op.Amount), true
	case TypeGrayscale:
		return saturateMatrix(1 - op.Amount), true
	case TypeOpacity:
		return scaleMatrix(1, 1, 1, op.Amount), true
	case TypeColorMatrix:
		return op.Matrix, true
	default:
		return [20]float32{}, false
	}
}

func scaleMatrix(r, g, b, a float32) [20]float32 {
	var m [20]float32
	m[0], m[6], m[12], m[18] = r, g, b, a
	return m
}

// saturateMatrix interpolates between the luminance projection (s=0)
// and identity (s=1) using Rec. 709 luminance weights.
func saturateMatrix(s float32) [20]float32 {
	var m [20]float32
	m[0] = 0.213 + 0.787*s
	m[1] = 0.715 - 0.715*s
	m[2] = 0.072 - 0.072*s
	m[5] = 0.213 - 0.213*s
	m[6] = 0.715 + 0.285*s
	m[7] = 0.072 - 0.072*s
	m[10] = 0.213 - 0.213*s
	m[11] = 0.715 - 0.715*s
	m[12] = 0.072 + 0.928*s
	m[18] = 1
	return m
}

// composeMatrix returns the matrix applying b first, then a.
func composeMatrix(a, b [20]float32) [20]float32 {
	var out [20]float32
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[row*5+k] * b[k*5+col]
			}
			if col == 4 {
				sum += a[row*5+4]
			}
			out[row*5+col] = sum
		}
	}
	return out
}

// Chain is an ordered list of filter operations, applied first to last.
type Chain []Op

func (c Chain) IsEmpty() bool { return len(c) == 0 }

// Outsets reports how many pixels beyond the filtered region each
// operation can read. Blur reads three radii out; everything else is
// local.
func (c Chain) Outsets() (left, top, right, bottom int) {
	for _, op := range c {
		if op.Type == TypeBlur {
			spread := int(math.Ceil(float64(op.Amount) * 3))
			left += spread
			top += spread
			right += spread
			bottom += spread
		}
	}
	return left, top, right, bottom
}

// AsColorMatrix collapses the chain into a single color matrix if every
// operation has a matrix form. A chain containing Blur or Zoom does
// not collapse.
func (c Chain) AsColorMatrix() ([20]float32, bool) {
	combined := scaleMatrix(1, 1, 1, 1)
	for _, op := range c {
		m, ok := op.colorMatrix()
		if !ok {
			return [20]float32{}, false
		}
		combined = composeMatrix(m, combined)
	}
	return combined, true
}

// Apply evaluates the chain in place over a premultiplied-alpha image.
func (c Chain) Apply(img *image.RGBA) {
	for _, op := range c {
		switch op.Type {
		case TypeBlur:
			blur(img, int(op.Amount+0.5))
		case TypeZoom:
			zoom(img, op.Amount, op.Inset)
		default:
			if m, ok := op.colorMatrix(); ok {
				applyColorMatrix(img, m)
			}
		}
	}
}

func applyColorMatrix(img *image.RGBA, m [20]float32) {
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		a := float32(pix[i+3]) / 255
		var r, g, b float32
		if a > 0 {
			// Stored premultiplied; the matrix operates on straight alpha.
			r = float32(pix[i]) / 255 / a
			g = float32(pix[i+1]) / 255 / a
			b = float32(pix[i+2]) / 255 / a
		}
		nr := m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4]
		ng := m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9]
		nb := m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14]
		na := m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19]
		na = clamp01(na)
		pix[i] = channel(clamp01(nr) * na)
		pix[i+1] = channel(clamp01(ng) * na)
		pix[i+2] = channel(clamp01(nb) * na)
		pix[i+3] = channel(na)
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func channel(v float32) uint8 {
	return uint8(v*255 + 0.5)
}

// zoom magnifies the image's center region back up to full size.
func zoom(img *image.RGBA, amount float32, inset int) {
	if amount <= 1 {
		return
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	srcW := int(float32(w)/amount) - 2*inset
	srcH := int(float32(h)/amount) - 2*inset
	if srcW <= 0 || srcH <= 0 {
		return
	}
	srcX := b.Min.X + (w-srcW)/2
	srcY := b.Min.Y + (h-srcH)/2
	src := img.SubImage(image.Rect(srcX, srcY, srcX+srcW, srcY+srcH)).(*image.RGBA)
	dst := image.NewRGBA(b)
	xdraw.ApproxBiLinear.Scale(dst, b, src, src.Bounds(), xdraw.Src, nil)
	copy(img.Pix, dst.Pix)
}
