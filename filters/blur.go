package filters

import "image"

// blur approximates a Gaussian blur with three passes of a separable
// box blur, which converges on a Gaussian by the central limit theorem
// and runs in O(pixels) regardless of radius.
func blur(img *image.RGBA, radius int) {
	if radius < 1 {
		return
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	tmp := make([]uint8, len(img.Pix))
	for pass := 0; pass < 3; pass++ {
		boxBlurRows(tmp, img.Pix, w, h, img.Stride, radius)
		boxBlurCols(img.Pix, tmp, w, h, img.Stride, radius)
	}
}

// boxBlurRows averages each row of src over a centered window of
// 2*radius+1 texels, clamping at the row ends, into dst.
func boxBlurRows(dst, src []uint8, w, h, stride, radius int) {
	window := uint32(2*radius + 1)
	for y := 0; y < h; y++ {
		row := y * stride
		var sum [4]uint32
		for i := -radius; i <= radius; i++ {
			p := row + clampIndex(i, w)*4
			for c := 0; c < 4; c++ {
				sum[c] += uint32(src[p+c])
			}
		}
		for x := 0; x < w; x++ {
			p := row + x*4
			for c := 0; c < 4; c++ {
				dst[p+c] = uint8(sum[c] / window)
			}
			lead := row + clampIndex(x+radius+1, w)*4
			trail := row + clampIndex(x-radius, w)*4
			for c := 0; c < 4; c++ {
				sum[c] += uint32(src[lead+c]) - uint32(src[trail+c])
			}
		}
	}
}

func boxBlurCols(dst, src []uint8, w, h, stride, radius int) {
	window := uint32(2*radius + 1)
	for x := 0; x < w; x++ {
		col := x * 4
		var sum [4]uint32
		for i := -radius; i <= radius; i++ {
			p := clampIndex(i, h)*stride + col
			for c := 0; c < 4; c++ {
				sum[c] += uint32(src[p+c])
			}
		}
		for y := 0; y < h; y++ {
			p := y*stride + col
			for c := 0; c < 4; c++ {
				dst[p+c] = uint8(sum[c] / window)
			}
			lead := clampIndex(y+radius+1, h)*stride + col
			trail := clampIndex(y-radius, h)*stride + col
			for c := 0; c < 4; c++ {
				sum[c] += uint32(src[lead+c]) - uint32(src[trail+c])
			}
		}
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
