// Package kernels - pure-Go image kernels used by the native benchmark backend.
package kernels

import (
	"fmt"
	"image"
)

// EdgeMode defines how sampling behaves outside the image bounds.
// - Clamp: repeats edge pixels (aaa|abcd|ddd).
// - Reflect: mirrors including the edge pixel (cba|abcd|dcb).
// - Reflect101: mirrors excluding the edge pixel (dcb|abcd|cba), OpenCV's default.
// - Wrap: tiles the image (bcd|abcd|abc).
type EdgeMode int

const (
	EdgeReflect101 EdgeMode = iota
	EdgeClamp
	EdgeReflect
	EdgeWrap
)

// BoxFilter is a normalized box blur with a square (2*Radius+1) window,
// equivalent to OpenCV's blur() with ksize = 2*Radius+1. It keeps its
// intermediate buffer between calls so repeated Apply calls on same-sized
// images do not allocate.
type BoxFilter struct {
	Radius int
	Edge   EdgeMode
	tmp    *image.RGBA
}

// NewBoxFilter creates a box filter.
//
// Arguments:
// - radius: The window radius; must be >= 0.
// - edge: The border handling mode.
//
// Returns:
// - *BoxFilter: The filter.
// - error: If the radius is negative.
func NewBoxFilter(radius int, edge EdgeMode) (*BoxFilter, error) {
	if radius < 0 {
		return nil, fmt.Errorf("box filter radius must be >= 0, got %d", radius)
	}
	return &BoxFilter{Radius: radius, Edge: edge}, nil
}

// Apply blurs src into dst. Both images must have the same bounds.
// Uses a sliding window per row and per column, so the cost per pixel does
// not depend on the radius.
func (f *BoxFilter) Apply(dst, src *image.RGBA) error {
	b := src.Rect
	if dst.Rect.Dx() != b.Dx() || dst.Rect.Dy() != b.Dy() {
		return fmt.Errorf("box filter: dst bounds %v do not match src bounds %v", dst.Rect, b)
	}
	if b.Empty() {
		return nil
	}
	if f.Radius == 0 {
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4], src.Pix[y*src.Stride:])
		}
		return nil
	}

	if f.tmp == nil || f.tmp.Rect.Dx() != b.Dx() || f.tmp.Rect.Dy() != b.Dy() {
		f.tmp = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}

	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		f.horizontal(f.tmp.Pix[y*f.tmp.Stride:], src.Pix[y*src.Stride:], w)
	}
	for x := 0; x < w; x++ {
		f.vertical(dst, f.tmp, x, h)
	}
	return nil
}

// horizontal blurs one row of w RGBA pixels from src into dst.
func (f *BoxFilter) horizontal(dst, src []uint8, w int) {
	r := f.Radius
	window := uint32(2*r + 1)
	half := window / 2

	var sum [4]uint32
	for dx := -r; dx <= r; dx++ {
		off := mapCoord(dx, w, f.Edge) * 4
		for c := 0; c < 4; c++ {
			sum[c] += uint32(src[off+c])
		}
	}

	for x := 0; x < w; x++ {
		out := x * 4
		for c := 0; c < 4; c++ {
			dst[out+c] = uint8((sum[c] + half) / window)
		}
		// Slide: the pixel at x-r leaves, x+r+1 enters.
		left := mapCoord(x-r, w, f.Edge) * 4
		right := mapCoord(x+r+1, w, f.Edge) * 4
		for c := 0; c < 4; c++ {
			sum[c] += uint32(src[right+c]) - uint32(src[left+c])
		}
	}
}

// vertical blurs column x of src into dst.
func (f *BoxFilter) vertical(dst, src *image.RGBA, x, h int) {
	r := f.Radius
	window := uint32(2*r + 1)
	half := window / 2
	col := x * 4

	var sum [4]uint32
	for dy := -r; dy <= r; dy++ {
		off := mapCoord(dy, h, f.Edge)*src.Stride + col
		for c := 0; c < 4; c++ {
			sum[c] += uint32(src.Pix[off+c])
		}
	}

	for y := 0; y < h; y++ {
		out := y*dst.Stride + col
		for c := 0; c < 4; c++ {
			dst.Pix[out+c] = uint8((sum[c] + half) / window)
		}
		above := mapCoord(y-r, h, f.Edge)*src.Stride + col
		below := mapCoord(y+r+1, h, f.Edge)*src.Stride + col
		for c := 0; c < 4; c++ {
			sum[c] += uint32(src.Pix[below+c]) - uint32(src.Pix[above+c])
		}
	}
}

// mapCoord maps an index i to [0, n) according to edge mode.
func mapCoord(i, n int, mode EdgeMode) int {
	if i >= 0 && i < n {
		return i
	}
	if n == 1 {
		return 0
	}
	switch mode {
	case EdgeReflect101:
		for i < 0 || i >= n {
			if i < 0 {
				i = -i
			} else {
				i = 2*n - i - 2
			}
		}
		return i
	case EdgeReflect:
		for i < 0 || i >= n {
			if i < 0 {
				i = -i - 1
			} else {
				i = 2*n - i - 1
			}
		}
		return i
	case EdgeWrap:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	default:
		if i < 0 {
			return 0
		}
		return n - 1
	}
}
