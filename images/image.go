// Package images - pixel buffers, sizes and deterministic warmup content for
// filter benchmarks.
package images

import (
	"crypto/md5"
	"fmt"
	"image"
)

// Buffer is a tightly packed, row-major pixel buffer.
type Buffer struct {
	// The pixel format of the buffer.
	Format PixelFormat `json:"format" yaml:"format"`
	// The raw pixel data, native byte order for multi-byte channels.
	Data []byte `json:"-" yaml:"-"`
	// The width of the image.
	Width int `json:"width" yaml:"width"`
	// The height of the image.
	Height int `json:"height" yaml:"height"`
}

// NewBuffer allocates a zeroed buffer for the given size and format.
//
// Arguments:
// - size: The image dimensions.
// - format: The pixel format.
//
// Returns:
// - *Buffer: The allocated buffer.
// - error: If the size is not positive or the format is unknown.
func NewBuffer(size Size, format PixelFormat) (*Buffer, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("invalid buffer size %s", size)
	}
	if !format.Valid() {
		return nil, fmt.Errorf("invalid pixel format %s", format)
	}
	return &Buffer{
		Format: format,
		Data:   make([]byte, size.Width*size.Height*format.PixelSize()),
		Width:  size.Width,
		Height: size.Height,
	}, nil
}

// Size returns the buffer dimensions.
func (b *Buffer) Size() Size {
	return Size{Width: b.Width, Height: b.Height}
}

// Stride returns the number of bytes per row.
func (b *Buffer) Stride() int {
	return b.Width * b.Format.PixelSize()
}

// Checksum returns a hex MD5 digest of the pixel data, used to verify that two
// buffers hold identical content.
func (b *Buffer) Checksum() string {
	if len(b.Data) == 0 {
		return "empty"
	}
	sum := md5.Sum(b.Data)
	return fmt.Sprintf("%x", sum[:])
}

// RGBA returns an *image.RGBA that shares the buffer's memory.
// Only Format8UC4 buffers can be viewed this way.
func (b *Buffer) RGBA() (*image.RGBA, error) {
	if b.Format != Format8UC4 {
		return nil, fmt.Errorf("cannot view %s buffer as RGBA", b.Format)
	}
	return &image.RGBA{
		Pix:    b.Data,
		Stride: b.Stride(),
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}, nil
}
