package images

import (
	"fmt"
	"strings"
)

// PixelFormat identifies the element depth and channel count of an image buffer.
// The set is closed: every value below has a fixed layout and an exact OpenCV
// counterpart.
type PixelFormat int

// PixelFormat constants.
const (
	// Format8UC1 is one unsigned 8-bit channel (grayscale).
	Format8UC1 PixelFormat = iota + 1
	// Format8UC4 is four unsigned 8-bit channels (RGBA / BGRA).
	Format8UC4
	// Format32FC1 is one 32-bit float channel.
	Format32FC1
	// Format32FC4 is four 32-bit float channels.
	Format32FC4
)

// Depth is the storage type of a single channel value.
type Depth int

// Depth constants.
const (
	Depth8U Depth = iota + 1
	Depth32F
)

var formatNames = map[PixelFormat]string{
	Format8UC1:  "8UC1",
	Format8UC4:  "8UC4",
	Format32FC1: "32FC1",
	Format32FC4: "32FC4",
}

// AllPixelFormats returns every supported pixel format in declaration order.
func AllPixelFormats() []PixelFormat {
	return []PixelFormat{Format8UC1, Format8UC4, Format32FC1, Format32FC4}
}

// ParsePixelFormat parses names such as "8UC1" or "CV_32FC4".
func ParsePixelFormat(s string) (PixelFormat, error) {
	name := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "CV_")
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown pixel format %q", s)
}

// Valid reports whether f is one of the declared formats.
func (f PixelFormat) Valid() bool {
	_, ok := formatNames[f]
	return ok
}

// String returns the OpenCV-style short name, e.g. "8UC4".
func (f PixelFormat) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// Channels returns the number of interleaved channels per pixel.
func (f PixelFormat) Channels() int {
	switch f {
	case Format8UC1, Format32FC1:
		return 1
	case Format8UC4, Format32FC4:
		return 4
	default:
		return 0
	}
}

// Depth returns the per-channel storage type.
func (f PixelFormat) Depth() Depth {
	switch f {
	case Format8UC1, Format8UC4:
		return Depth8U
	case Format32FC1, Format32FC4:
		return Depth32F
	default:
		return 0
	}
}

// ElemSize returns the size in bytes of one channel value.
func (f PixelFormat) ElemSize() int {
	switch f.Depth() {
	case Depth8U:
		return 1
	case Depth32F:
		return 4
	default:
		return 0
	}
}

// PixelSize returns the size in bytes of one pixel.
func (f PixelFormat) PixelSize() int {
	return f.ElemSize() * f.Channels()
}
