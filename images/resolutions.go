package images

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Size describes image dimensions in pixels.
type Size struct {
	Width  int `json:"width"  yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Named sizes used by the filter benchmarks.
var (
	// Size720p is HD 720p (1280x720).
	Size720p = Size{Width: 1280, Height: 720}
	// SizeSXGA is SXGA (1280x1024).
	SizeSXGA = Size{Width: 1280, Height: 1024}
	// Size1080p is Full HD 1080p (1920x1080).
	Size1080p = Size{Width: 1920, Height: 1080}
	// SizeVGA is VGA (640x480).
	SizeVGA = Size{Width: 640, Height: 480}
	// Size4K is 4K UHD (3840x2160).
	Size4K = Size{Width: 3840, Height: 2160}
)

// sizeAliases maps short names accepted by ParseSize to sizes.
var sizeAliases = map[string]Size{
	"vga":   SizeVGA,
	"720p":  Size720p,
	"sxga":  SizeSXGA,
	"1080p": Size1080p,
	"4k":    Size4K,
}

// TypicalSizes returns the sizes every filter case is measured at by default:
// 720p, SXGA and 1080p.
func TypicalSizes() []Size {
	return []Size{Size720p, SizeSXGA, Size1080p}
}

// ParseSize parses "WxH" (e.g. "1280x720") or an alias such as "1080p".
func ParseSize(s string) (Size, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if sz, ok := sizeAliases[s]; ok {
		return sz, nil
	}
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return Size{}, fmt.Errorf("invalid size %q: want WxH", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Size{}, fmt.Errorf("invalid width in size %q: %w", s, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Size{}, fmt.Errorf("invalid height in size %q: %w", s, err)
	}
	sz := Size{Width: width, Height: height}
	if !sz.Valid() {
		return Size{}, fmt.Errorf("invalid size %q: dimensions must be positive", s)
	}
	return sz, nil
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Pixels returns Width*Height.
func (s Size) Pixels() int {
	return s.Width * s.Height
}

// MegaPixels returns the pixel count in millions rounded to two decimals
// (2.07 for 1080p).
func (s Size) MegaPixels() float64 {
	if !s.Valid() {
		return 0.0
	}
	mp := float64(s.Pixels()) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns "WxH".
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}
