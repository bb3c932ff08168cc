// Package filters - The image filter benchmark catalogue: OpenCV filters
// timed through gocv, and pure-Go counterparts for the native device.
package filters

import (
	"fmt"
	"strconv"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-filterbench/benchmark"
	"github.com/nvr-ai/go-filterbench/images"
)

// MorphOp selects a morphological operation for MorphologyEx.
type MorphOp int

const (
	MorphOpen MorphOp = iota + 1
	MorphClose
	MorphGradient
	MorphTopHat
	MorphBlackHat
)

// AllMorphOps returns every morphological operation.
func AllMorphOps() []MorphOp {
	return []MorphOp{MorphOpen, MorphClose, MorphGradient, MorphTopHat, MorphBlackHat}
}

func (op MorphOp) String() string {
	switch op {
	case MorphOpen:
		return "open"
	case MorphClose:
		return "close"
	case MorphGradient:
		return "gradient"
	case MorphTopHat:
		return "tophat"
	case MorphBlackHat:
		return "blackhat"
	default:
		return "MorphOp(" + strconv.Itoa(int(op)) + ")"
	}
}

// morphType maps op to the OpenCV operation code.
func (op MorphOp) morphType() (gocv.MorphType, error) {
	switch op {
	case MorphOpen:
		return gocv.MorphOpen, nil
	case MorphClose:
		return gocv.MorphClose, nil
	case MorphGradient:
		return gocv.MorphGradient, nil
	case MorphTopHat:
		return gocv.MorphTophat, nil
	case MorphBlackHat:
		return gocv.MorphBlackhat, nil
	default:
		return 0, fmt.Errorf("unknown morphological operation %d", int(op))
	}
}

// matType maps a pixel format to the OpenCV matrix type.
func matType(f images.PixelFormat) (gocv.MatType, error) {
	switch f {
	case images.Format8UC1:
		return gocv.MatTypeCV8UC1, nil
	case images.Format8UC4:
		return gocv.MatTypeCV8UC4, nil
	case images.Format32FC1:
		return gocv.MatTypeCV32FC1, nil
	case images.Format32FC4:
		return gocv.MatTypeCV32FC4, nil
	default:
		return 0, fmt.Errorf("pixel format %s has no OpenCV matrix type", f)
	}
}

// Params is the parameter tuple shared by every filter case. Cases only set
// the fields of the axes they declare.
type Params struct {
	Size  images.Size
	Type  images.PixelFormat
	KSize int
	Op    MorphOp
	Scale float64
}

// PixelFormat implements device.Workload.
func (p Params) PixelFormat() images.PixelFormat { return p.Type }

// KernelSize implements device.Workload.
func (p Params) KernelSize() int { return p.KSize }

func sizeAxis(sizes []images.Size) benchmark.Axis[Params] {
	return benchmark.NewAxis("size", func(p *Params, s images.Size) { p.Size = s }, sizes...)
}

func typeAxis(formats ...images.PixelFormat) benchmark.Axis[Params] {
	return benchmark.NewAxis("type", func(p *Params, f images.PixelFormat) { p.Type = f }, formats...)
}

func ksizeAxis(ksizes ...int) benchmark.Axis[Params] {
	return benchmark.NewAxis("ksize", func(p *Params, k int) { p.KSize = k }, ksizes...)
}

func opAxis(ops ...MorphOp) benchmark.Axis[Params] {
	return benchmark.NewAxis("op", func(p *Params, op MorphOp) { p.Op = op }, ops...)
}

func scaleAxis(scales ...float64) benchmark.Axis[Params] {
	return benchmark.NewAxis("scale", func(p *Params, s float64) { p.Scale = s }, scales...)
}

// oddKernels returns the odd kernel sizes in [from, to].
func oddKernels(from, to int) []int {
	var out []int
	for k := from | 1; k <= to; k += 2 {
		out = append(out, k)
	}
	return out
}
