package filters

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-filterbench/benchmark"
	"github.com/nvr-ai/go-filterbench/images"
	"github.com/nvr-ai/go-filterbench/images/kernels"
)

// gaussianSigma is the standard deviation used by both GaussianBlur paths.
const gaussianSigma = 0.5

// sink keeps native results reachable so the compiler cannot drop the work.
var sink image.Image

// nativeSetup prepares a pure-Go cycle from the warmup source image.
type nativeSetup func(env *benchmark.Env, src *image.RGBA, p Params) (benchmark.Cycle, error)

// randomKernel draws a k*k row-major kernel in [-1, 1) from the instance's
// auxiliary random stream. Both backends call it in the same order so they
// convolve with the same weights.
func randomKernel(env *benchmark.Env, k int) []float64 {
	rng := env.Rand()
	weights := make([]float64, k*k)
	for i := range weights {
		weights[i] = rng.Float64()*2 - 1
	}
	return weights
}

// toRGBA views buf as an image.RGBA.
func toRGBA(buf *images.Buffer) (*image.RGBA, error) {
	img, err := buf.RGBA()
	if err != nil {
		return nil, errors.Wrap(err, "native filters need an 8UC4 image")
	}
	return img, nil
}

func nativeBlur(_ *benchmark.Env, src *image.RGBA, p Params) (benchmark.Cycle, error) {
	box, err := kernels.NewBoxFilter((p.KSize-1)/2, kernels.EdgeReflect101)
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(src.Rect)
	sink = dst
	return func() error { return box.Apply(dst, src) }, nil
}

// nativeGaussianBlur ignores the kernel size: imaging derives the window from
// the sigma.
func nativeGaussianBlur(_ *benchmark.Env, src *image.RGBA, _ Params) (benchmark.Cycle, error) {
	return func() error {
		sink = imaging.Blur(src, gaussianSigma)
		return nil
	}, nil
}

func nativeFilter2D(env *benchmark.Env, src *image.RGBA, p Params) (benchmark.Cycle, error) {
	weights := randomKernel(env, p.KSize)
	opts := &imaging.ConvolveOptions{}

	switch p.KSize {
	case 3:
		var k [9]float64
		copy(k[:], weights)
		return func() error {
			sink = imaging.Convolve3x3(src, k, opts)
			return nil
		}, nil
	case 5:
		var k [25]float64
		copy(k[:], weights)
		return func() error {
			sink = imaging.Convolve5x5(src, k, opts)
			return nil
		}, nil
	default:
		return nil, benchmark.Unsupported("native", "Filter2D with a %dx%d kernel", p.KSize, p.KSize)
	}
}

func nativeResize(_ *benchmark.Env, src *image.RGBA, p Params) (benchmark.Cycle, error) {
	w := uint(scaled(src.Rect.Dx(), p.Scale))
	h := uint(scaled(src.Rect.Dy(), p.Scale))
	return func() error {
		sink = resize.Resize(w, h, src, resize.Bilinear)
		return nil
	}, nil
}
