package filters

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-filterbench/benchmark"
	"github.com/nvr-ai/go-filterbench/images"
)

// sameDepth asks OpenCV for a destination of the source depth.
const sameDepth = gocv.MatType(-1)

// cvSetup prepares an OpenCV cycle from the warmup source matrix.
type cvSetup func(env *benchmark.Env, src gocv.Mat, dst *gocv.Mat, p Params) (benchmark.Cycle, error)

// toMat copies buf into a Mat owned by the instance.
func toMat(env *benchmark.Env, buf *images.Buffer) (gocv.Mat, error) {
	mt, err := matType(buf.Format)
	if err != nil {
		return gocv.Mat{}, err
	}
	view, err := gocv.NewMatFromBytes(buf.Height, buf.Width, mt, buf.Data)
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "failed to wrap warmup buffer")
	}
	// The view aliases buf.Data; the clone owns its memory.
	mat := view.Clone()
	_ = view.Close()
	env.Cleanup(func() { _ = mat.Close() })
	return mat, nil
}

// newMat returns an empty Mat closed with the instance.
func newMat(env *benchmark.Env) *gocv.Mat {
	m := gocv.NewMat()
	env.Cleanup(func() { _ = m.Close() })
	return &m
}

// rectKernel returns the 3x3 rectangular structuring element used by the
// morphology cases.
func rectKernel(env *benchmark.Env) gocv.Mat {
	k := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	env.Cleanup(func() { _ = k.Close() })
	return k
}

func cvBlur(_ *benchmark.Env, src gocv.Mat, dst *gocv.Mat, p Params) (benchmark.Cycle, error) {
	ksize := image.Pt(p.KSize, p.KSize)
	return func() error { return gocv.Blur(src, dst, ksize) }, nil
}

func cvSobel(_ *benchmark.Env, src gocv.Mat, dst *gocv.Mat, p Params) (benchmark.Cycle, error) {
	return func() error {
		return gocv.Sobel(src, dst, sameDepth, 1, 1, p.KSize, 1, 0, gocv.BorderDefault)
	}, nil
}

func cvScharr(_ *benchmark.Env, src gocv.Mat, dst *gocv.Mat, _ Params) (benchmark.Cycle, error) {
	return func() error {
		return gocv.Scharr(src, dst, sameDepth, 1, 0, 1, 0, gocv.BorderDefault)
	}, nil
}

func cvGaussianBlur(_ *benchmark.Env, src gocv.Mat, dst *gocv.Mat, p Params) (benchmark.Cycle, error) {
	ksize := image.Pt(p.KSize, p.KSize)
	return func() error {
		return gocv.GaussianBlur(src, dst, ksize, gaussianSigma, 0, gocv.BorderDefault)
	}, nil
}

func cvLaplacian(_ *benchmark.Env, src gocv.Mat, dst *gocv.Mat, p Params) (benchmark.Cycle, error) {
	return func() error {
		return gocv.Laplacian(src, dst, sameDepth, p.KSize, 1, 0, gocv.BorderDefault)
	}, nil
}

func cvErode(env *benchmark.Env, src gocv.Mat, dst *gocv.Mat, _ Params) (benchmark.Cycle, error) {
	kernel := rectKernel(env)
	return func() error { return gocv.Erode(src, dst, kernel) }, nil
}

func cvDilate(env *benchmark.Env, src gocv.Mat, dst *gocv.Mat, _ Params) (benchmark.Cycle, error) {
	kernel := rectKernel(env)
	return func() error { return gocv.Dilate(src, dst, kernel) }, nil
}

func cvMorphologyEx(env *benchmark.Env, src gocv.Mat, dst *gocv.Mat, p Params) (benchmark.Cycle, error) {
	op, err := p.Op.morphType()
	if err != nil {
		return nil, err
	}
	kernel := rectKernel(env)
	return func() error { return gocv.MorphologyEx(src, dst, op, kernel) }, nil
}

func cvFilter2D(env *benchmark.Env, src gocv.Mat, dst *gocv.Mat, p Params) (benchmark.Cycle, error) {
	weights := randomKernel(env, p.KSize)
	kernel := gocv.NewMatWithSize(p.KSize, p.KSize, gocv.MatTypeCV32FC1)
	env.Cleanup(func() { _ = kernel.Close() })
	for i, w := range weights {
		kernel.SetFloatAt(i/p.KSize, i%p.KSize, float32(w))
	}
	anchor := image.Pt(-1, -1)
	return func() error {
		return gocv.Filter2D(src, dst, sameDepth, kernel, anchor, 0, gocv.BorderDefault)
	}, nil
}

func cvResize(_ *benchmark.Env, src gocv.Mat, dst *gocv.Mat, p Params) (benchmark.Cycle, error) {
	return func() error {
		return gocv.Resize(src, dst, image.Point{}, p.Scale, p.Scale, gocv.InterpolationLinear)
	}, nil
}

// scaled returns round(n*scale), at least 1.
func scaled(n int, scale float64) int {
	return max(1, int(math.Round(float64(n)*scale)))
}
