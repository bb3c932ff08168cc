package filters

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-filterbench/benchmark"
	"github.com/nvr-ai/go-filterbench/device"
	"github.com/nvr-ai/go-filterbench/images"
)

// Options configures the catalogue.
type Options struct {
	// Sizes is the image size axis shared by every case. Empty means
	// images.TypicalSizes().
	Sizes []images.Size
	// Types restricts every case's type axis to these formats. Cases that
	// support none of them are left out. Empty keeps each case's own list.
	Types []images.PixelFormat
}

// filter describes one catalogue entry.
type filter struct {
	name   string
	types  []images.PixelFormat
	extra  []benchmark.Axis[Params]
	opencv cvSetup
	native nativeSetup
}

var (
	formats8U     = []images.PixelFormat{images.Format8UC1, images.Format8UC4}
	formatsGrad   = []images.PixelFormat{images.Format8UC1, images.Format8UC4, images.Format32FC1}
	formatsAll    = images.AllPixelFormats()
	smoothKernels = oddKernels(3, 15)
)

// axes returns the size and type axes followed by the case's own axes.
func (f filter) axes(sizes []images.Size, types []images.PixelFormat) []benchmark.Axis[Params] {
	return append([]benchmark.Axis[Params]{sizeAxis(sizes), typeAxis(types...)}, f.extra...)
}

// formats returns the case's pixel formats that are also in only, keeping the
// case's order. Empty only keeps them all.
func (f filter) formats(only []images.PixelFormat) []images.PixelFormat {
	if len(only) == 0 {
		return f.types
	}
	var out []images.PixelFormat
	for _, t := range f.types {
		if slices.Contains(only, t) {
			out = append(out, t)
		}
	}
	return out
}

// catalogue lists the cases in registration order.
var catalogue = []filter{
	{
		name:   "Blur",
		types:  formats8U,
		extra:  []benchmark.Axis[Params]{ksizeAxis(3, 5, 7)},
		opencv: cvBlur,
		native: nativeBlur,
	},
	{
		name:   "Sobel",
		types:  formatsGrad,
		extra:  []benchmark.Axis[Params]{ksizeAxis(smoothKernels...)},
		opencv: cvSobel,
	},
	{
		name:   "Scharr",
		types:  formatsGrad,
		opencv: cvScharr,
	},
	{
		name:   "GaussianBlur",
		types:  formatsGrad,
		extra:  []benchmark.Axis[Params]{ksizeAxis(smoothKernels...)},
		opencv: cvGaussianBlur,
		native: nativeGaussianBlur,
	},
	{
		name:   "Laplacian",
		types:  formatsAll,
		extra:  []benchmark.Axis[Params]{ksizeAxis(1, 3)},
		opencv: cvLaplacian,
	},
	{
		name:   "Erode",
		types:  formats8U,
		opencv: cvErode,
	},
	{
		name:   "Dilate",
		types:  formats8U,
		opencv: cvDilate,
	},
	{
		name:   "MorphologyEx",
		types:  formats8U,
		extra:  []benchmark.Axis[Params]{opAxis(AllMorphOps()...)},
		opencv: cvMorphologyEx,
	},
	{
		name:   "Filter2D",
		types:  formatsAll,
		extra:  []benchmark.Axis[Params]{ksizeAxis(smoothKernels...)},
		opencv: cvFilter2D,
		native: nativeFilter2D,
	},
	{
		name:   "Resize",
		types:  formats8U,
		extra:  []benchmark.Axis[Params]{scaleAxis(0.5, 2.0)},
		opencv: cvResize,
		native: nativeResize,
	},
}

// Names returns the case names in registration order.
func Names() []string {
	names := make([]string, len(catalogue))
	for i, f := range catalogue {
		names[i] = f.name
	}
	return names
}

// Register adds every filter case to r.
//
// Arguments:
// - r: The registry to add the cases to.
// - opts: The catalogue options.
//
// Returns:
// - error: If a case could not be registered.
func Register(r *benchmark.Registry, opts Options) error {
	sizes := opts.Sizes
	if len(sizes) == 0 {
		sizes = images.TypicalSizes()
	}
	for _, s := range sizes {
		if !s.Valid() {
			return &benchmark.ConfigurationError{Reason: "invalid image size " + s.String()}
		}
	}
	for _, t := range opts.Types {
		if !t.Valid() {
			return &benchmark.ConfigurationError{Reason: "invalid pixel format " + t.String()}
		}
	}

	for _, f := range catalogue {
		types := f.formats(opts.Types)
		if len(types) == 0 {
			continue
		}
		_, err := benchmark.Register(r, benchmark.Case[Params]{
			Name: f.name,
			Axes: f.axes(sizes, types),
			Fill: images.FillRandom,
			Body: f.body,
		})
		if err != nil {
			return errors.Wrapf(err, "failed to register %s", f.name)
		}
	}
	return nil
}

// body allocates the warmup input and dispatches to the device's
// implementation.
func (f filter) body(env *benchmark.Env, p Params) (benchmark.Cycle, error) {
	buf, err := env.NewBuffer(p.Size, p.Type)
	if err != nil {
		return nil, err
	}

	log := env.Logger()
	log.Debug("input ready", "bytes", len(buf.Data))

	switch device.BackendOf(env.Device()) {
	case device.BackendNative:
		if f.native == nil {
			log.Debug("native backend declines case", "reason", "no implementation")
			return nil, benchmark.Skipf("no pure-Go implementation of %s", f.name)
		}
		src, err := toRGBA(buf)
		if err != nil {
			log.Debug("native backend declines input", "format", p.Type, "error", err)
			return nil, benchmark.Skipf("%v", err)
		}
		return f.native(env, src, p)
	default:
		src, err := toMat(env, buf)
		if err != nil {
			return nil, err
		}
		return f.opencv(env, src, newMat(env), p)
	}
}
