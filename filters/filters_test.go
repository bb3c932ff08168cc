package filters

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-filterbench/benchmark"
	"github.com/nvr-ai/go-filterbench/benchmark/report"
	"github.com/nvr-ai/go-filterbench/device"
	"github.com/nvr-ai/go-filterbench/images"
)

var tiny = images.Size{Width: 32, Height: 24}

func quickConfig() *benchmark.Config {
	cfg := benchmark.DefaultConfig()
	cfg.TimeBudget = benchmark.Duration(time.Millisecond)
	cfg.MinSamples = 1
	cfg.MaxSamples = 2
	return cfg
}

func TestRegisterCatalogue(t *testing.T) {
	reg := benchmark.NewRegistry()
	require.NoError(t, Register(reg, Options{}))

	defs := reg.Definitions()
	require.Len(t, defs, len(catalogue))

	want := map[string]int{
		"Blur":         3 * 2 * 3,
		"Sobel":        3 * 3 * 7,
		"Scharr":       3 * 3,
		"GaussianBlur": 3 * 3 * 7,
		"Laplacian":    3 * 4 * 2,
		"Erode":        3 * 2,
		"Dilate":       3 * 2,
		"MorphologyEx": 3 * 2 * 5,
		"Filter2D":     3 * 4 * 7,
		"Resize":       3 * 2 * 2,
	}
	for i, def := range defs {
		assert.Equal(t, Names()[i], def.Name)
		assert.Equal(t, want[def.Name], def.Len(), def.Name)
		assert.Equal(t, "size", def.Axes[0])
		assert.Equal(t, "type", def.Axes[1])
		assert.Equal(t, images.FillRandom, def.Fill)
	}

	blur, ok := reg.Lookup("Blur")
	require.True(t, ok)
	var first benchmark.Instance
	for inst := range blur.Instances() {
		first = inst
		break
	}
	assert.Equal(t, "size=1280x720/type=8UC1/ksize=3", first.ParamString())
	assert.Equal(t, Params{Size: images.Size720p, Type: images.Format8UC1, KSize: 3}, first.Params)
}

func TestRegisterRejects(t *testing.T) {
	reg := benchmark.NewRegistry()
	err := Register(reg, Options{Sizes: []images.Size{{Width: 0, Height: 10}}})
	assert.ErrorIs(t, err, benchmark.ErrConfiguration)

	reg = benchmark.NewRegistry()
	require.NoError(t, Register(reg, Options{Sizes: []images.Size{tiny}}))
	assert.ErrorIs(t, Register(reg, Options{Sizes: []images.Size{tiny}}), benchmark.ErrConfiguration)
}

func TestRegisterTypes(t *testing.T) {
	reg := benchmark.NewRegistry()
	require.NoError(t, Register(reg, Options{Sizes: []images.Size{tiny}, Types: []images.PixelFormat{images.Format32FC4}}))

	defs := reg.Definitions()
	require.Len(t, defs, 2, "only Laplacian and Filter2D take 32FC4")
	assert.Equal(t, "Laplacian", defs[0].Name)
	assert.Equal(t, 2, defs[0].Len())
	assert.Equal(t, "Filter2D", defs[1].Name)
	assert.Equal(t, 7, defs[1].Len())

	reg = benchmark.NewRegistry()
	require.NoError(t, Register(reg, Options{Sizes: []images.Size{tiny}, Types: []images.PixelFormat{images.Format32FC1, images.Format8UC1}}))
	blur, ok := reg.Lookup("Blur")
	require.True(t, ok)
	for inst := range blur.Instances() {
		assert.Equal(t, images.Format8UC1, inst.Params.(Params).Type)
	}
	sobel, ok := reg.Lookup("Sobel")
	require.True(t, ok)
	var types []images.PixelFormat
	for inst := range sobel.Instances() {
		if p := inst.Params.(Params); p.KSize == 3 {
			types = append(types, p.Type)
		}
	}
	assert.Equal(t, []images.PixelFormat{images.Format8UC1, images.Format32FC1}, types, "the case's order is kept")

	err := Register(benchmark.NewRegistry(), Options{Types: []images.PixelFormat{images.PixelFormat(0)}})
	assert.ErrorIs(t, err, benchmark.ErrConfiguration)
}

func TestMorphOpMapping(t *testing.T) {
	seen := map[string]bool{}
	for _, op := range AllMorphOps() {
		_, err := op.morphType()
		require.NoError(t, err, op.String())
		assert.False(t, seen[op.String()], "duplicate name %s", op)
		seen[op.String()] = true
	}
	_, err := MorphOp(0).morphType()
	assert.Error(t, err)
	assert.Equal(t, "MorphOp(42)", MorphOp(42).String())
}

func TestMatTypeCoversEveryFormat(t *testing.T) {
	for _, f := range images.AllPixelFormats() {
		_, err := matType(f)
		assert.NoError(t, err, f.String())
	}
	_, err := matType(images.PixelFormat(0))
	assert.Error(t, err)
}

func TestNativeOperationsHaveImplementations(t *testing.T) {
	impl := map[string]bool{}
	for _, f := range catalogue {
		impl[f.name] = f.native != nil
	}
	for _, op := range device.NewNative().Operations() {
		assert.True(t, impl[op], "native device declares %s without an implementation", op)
	}
}

func TestOddKernels(t *testing.T) {
	assert.Equal(t, []int{3, 5, 7, 9, 11, 13, 15}, oddKernels(3, 15))
	assert.Equal(t, []int{1, 3}, oddKernels(0, 3))
	assert.Empty(t, oddKernels(5, 3))
	assert.Equal(t, 1, scaled(1, 0.1))
	assert.Equal(t, 64, scaled(32, 2))
}

func TestNativeRun(t *testing.T) {
	reg := benchmark.NewRegistry()
	require.NoError(t, Register(reg, Options{Sizes: []images.Size{tiny}}))

	c := &report.Collector{}
	sum, err := reg.RunAll(context.Background(), []benchmark.Device{device.NewNative()}, c, benchmark.RunOptions{Config: quickConfig()})
	require.NoError(t, err)

	assert.Equal(t, 0, sum.Failed)
	assert.Equal(t, 3+7+2+2, sum.Measured)
	assert.Equal(t, 105-sum.Measured, sum.Skipped)
	require.Len(t, c.Results, 105)

	for _, res := range c.Results {
		p := res.Labels
		switch res.Status {
		case benchmark.StatusMeasured:
			assert.Contains(t, p, "type=8UC4", res.Name())
			assert.NotZero(t, res.Measurement.Count())
		case benchmark.StatusSkipped:
			assert.NotEmpty(t, res.Reason, res.Name())
		}
	}
}

func TestBodyLogsInstance(t *testing.T) {
	reg := benchmark.NewRegistry()
	require.NoError(t, Register(reg, Options{Sizes: []images.Size{tiny}}))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := &report.Collector{}
	sum, err := reg.RunAll(context.Background(), []benchmark.Device{device.NewNative()}, c, benchmark.RunOptions{
		Config: quickConfig(),
		Filter: "Blur/size=32x24/type=8UC4/ksize=3",
		Logger: logger,
	})
	require.NoError(t, err)
	require.Equal(t, 1, sum.Measured)

	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, `msg="input ready"`) {
			line = l
		}
	}
	require.NotEmpty(t, line)
	assert.Contains(t, line, "case=Blur")
	assert.Contains(t, line, "device=native")
	assert.Contains(t, line, "bytes=3072")
}

func TestOpenCVRun(t *testing.T) {
	if testing.Short() {
		t.Skip("runs every OpenCV filter")
	}
	reg := benchmark.NewRegistry()
	require.NoError(t, Register(reg, Options{Sizes: []images.Size{tiny}}))

	c := &report.Collector{}
	sum, err := reg.RunAll(context.Background(), []benchmark.Device{device.NewOpenCV()}, c, benchmark.RunOptions{Config: quickConfig()})
	require.NoError(t, err)

	for _, res := range c.Results {
		assert.Equal(t, benchmark.StatusMeasured, res.Status, "%s: %s", res.Name(), res.Reason)
	}
	assert.Equal(t, 105, sum.Measured)
}

func TestNativeBlurMatchesBoxFilter(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 100
	}
	cycle, err := nativeBlur(nil, src, Params{KSize: 3})
	require.NoError(t, err)
	require.NoError(t, cycle())

	dst, ok := sink.(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, src.Pix, dst.Pix, "blurring a constant image is the identity")
}
