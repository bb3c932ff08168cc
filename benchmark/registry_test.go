package benchmark

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-filterbench/images"
)

func TestRegisterKeepsOrderAndMetadata(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"Sobel", "Blur", "Erode"} {
		_, err := Register(reg, Case[imgParams]{Name: name, Axes: imgAxes("A", "B", "C"), Body: noop, Fill: images.FillPattern})
		require.NoError(t, err)
	}

	defs := reg.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "Sobel", defs[0].Name)
	assert.Equal(t, "Blur", defs[1].Name)
	assert.Equal(t, "Erode", defs[2].Name)
	assert.Equal(t, []string{"size", "format"}, defs[0].Axes)
	assert.Equal(t, 6, defs[0].Len())
	assert.Equal(t, images.FillPattern, defs[0].Fill)

	def, ok := reg.Lookup("Blur")
	require.True(t, ok)
	assert.Same(t, defs[1], def)

	var labels []string
	for inst := range def.Instances() {
		labels = append(labels, inst.String())
	}
	assert.Equal(t, []string{
		"Blur/size=64x64/format=A",
		"Blur/size=64x64/format=B",
		"Blur/size=64x64/format=C",
		"Blur/size=128x128/format=A",
		"Blur/size=128x128/format=B",
		"Blur/size=128x128/format=C",
	}, labels)
}

func TestRegisterErrors(t *testing.T) {
	reg := NewRegistry()
	MustRegister(reg, Case[imgParams]{Name: "Blur", Body: noop})

	testCases := []struct {
		name string
		c    Case[imgParams]
	}{
		{"empty name", Case[imgParams]{Body: noop}},
		{"slash in name", Case[imgParams]{Name: "a/b", Body: noop}},
		{"nil body", Case[imgParams]{Name: "NoBody"}},
		{"empty axis", Case[imgParams]{Name: "Empty", Body: noop, Axes: imgAxes()}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Register(reg, tc.c)
			require.Error(t, err)
			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr), "got %T", err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}

	_, err := Register(reg, Case[imgParams]{Name: "Blur", Body: noop})
	var dup *DuplicateNameError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "Blur", dup.Name)
	assert.ErrorIs(t, err, ErrConfiguration)

	assert.Len(t, reg.Definitions(), 1, "failed registrations must not be stored")
	assert.Panics(t, func() { MustRegister(reg, Case[imgParams]{Name: "Blur", Body: noop}) })
}

func TestListMatching(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"Blur", "GaussianBlur", "Sobel", "Scharr"} {
		MustRegister(reg, Case[imgParams]{Name: name, Body: noop})
	}

	testCases := []struct {
		pattern string
		want    []string
	}{
		{"", []string{"Blur", "GaussianBlur", "Sobel", "Scharr"}},
		{"Blur", []string{"Blur", "GaussianBlur"}},
		{"^Blur$", []string{"Blur"}},
		{"S", []string{"Sobel", "Scharr"}},
		{"Sobel|Scharr/size=64", []string{"Sobel", "Scharr"}},
		{"Laplacian", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.pattern, func(t *testing.T) {
			defs, err := reg.ListMatching(tc.pattern)
			require.NoError(t, err)
			var got []string
			for _, d := range defs {
				got = append(got, d.Name)
			}
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := reg.ListMatching("[")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestMatcherLevels(t *testing.T) {
	testCases := []struct {
		pattern string
		name    string
		labels  []string
		want    bool
	}{
		{"", "Blur", []string{"size=1x1"}, true},
		{"Blur", "Blur", []string{"size=1x1", "type=8UC1"}, true},
		{"Blur/size=1x1", "Blur", []string{"size=1x1", "type=8UC1"}, true},
		{"Blur/size=2x2", "Blur", []string{"size=1x1", "type=8UC1"}, false},
		{"Blur//8UC4", "Blur", []string{"size=1x1", "type=8UC1"}, false},
		{"Blur//8UC4", "Blur", []string{"size=1x1", "type=8UC4"}, true},
		{"Blur/x/y/z", "Blur", nil, true},
		{"Sobel", "Blur", nil, false},
	}

	for _, tc := range testCases {
		m, err := newMatcher(tc.pattern)
		require.NoError(t, err)
		got := m.matchCase(tc.name) && m.matchLabels(tc.labels)
		assert.Equal(t, tc.want, got, "pattern %q labels %v", tc.pattern, tc.labels)
	}
}

func TestEnvBuffersAreDeterministic(t *testing.T) {
	dev := &fakeDevice{name: "cpu"}
	inst := Instance{Case: "Blur"}
	size := images.Size{Width: 16, Height: 8}

	first := newEnv(dev, inst, 42, images.FillRandom, nil)
	a1, err := first.NewBuffer(size, images.Format8UC4)
	require.NoError(t, err)
	a2, err := first.NewBuffer(size, images.Format8UC4)
	require.NoError(t, err)

	second := newEnv(dev, inst, 42, images.FillRandom, nil)
	b1, err := second.NewBuffer(size, images.Format8UC4)
	require.NoError(t, err)

	other := newEnv(dev, inst, 43, images.FillRandom, nil)
	c1, err := other.NewBuffer(size, images.Format8UC4)
	require.NoError(t, err)

	assert.Equal(t, a1.Data, b1.Data)
	assert.NotEqual(t, a1.Data, a2.Data, "successive buffers use distinct streams")
	assert.NotEqual(t, a1.Data, c1.Data)

	_, err = first.NewBuffer(images.Size{}, images.Format8UC4)
	assert.Error(t, err)
}

func TestEnvRandIsSeeded(t *testing.T) {
	dev := &fakeDevice{name: "cpu"}
	a := newEnv(dev, Instance{}, 7, images.FillRandom, nil).Rand()
	b := newEnv(dev, Instance{}, 7, images.FillRandom, nil).Rand()
	for i := 0; i < 8; i++ {
		assert.Equal(t, a.Float32(), b.Float32())
	}
}

func TestEnvLoggerAnnotatesInstance(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	inst := Instance{Case: "Blur", Labels: []string{"size=4x4", "format=A"}}

	newEnv(&fakeDevice{name: "cpu"}, inst, 1, images.FillRandom, logger).Logger().Debug("hello")
	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "case=Blur")
	assert.Contains(t, out, `params="size=4x4/format=A"`)
	assert.Contains(t, out, "device=cpu")

	assert.NotPanics(t, func() {
		newEnv(&fakeDevice{name: "cpu"}, inst, 1, images.FillRandom, nil).Logger().Info("dropped")
	})
}

func TestErrorMessages(t *testing.T) {
	f := &ExecutionFailure{Case: "Blur", Params: "size=1x1", Device: "cpu", Phase: PhaseSample, Sample: 3, Err: errors.New("bad")}
	assert.Equal(t, "Blur/size=1x1 on cpu failed during sample (sample 3): bad", f.Error())

	f = &ExecutionFailure{Case: "Blur", Device: "cpu", Phase: PhaseSetup, Sample: -1, Err: errors.New("bad")}
	assert.Equal(t, "Blur on cpu failed during setup: bad", f.Error())

	assert.Equal(t, "cpu: unsupported: no 16-bit", Unsupported("cpu", "no %d-bit", 16).Error())
	assert.Equal(t, "skipped: later", Skipf("later").Error())
	assert.Equal(t, `benchmark case "Blur" is already registered`, (&DuplicateNameError{Name: "Blur"}).Error())
}
