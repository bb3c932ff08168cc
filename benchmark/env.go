package benchmark

import (
	"log/slog"
	"math/rand/v2"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-filterbench/images"
)

// Env is handed to a case body while it sets up one instance. It hands out
// deterministically filled input buffers and collects cleanup functions that
// run once the instance has been measured.
type Env struct {
	device   Device
	instance Instance
	seed     uint64
	fill     images.FillStrategy
	logger   *slog.Logger

	streams  int
	cleanups []func()
}

func newEnv(device Device, inst Instance, seed uint64, fill images.FillStrategy, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Env{
		device:   device,
		instance: inst,
		seed:     seed,
		fill:     fill,
		logger:   logger,
	}
}

// Device returns the device the instance runs on.
func (e *Env) Device() Device { return e.device }

// Instance returns the instance being set up.
func (e *Env) Instance() Instance { return e.instance }

// Logger returns the run logger annotated with the instance.
func (e *Env) Logger() *slog.Logger {
	return e.logger.With("case", e.instance.Case, "params", e.instance.ParamString(), "device", e.device.Name())
}

// NewBuffer allocates a buffer and fills it with the case's warmup strategy.
// The n-th buffer or Rand of an instance always gets the same content for the
// same warmup seed, independent of the device and of other instances.
func (e *Env) NewBuffer(size images.Size, format images.PixelFormat) (*images.Buffer, error) {
	buf, err := images.NewBuffer(size, format)
	if err != nil {
		return nil, errors.Wrap(err, "allocating warmup buffer")
	}
	if err := images.Fill(buf, e.fill, e.nextSeed()); err != nil {
		return nil, errors.Wrap(err, "filling warmup buffer")
	}
	return buf, nil
}

// Rand returns a generator for auxiliary random data such as convolution
// kernels, seeded like NewBuffer.
func (e *Env) Rand() *rand.Rand {
	s := e.nextSeed()
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// Cleanup registers fn to run after the instance finishes. Functions run in
// reverse registration order.
func (e *Env) Cleanup(fn func()) {
	e.cleanups = append(e.cleanups, fn)
}

func (e *Env) nextSeed() uint64 {
	e.streams++
	return mixSeed(e.seed, uint64(e.streams))
}

func (e *Env) close() {
	for i := len(e.cleanups) - 1; i >= 0; i-- {
		e.cleanups[i]()
	}
	e.cleanups = nil
}

// mixSeed derives the seed of stream n with the splitmix64 finalizer.
func mixSeed(seed, n uint64) uint64 {
	z := seed + n*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
