// Package device - Execution backends that filter benchmarks run against.
package device

import (
	"fmt"
	"runtime"
	"slices"
	"sort"
	"strings"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-filterbench/benchmark"
	"github.com/nvr-ai/go-filterbench/images"
)

// Backend represents the implementation a device dispatches filters to.
type Backend string

const (
	// BackendOpenCV runs filters through OpenCV via gocv.
	BackendOpenCV Backend = "opencv"

	// BackendNative runs pure-Go filter implementations.
	BackendNative Backend = "native"
)

// Backends returns every known backend in priority order.
func Backends() []Backend {
	return []Backend{BackendOpenCV, BackendNative}
}

// Workload is implemented by case parameter structs so a device can decide
// support without knowing the concrete case types.
type Workload interface {
	PixelFormat() images.PixelFormat
	KernelSize() int
}

// Capability decides whether a backend can run operation op on workload w.
// w is nil when the case parameters do not describe a workload.
type Capability func(op string, w Workload) error

// Context represents one execution backend. It is created once at start up
// and read-only afterwards.
type Context struct {
	// Backend identifies the implementation.
	Backend Backend `json:"backend" yaml:"backend"`

	// Properties describes the backend (library versions, threads).
	Properties map[string]string `json:"properties" yaml:"properties"`

	// Priority orders the contexts selected by "all", highest first.
	Priority int `json:"priority" yaml:"priority"`

	capability Capability
	operations []string
}

// Name returns the backend name.
func (c *Context) Name() string { return string(c.Backend) }

// Supports implements benchmark.Device.
func (c *Context) Supports(inst benchmark.Instance) error {
	if c.capability == nil {
		return nil
	}
	w, _ := inst.Params.(Workload)
	return c.capability(inst.Case, w)
}

// Operations returns the operations the context restricts itself to, or nil
// when it accepts every operation.
func (c *Context) Operations() []string {
	return slices.Clone(c.operations)
}

// String returns the name followed by the properties.
func (c *Context) String() string {
	keys := make([]string, 0, len(c.Properties))
	for k := range c.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + c.Properties[k]
	}
	return fmt.Sprintf("%s (%s)", c.Name(), strings.Join(parts, ", "))
}

// NewOpenCV creates the OpenCV context. It supports every operation and
// pixel format the filter catalogue declares.
func NewOpenCV() *Context {
	return &Context{
		Backend: BackendOpenCV,
		Properties: map[string]string{
			"opencv": gocv.OpenCVVersion(),
			"gocv":   gocv.Version(),
			"cpus":   fmt.Sprint(runtime.NumCPU()),
		},
		Priority: 10,
	}
}

// nativeOps lists the operations with a pure-Go implementation and their
// extra kernel size limits. A nil slice means any kernel size.
var nativeOps = map[string][]int{
	"Blur":         nil,
	"GaussianBlur": nil,
	"Filter2D":     {3, 5},
	"Resize":       nil,
}

// NewNative creates the pure-Go context. It only handles 8UC4 images and the
// operations in nativeOps.
func NewNative() *Context {
	ops := make([]string, 0, len(nativeOps))
	for op := range nativeOps {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	return &Context{
		Backend: BackendNative,
		Properties: map[string]string{
			"go":      runtime.Version(),
			"threads": "1",
		},
		Priority:   1,
		capability: nativeCapability,
		operations: ops,
	}
}

func nativeCapability(op string, w Workload) error {
	name := string(BackendNative)
	sizes, ok := nativeOps[op]
	if !ok {
		return benchmark.Unsupported(name, "no pure-Go implementation of %s", op)
	}
	if w == nil {
		return benchmark.Unsupported(name, "%s parameters do not describe an image workload", op)
	}
	if f := w.PixelFormat(); f != images.Format8UC4 {
		return benchmark.Unsupported(name, "%s supports only 8UC4 images, got %s", op, f)
	}
	if sizes != nil && !slices.Contains(sizes, w.KernelSize()) {
		return benchmark.Unsupported(name, "%s supports kernel sizes %v, got %d", op, sizes, w.KernelSize())
	}
	return nil
}

// New creates the context for a backend.
//
// Arguments:
// - backend: The backend to create.
//
// Returns:
// - *Context: The context.
// - error: If the backend is unknown.
func New(backend Backend) (*Context, error) {
	switch backend {
	case BackendOpenCV:
		return NewOpenCV(), nil
	case BackendNative:
		return NewNative(), nil
	default:
		return nil, fmt.Errorf("unknown device %q (want %s or all)", backend, strings.Join(Names(), ", "))
	}
}

// Lookup creates the contexts for the named backends, in the given order.
// "all" selects every backend, ordered by Priority.
func Lookup(names ...string) ([]benchmark.Device, error) {
	if len(names) == 1 && names[0] == "all" {
		ctxs := make([]*Context, 0, len(Backends()))
		for _, b := range Backends() {
			ctx, err := New(b)
			if err != nil {
				return nil, err
			}
			ctxs = append(ctxs, ctx)
		}
		byPriority(ctxs)

		devices := make([]benchmark.Device, len(ctxs))
		for i, ctx := range ctxs {
			devices[i] = ctx
		}
		return devices, nil
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no device requested")
	}

	seen := make(map[Backend]bool, len(names))
	devices := make([]benchmark.Device, 0, len(names))
	for _, name := range names {
		backend := Backend(strings.ToLower(strings.TrimSpace(name)))
		if seen[backend] {
			return nil, fmt.Errorf("device %q requested twice", name)
		}
		seen[backend] = true

		ctx, err := New(backend)
		if err != nil {
			return nil, err
		}
		devices = append(devices, ctx)
	}
	return devices, nil
}

// Names returns every backend name.
func Names() []string {
	backends := Backends()
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = string(b)
	}
	return names
}

// byPriority sorts ctxs by descending Priority, keeping the order of equal
// priorities.
func byPriority(ctxs []*Context) {
	slices.SortStableFunc(ctxs, func(a, b *Context) int {
		return b.Priority - a.Priority
	})
}

// BackendOf returns the backend of d, or "" when d is not a *Context.
func BackendOf(d benchmark.Device) Backend {
	if c, ok := d.(*Context); ok {
		return c.Backend
	}
	return ""
}
