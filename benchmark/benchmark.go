package benchmark

import (
	"strings"

	"github.com/nvr-ai/go-filterbench/images"
)

// Cycle is one timed execution of a case. It must do the same work on every
// call; setup belongs in the Body that returns it.
type Cycle func() error

// Body prepares one instance of a case and returns the cycle to time.
// Everything done before returning (input buffers, kernels, destination
// images) is untimed. Returning a *SkipError (see Skipf) or an
// *UnsupportedCombinationError skips the instance; any other error fails it.
type Body[P any] func(env *Env, p P) (Cycle, error)

// Case is a typed benchmark declaration.
type Case[P any] struct {
	// Name identifies the case in reports and filters. Must be unique and
	// must not contain '/'.
	Name string
	// Axes are combined in declaration order; the last axis varies fastest.
	Axes []Axis[P]
	// Fill selects the warmup content of buffers created with Env.NewBuffer.
	Fill images.FillStrategy
	// Body builds the timed cycle for one parameter tuple.
	Body Body[P]
}

// Instance identifies one (case, tuple) pair about to run on a device.
type Instance struct {
	// Case is the registered case name.
	Case string
	// Params is the case's parameter struct P for this tuple.
	Params any
	// Labels are the "axis=value" tuple labels in axis order.
	Labels []string
}

// ParamString joins the tuple labels with "/".
func (i Instance) ParamString() string {
	return strings.Join(i.Labels, "/")
}

// String returns "Case/axis=value/...".
func (i Instance) String() string {
	if len(i.Labels) == 0 {
		return i.Case
	}
	return i.Case + "/" + i.ParamString()
}

// Device is an execution backend that cases are run against.
type Device interface {
	// Name identifies the device in reports.
	Name() string
	// Supports returns nil when the device can run inst. A non-nil error makes
	// the harness record a skip without invoking the case body.
	Supports(inst Instance) error
}

// Reporter receives exactly one Record call per attempted instance, between
// one Begin and one End.
type Reporter interface {
	Begin(info RunInfo) error
	Record(res Result) error
	End(sum Summary) error
}
