package benchmark

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrConfiguration is matched by every error that rejects a benchmark
// declaration or run configuration before anything is measured.
var ErrConfiguration = errors.New("benchmark configuration error")

// ConfigurationError reports an invalid axis, case, or run setting.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid benchmark configuration: " + e.Reason
}

// Unwrap allows errors.Is(err, ErrConfiguration).
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// DuplicateNameError reports a second case registered under an existing name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("benchmark case %q is already registered", e.Name)
}

// Unwrap allows errors.Is(err, ErrConfiguration).
func (e *DuplicateNameError) Unwrap() error { return ErrConfiguration }

// UnsupportedCombinationError is returned by a Device when it cannot run an
// instance. The instance is reported as skipped.
type UnsupportedCombinationError struct {
	Device string
	Reason string
}

func (e *UnsupportedCombinationError) Error() string {
	return fmt.Sprintf("%s: unsupported: %s", e.Device, e.Reason)
}

// Unsupported builds an *UnsupportedCombinationError for device.
func Unsupported(device, format string, args ...any) error {
	return &UnsupportedCombinationError{Device: device, Reason: fmt.Sprintf(format, args...)}
}

// SkipError is returned from a case body that decides at setup time that it
// cannot run the instance. The instance is reported as skipped.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string { return "skipped: " + e.Reason }

// Skipf returns a *SkipError with a formatted reason.
func Skipf(format string, args ...any) error {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}

// Phase names the stage of an instance in which a failure happened.
type Phase string

const (
	PhaseSetup  Phase = "setup"
	PhaseWarmup Phase = "warmup"
	PhaseSample Phase = "sample"
)

// ExecutionFailure reports a case body that failed or panicked while an
// instance was being set up or measured.
type ExecutionFailure struct {
	Case   string
	Params string
	Device string
	Phase  Phase
	// Sample is the 0-based index of the failing sample, -1 outside PhaseSample.
	Sample int
	Err    error
}

func (e *ExecutionFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", e.Case)
	if e.Params != "" {
		fmt.Fprintf(&b, "/%s", e.Params)
	}
	fmt.Fprintf(&b, " on %s failed during %s", e.Device, e.Phase)
	if e.Phase == PhaseSample {
		fmt.Fprintf(&b, " (sample %d)", e.Sample)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ExecutionFailure) Unwrap() error { return e.Err }

// PanicError carries a value recovered from a panicking case body.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// classify reports whether err means "skip this instance" and the reason to
// record for it.
func classify(err error) (skip bool, reason string) {
	var unsupported *UnsupportedCombinationError
	if errors.As(err, &unsupported) {
		return true, unsupported.Reason
	}
	var skipped *SkipError
	if errors.As(err, &skipped) {
		return true, skipped.Reason
	}
	return false, err.Error()
}
