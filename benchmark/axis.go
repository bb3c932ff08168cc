package benchmark

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Axis is one named benchmark dimension. Each value is applied to the
// parameter struct P through a typed setter, so case bodies read fields
// instead of positional parameters.
type Axis[P any] struct {
	name   string
	labels []string
	apply  []func(*P)
}

// NewAxis creates an axis named name whose values are written into P by set.
// Values are labelled with their String method when they implement
// fmt.Stringer, and with fmt's %v formatting otherwise.
//
// Arguments:
// - name: The axis name used in report labels ("size", "ksize", ...).
// - set: Stores one value into the parameter struct.
// - values: The ordered values of the axis.
//
// Returns:
// - Axis[P]: The axis. Emptiness is checked when the axis is combined.
//
// @example
// sizes := NewAxis("size", func(p *Params, s images.Size) { p.Size = s }, images.TypicalSizes()...)
func NewAxis[P, V any](name string, set func(*P, V), values ...V) Axis[P] {
	a := Axis[P]{name: name}
	if set == nil {
		return a
	}
	for _, v := range values {
		a.labels = append(a.labels, formatLabel(v))
		a.apply = append(a.apply, func(p *P) { set(p, v) })
	}
	return a
}

func formatLabel(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}

// Name returns the axis name.
func (a Axis[P]) Name() string { return a.name }

// Len returns the number of values.
func (a Axis[P]) Len() int { return len(a.apply) }

// Labels returns the value labels in order.
func (a Axis[P]) Labels() []string { return slices.Clone(a.labels) }

// Tuple is one point of the Cartesian product: one value per axis, in axis
// order.
type Tuple[P any] struct {
	// Params holds every axis value applied to a zero P.
	Params P
	// Labels are "axis=value" strings in axis order.
	Labels []string
	// Index holds the value index chosen on each axis.
	Index []int
}

// String joins the labels with "/", e.g. "size=1280x720/type=8UC1".
func (t Tuple[P]) String() string {
	return strings.Join(t.Labels, "/")
}

// Combination is the Cartesian product of a list of axes. It is immutable and
// can be iterated any number of times.
type Combination[P any] struct {
	axes []Axis[P]
	size int
}

// Combine validates axes and returns their Cartesian product. Iteration order
// is odometer order: the last axis varies fastest. An empty axis list yields a
// single tuple with no labels.
//
// Returns a *ConfigurationError if an axis is unnamed, empty, or duplicates
// another axis name.
func Combine[P any](axes ...Axis[P]) (*Combination[P], error) {
	seen := make(map[string]bool, len(axes))
	size := 1
	for i, a := range axes {
		switch {
		case a.name == "":
			return nil, &ConfigurationError{Reason: fmt.Sprintf("axis %d has no name", i)}
		case strings.ContainsAny(a.name, "/="):
			return nil, &ConfigurationError{Reason: fmt.Sprintf("axis name %q must not contain '/' or '='", a.name)}
		case seen[a.name]:
			return nil, &ConfigurationError{Reason: fmt.Sprintf("axis %q is declared twice", a.name)}
		case a.Len() == 0:
			return nil, &ConfigurationError{Reason: fmt.Sprintf("axis %q has no values", a.name)}
		}
		seen[a.name] = true
		size *= a.Len()
	}
	return &Combination[P]{axes: slices.Clone(axes), size: size}, nil
}

// Len returns the number of tuples, the product of the axis lengths.
func (c *Combination[P]) Len() int { return c.size }

// AxisNames returns the axis names in order.
func (c *Combination[P]) AxisNames() []string {
	names := make([]string, len(c.axes))
	for i, a := range c.axes {
		names[i] = a.name
	}
	return names
}

// All returns a lazy sequence over every tuple. Each call starts a fresh
// iteration.
func (c *Combination[P]) All() iter.Seq[Tuple[P]] {
	return func(yield func(Tuple[P]) bool) {
		idx := make([]int, len(c.axes))
		for n := 0; n < c.size; n++ {
			if !yield(c.tuple(idx)) {
				return
			}
			for a := len(idx) - 1; a >= 0; a-- {
				idx[a]++
				if idx[a] < c.axes[a].Len() {
					break
				}
				idx[a] = 0
			}
		}
	}
}

func (c *Combination[P]) tuple(idx []int) Tuple[P] {
	t := Tuple[P]{
		Labels: make([]string, len(idx)),
		Index:  slices.Clone(idx),
	}
	for a, i := range idx {
		axis := c.axes[a]
		axis.apply[i](&t.Params)
		t.Labels[a] = axis.name + "=" + axis.labels[i]
	}
	return t
}
