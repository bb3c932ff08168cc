package benchmark

import (
	"fmt"
	"iter"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-filterbench/images"
)

// Definition is a registered case with its type parameter erased.
type Definition struct {
	// Name is the case name.
	Name string
	// Axes are the axis names in declaration order.
	Axes []string
	// Fill is the warmup strategy of the case.
	Fill images.FillStrategy

	size  int
	plans func() iter.Seq[plan]
}

// plan is one tuple of a definition, ready to be set up on a device.
type plan struct {
	instance Instance
	setup    func(env *Env) (Cycle, error)
}

// Len returns the number of tuples of the case.
func (d *Definition) Len() int { return d.size }

// Instances returns the case's instances in odometer order.
func (d *Definition) Instances() iter.Seq[Instance] {
	return func(yield func(Instance) bool) {
		for p := range d.plans() {
			if !yield(p.instance) {
				return
			}
		}
	}
}

// Registry holds case definitions in registration order.
type Registry struct {
	defs   []*Definition
	byName map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Definition)}
}

// Register validates c and appends it to the registry.
//
// Arguments:
// - r: The registry.
// - c: The typed case declaration.
//
// Returns:
// - *Definition: The stored definition.
// - error: A *DuplicateNameError when the name is taken, a *ConfigurationError
// for an empty or invalid name, a nil body or an invalid axis.
func Register[P any](r *Registry, c Case[P]) (*Definition, error) {
	switch {
	case c.Name == "":
		return nil, &ConfigurationError{Reason: "case has no name"}
	case strings.Contains(c.Name, "/"):
		return nil, &ConfigurationError{Reason: fmt.Sprintf("case name %q must not contain '/'", c.Name)}
	case c.Body == nil:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("case %q has no body", c.Name)}
	}
	if _, ok := r.byName[c.Name]; ok {
		return nil, &DuplicateNameError{Name: c.Name}
	}

	combo, err := Combine(c.Axes...)
	if err != nil {
		return nil, errors.Wrapf(err, "case %q", c.Name)
	}

	body := c.Body
	name := c.Name
	def := &Definition{
		Name: name,
		Axes: combo.AxisNames(),
		Fill: c.Fill,
		size: combo.Len(),
		plans: func() iter.Seq[plan] {
			return func(yield func(plan) bool) {
				for t := range combo.All() {
					params := t.Params
					p := plan{
						instance: Instance{Case: name, Params: params, Labels: t.Labels},
						setup:    func(env *Env) (Cycle, error) { return body(env, params) },
					}
					if !yield(p) {
						return
					}
				}
			}
		},
	}

	r.defs = append(r.defs, def)
	r.byName[name] = def
	return def, nil
}

// MustRegister is like Register but panics on error. It is meant for static
// case tables.
func MustRegister[P any](r *Registry, c Case[P]) *Definition {
	def, err := Register(r, c)
	if err != nil {
		panic(err)
	}
	return def
}

// Definitions returns every definition in registration order.
func (r *Registry) Definitions() []*Definition {
	out := make([]*Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	def, ok := r.byName[name]
	return def, ok
}

// ListMatching returns the definitions whose name matches the first element
// of pattern, in registration order. An empty pattern matches every case.
func (r *Registry) ListMatching(pattern string) ([]*Definition, error) {
	m, err := newMatcher(pattern)
	if err != nil {
		return nil, err
	}
	return r.matching(m), nil
}

func (r *Registry) matching(m *matcher) []*Definition {
	var out []*Definition
	for _, def := range r.defs {
		if m.matchCase(def.Name) {
			out = append(out, def)
		}
	}
	return out
}
