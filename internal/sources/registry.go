package sources

import (
	"fmt"
	"strings"

	"github.com/IshaanNene/newsentiment/internal/types"
)

// Registry is an ordered, immutable set of compiled sources.
type Registry struct {
	order   []string
	sources map[string]*Compiled
}

// New validates and compiles the given sources. Names must be unique.
func New(list ...Source) (*Registry, error) {
	r := &Registry{sources: make(map[string]*Compiled, len(list))}
	for _, s := range list {
		c, err := s.compile()
		if err != nil {
			return nil, err
		}
		if _, dup := r.sources[c.Name]; dup {
			return nil, fmt.Errorf("duplicate source %q", c.Name)
		}
		r.sources[c.Name] = c
		r.order = append(r.order, c.Name)
	}
	if len(r.order) == 0 {
		return nil, fmt.Errorf("registry needs at least one source")
	}
	return r, nil
}

// Get returns the named source.
func (r *Registry) Get(name string) (*Compiled, error) {
	c, ok := r.sources[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownSource, name)
	}
	return c, nil
}

// Describe returns a copy of the named source's raw configuration.
func (r *Registry) Describe(name string) (Source, error) {
	c, err := r.Get(name)
	if err != nil {
		return Source{}, err
	}
	return c.Source.clone(), nil
}

// Names returns source names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns compiled sources in declaration order.
func (r *Registry) All() []*Compiled {
	out := make([]*Compiled, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.sources[name])
	}
	return out
}

// Len returns the number of sources.
func (r *Registry) Len() int { return len(r.order) }

// Filter returns a registry restricted to names, keeping declaration order.
// An empty list returns r unchanged.
func (r *Registry) Filter(names []string) (*Registry, error) {
	if len(names) == 0 {
		return r, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if _, ok := r.sources[n]; !ok {
			return nil, fmt.Errorf("%w: %q", types.ErrUnknownSource, n)
		}
		want[n] = true
	}
	out := &Registry{sources: make(map[string]*Compiled, len(want))}
	for _, name := range r.order {
		if want[name] {
			out.order = append(out.order, name)
			out.sources[name] = r.sources[name]
		}
	}
	return out, nil
}

// WithMethod returns a registry in which every source loads pages with m.
func (r *Registry) WithMethod(m Method) (*Registry, error) {
	list := make([]Source, 0, len(r.order))
	for _, name := range r.order {
		s := r.sources[name].Source.clone()
		s.Method = m
		list = append(list, s)
	}
	return New(list...)
}

// NeedsBrowser reports whether any source loads pages through the browser.
func (r *Registry) NeedsBrowser() bool {
	for _, c := range r.sources {
		if c.Method == MethodBrowser {
			return true
		}
	}
	return false
}

// Region returns the region of the named source, or "Other".
func (r *Registry) Region(name string) string {
	if c, ok := r.sources[name]; ok && c.Region != "" {
		return c.Region
	}
	return "Other"
}

// MethodOf returns how the named source is loaded, or "" when unknown.
func (r *Registry) MethodOf(name string) Method {
	if c, ok := r.sources[name]; ok {
		return c.Method
	}
	return ""
}
