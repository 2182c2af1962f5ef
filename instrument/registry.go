package instrument

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry resolves family and instrument type names.
type Registry struct {
	mu       sync.RWMutex
	families map[string]Family
	types    map[string]*Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{families: map[string]Family{}, types: map[string]*Type{}}
}

// AddFamily registers a family; an existing family of the same name is replaced.
func (r *Registry) AddFamily(f Family) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.families[f.Name()] = f
}

// AddType registers an explicitly named instrument type.
func (r *Registry) AddType(t *Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.Name] = t
}

// Family returns a registered family.
func (r *Registry) Family(name string) (Family, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.families[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFamily, name)
}

// Families lists registered families sorted by name.
func (r *Registry) Families() []Family {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Family, 0, len(r.families))
	for _, f := range r.families {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Type resolves a type name. Explicit types win; otherwise the longest
// family name that prefixes the name is used and the remainder is parsed
// as specifics, so IRS-SOFR-17Y needs no registration.
func (r *Registry) Type(name string) (*Type, error) {
	r.mu.RLock()
	if t, ok := r.types[name]; ok {
		r.mu.RUnlock()
		return t, nil
	}
	var best Family
	for fname, f := range r.families {
		if strings.HasPrefix(name, fname+"-") && (best == nil || len(fname) > len(best.Name())) {
			best = f
		}
	}
	r.mu.RUnlock()
	if best == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	t, err := NewType(best, strings.TrimPrefix(name, best.Name()+"-"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnknownType, name, err)
	}
	return t, nil
}

// Create quotes the named instrument type.
func (r *Registry) Create(name string, quote float64) (Instrument, error) {
	t, err := r.Type(name)
	if err != nil {
		return Instrument{}, err
	}
	return New(t, quote), nil
}

// CreateAll quotes several instruments from a name to quote map.
func (r *Registry) CreateAll(quotes map[string]float64) ([]Instrument, error) {
	names := make([]string, 0, len(quotes))
	for n := range quotes {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Instrument, 0, len(names))
	for _, n := range names {
		inst, err := r.Create(n, quotes[n])
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry of built-in families.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		registerBuiltins(defaultRegistry)
	})
	return defaultRegistry
}
