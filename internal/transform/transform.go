// Package transform defines the per-report table transformation contract
// and an explicit registry. Transforms are registered by report name at
// startup; there is no runtime module loading or naming-convention lookup.
package transform

import (
	"sort"
	"sync"

	"reportpipe/internal/table"
)

// Transformer reshapes a query result before it is written out.
type Transformer interface {
	Apply(table.Table) (table.Table, error)
}

// Func adapts a plain function to the Transformer interface.
type Func func(table.Table) (table.Table, error)

func (f Func) Apply(t table.Table) (table.Table, error) { return f(t) }

// Chain is an ordered list of transformers. It stops at the first error.
type Chain []Transformer

func (c Chain) Apply(t table.Table) (table.Table, error) {
	out := t
	var err error
	for _, tr := range c {
		if out, err = tr.Apply(out); err != nil {
			return out, err
		}
	}
	return out, nil
}

// Registry maps report names to their transformers. A report without an
// entry passes its table through untouched; absence is not an error.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Transformer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]Transformer{}}
}

// Register records (or replaces) the transformer for a report name.
func (r *Registry) Register(name string, t Transformer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = t
}

// Lookup returns the transformer registered for name, if any.
func (r *Registry) Lookup(name string) (Transformer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// Names returns the registered report names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
