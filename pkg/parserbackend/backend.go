// Package parserbackend implements the REDESIGN FLAG in spec.md §9: the
// original source selected its parser through a global mutable variable;
// this package replaces that with an explicit Backend interface and a
// Registry callers construct and pass down, never a package-level global.
// Modeled on pkg/lang.Parser's interface-boundary shape, generalized from
// "one concrete grammar" to "one of several named backends".
package parserbackend

import (
	"fmt"
	"sort"
	"sync"

	"semls/pkg/astnode"
)

// Backend turns source text into the astnode.Node tree the resolver core
// (pkg/resolve) consumes. A concrete grammar is an external collaborator
// per spec.md §1; this interface is the seam it plugs into.
type Backend interface {
	// Name identifies this backend for config.IndexConfig.Backend / the
	// Registry's lookup key.
	Name() string
	// Parse produces the root node of path's AST, or an error if src
	// could not be parsed at all (a syntax error inside one declaration
	// should not prevent every other declaration in the file from being
	// indexed — a Backend is expected to recover locally where it can and
	// only return an error for input it cannot make any sense of).
	Parse(path string, src []byte) (astnode.Node, error)
}

// Registry holds named backends and is passed explicitly into
// pkg/indexer.Builder, never read from a global.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register adds or replaces the backend under its own Name().
func (r *Registry) Register(b Backend) {
	if b == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[b.Name()] = b
}

// Get looks up a backend by name.
func (r *Registry) Get(name string) (Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	return b, ok
}

// Names returns every registered backend name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDefaultRegistry returns a Registry with the two backends this repo
// ships registered: "reference" and "external".
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewReferenceBackend())
	r.Register(NewExternalBackend())
	return r
}

// unimplementedError is returned by the external backend's Parse until a
// caller supplies a real grammar.
type unimplementedError struct{ backend string }

func (e unimplementedError) Error() string {
	return fmt.Sprintf("parserbackend: %q has no concrete grammar linked into this binary", e.backend)
}
