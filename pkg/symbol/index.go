package symbol

import (
	"strings"
	"sync"
)

// ReadableIndex is the read-side contract feature handlers depend on.
// Concrete parsers/resolvers depend only on this, never on ProjectIndex's
// mutators, matching the teacher's own interface-vs-concrete split
// (pkg/scope's Graph is concrete; this mirrors spec.md's explicit
// ReadableIndex/ProjectIndex split instead).
type ReadableIndex interface {
	// GetDefinition looks up fqn in project, then dependencies. If still
	// missing, globalFallback is true, and fqn contains a namespace
	// separator, strips to the last segment and retries. Never raises;
	// absence is reported via ok=false.
	GetDefinition(fqn FQN, globalFallback bool) (Definition, bool)
	References(fqn FQN) []Location
}

// ProjectIndex is the concrete, mutable Index: project definitions take
// precedence over dependency definitions on lookup.
type ProjectIndex struct {
	mu           sync.RWMutex
	project      map[FQN]Definition
	dependencies map[FQN]Definition
	references   map[FQN][]Location
}

// NewProjectIndex builds an empty Index.
func NewProjectIndex() *ProjectIndex {
	return &ProjectIndex{
		project:      make(map[FQN]Definition),
		dependencies: make(map[FQN]Definition),
		references:   make(map[FQN][]Location),
	}
}

var _ ReadableIndex = (*ProjectIndex)(nil)

// GetDefinition implements ReadableIndex. Global fallback is the caller's
// decision (spec.md §4.2): it is only correct for function-call and
// constant-fetch FQNs, never for variables or member access, so this
// method applies the flag exactly as given without inspecting fqn's shape
// beyond the namespace-separator check.
func (idx *ProjectIndex) GetDefinition(fqn FQN, globalFallback bool) (Definition, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.getDefinitionLocked(fqn, globalFallback)
}

func (idx *ProjectIndex) getDefinitionLocked(fqn FQN, globalFallback bool) (Definition, bool) {
	if d, ok := idx.project[fqn]; ok {
		return d, true
	}
	if d, ok := idx.dependencies[fqn]; ok {
		return d, true
	}
	if !globalFallback {
		return Definition{}, false
	}
	last := strings.LastIndex(fqn, `\`)
	if last < 0 {
		return Definition{}, false
	}
	bare := fqn[last+1:]
	if d, ok := idx.project[bare]; ok {
		return d, true
	}
	if d, ok := idx.dependencies[bare]; ok {
		return d, true
	}
	return Definition{}, false
}

// SetDefinition stores def under fqn in the project tier.
func (idx *ProjectIndex) SetDefinition(fqn FQN, def Definition) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.project[fqn] = def
}

// SetDependencyDefinition stores def under fqn in the dependencies tier.
func (idx *ProjectIndex) SetDependencyDefinition(fqn FQN, def Definition) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.dependencies[fqn] = def
}

// RemoveDefinitionsForURI drops every project definition whose source
// location points into uri — the invalidation step a re-parse performs
// before inserting the new pass's definitions.
func (idx *ProjectIndex) RemoveDefinitionsForURI(uri string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for fqn, def := range idx.project {
		if docURI, ok := def.URI(); ok && docURI == uri {
			delete(idx.project, fqn)
		}
	}
}

// AddReference records that fqn is referenced at loc.
func (idx *ProjectIndex) AddReference(fqn FQN, loc Location) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.references[fqn] = append(idx.references[fqn], loc)
}

// RemoveReferencesForURI drops every reference location pointing into uri.
func (idx *ProjectIndex) RemoveReferencesForURI(uri string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for fqn, locs := range idx.references {
		kept := locs[:0]
		for _, loc := range locs {
			if loc.File != uri {
				kept = append(kept, loc)
			}
		}
		if len(kept) == 0 {
			delete(idx.references, fqn)
		} else {
			idx.references[fqn] = kept
		}
	}
}

// References implements ReadableIndex.
func (idx *ProjectIndex) References(fqn FQN) []Location {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]Location, len(idx.references[fqn]))
	copy(out, idx.references[fqn])
	return out
}

// Snapshot returns a read-only copy of the project definitions, the shape
// a concurrent reader can hold onto without blocking the writer (spec.md
// §5's "writers and readers are never both mutating" — implementor's
// choice between read-lock and immutable snapshot; this package offers
// both and callers pick per use site).
func (idx *ProjectIndex) Snapshot() map[FQN]Definition {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make(map[FQN]Definition, len(idx.project))
	for k, v := range idx.project {
		out[k] = v
	}
	return out
}

// AllProjectDefinitions returns every project definition, for
// workspace/symbol-style full scans.
func (idx *ProjectIndex) AllProjectDefinitions() []Definition {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]Definition, 0, len(idx.project))
	for _, d := range idx.project {
		out = append(out, d)
	}
	return out
}
