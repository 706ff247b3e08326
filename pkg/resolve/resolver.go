package resolve

import (
	"semls/pkg/astnode"
	"semls/pkg/symbol"
)

// Resolver bundles the index C7/C8 read against and the recursion/
// cancellation controls C8 needs. The zero value is usable with a nil
// Index (every lookup then misses, degrading to None/Mixed, never
// panicking) and the default recursion bound.
type Resolver struct {
	Index symbol.ReadableIndex
	// MaxDepth bounds typeFromExpression recursion (spec.md §5). Zero
	// means DefaultMaxDepth.
	MaxDepth int
	// Cancelled is polled at the entry of every typeFromExpression
	// recursion frame (spec.md §5's cooperative-cancellation design). Nil
	// means never cancelled.
	Cancelled func() bool
}

func (r *Resolver) maxDepth() int {
	if r.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return r.MaxDepth
}

func (r *Resolver) index() symbol.ReadableIndex {
	if r.Index == nil {
		return symbol.NewProjectIndex()
	}
	return r.Index
}

func (r *Resolver) getDefinition(fqn string, globalFallback bool) (symbol.Definition, bool) {
	return r.index().GetDefinition(fqn, globalFallback)
}

func (r *Resolver) enclosingParentFqn(n astnode.Node) (string, bool) {
	classFqn, ok := EnclosingClassFQN(n)
	if !ok {
		return "", false
	}
	def, ok := r.getDefinition(classFqn, false)
	if !ok || len(def.Extends) == 0 {
		return "", false
	}
	return def.Extends[0], true
}
