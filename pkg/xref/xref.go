// Package xref implements the read-side cross-reference graph described in
// SPEC_FULL.md §2.5: which FQNs call or reference which other FQNs,
// incoming/outgoing edge counts, and a bounded-depth Walk over the graph.
//
// This is a direct adaptation of the teacher's internal/xref/xref.go
// (Graph, Walk, IncomingEdges/OutgoingEdges), re-keyed from the teacher's
// generic, line-span-derived entity IDs onto spec.md's FQN grammar. The
// teacher reconstructs caller/callee edges after the fact by locating the
// enclosing definition from a symbol's start/end line span; this package
// does not. Instead, edges are built directly
// by pkg/indexer while it walks a document: for every reference node it
// resolves via resolve.ReferenceToFqn, it already knows which enclosing
// declaration's FQN it is walking inside, and calls AddEdge with both —
// exactly the "edges the resolver could actually produce" restriction
// SPEC_FULL.md calls for.
package xref

import (
	"sort"
	"sync"

	"semls/pkg/symbol"
)

// Edge records that Caller references Callee, with up to a handful of
// sample locations for display.
type Edge struct {
	Caller  symbol.FQN
	Callee  symbol.FQN
	Count   int
	Samples []symbol.Location
}

const maxSamples = 3

// Graph is a mutable-during-indexing, read-after-build cross-reference
// graph. The zero value is not usable; use NewGraph.
type Graph struct {
	mu            sync.RWMutex
	edgeByPair    map[string]*Edge
	outgoingByFQN map[symbol.FQN][]symbol.FQN
	incomingByFQN map[symbol.FQN][]symbol.FQN
}

// NewGraph builds an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		edgeByPair:    make(map[string]*Edge),
		outgoingByFQN: make(map[symbol.FQN][]symbol.FQN),
		incomingByFQN: make(map[symbol.FQN][]symbol.FQN),
	}
}

// AddEdge records one occurrence of caller referencing callee at loc.
// caller or callee being empty is a no-op (e.g. a reference found outside
// any declaration, or one resolve.ReferenceToFqn could not resolve).
func (g *Graph) AddEdge(caller, callee symbol.FQN, loc symbol.Location) {
	if caller == "" || callee == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	key := pairKey(caller, callee)
	edge, exists := g.edgeByPair[key]
	if !exists {
		edge = &Edge{Caller: caller, Callee: callee}
		g.edgeByPair[key] = edge
		g.outgoingByFQN[caller] = append(g.outgoingByFQN[caller], callee)
		g.incomingByFQN[callee] = append(g.incomingByFQN[callee], caller)
	}
	edge.Count++
	if len(edge.Samples) < maxSamples {
		edge.Samples = append(edge.Samples, loc)
	}
}

// RemoveEdgesFromCaller drops every edge whose caller is fqn — the
// invalidation step a re-pass performs before re-walking a document,
// mirroring symbol.ProjectIndex.RemoveDefinitionsForURI.
func (g *Graph) RemoveEdgesFromCaller(fqn symbol.FQN) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, callee := range g.outgoingByFQN[fqn] {
		key := pairKey(fqn, callee)
		delete(g.edgeByPair, key)
		g.incomingByFQN[callee] = removeFQN(g.incomingByFQN[callee], fqn)
	}
	delete(g.outgoingByFQN, fqn)
}

// OutgoingEdges returns every edge whose caller is fqn, sorted by callee.
func (g *Graph) OutgoingEdges(fqn symbol.FQN) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edgesBetween(fqn, g.outgoingByFQN[fqn], false)
}

// IncomingEdges returns every edge whose callee is fqn, sorted by caller.
func (g *Graph) IncomingEdges(fqn symbol.FQN) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edgesBetween(fqn, g.incomingByFQN[fqn], true)
}

func (g *Graph) edgesBetween(fqn symbol.FQN, others []symbol.FQN, reverse bool) []Edge {
	out := make([]Edge, 0, len(others))
	for _, other := range others {
		var key string
		if reverse {
			key = pairKey(other, fqn)
		} else {
			key = pairKey(fqn, other)
		}
		if edge, ok := g.edgeByPair[key]; ok {
			out = append(out, *edge)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if reverse {
			return out[i].Caller < out[j].Caller
		}
		return out[i].Callee < out[j].Callee
	})
	return out
}

// OutgoingCount is the total number of references fqn makes, across all
// distinct callees.
func (g *Graph) OutgoingCount(fqn symbol.FQN) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	total := 0
	for _, callee := range g.outgoingByFQN[fqn] {
		if edge, ok := g.edgeByPair[pairKey(fqn, callee)]; ok {
			total += edge.Count
		}
	}
	return total
}

// IncomingCount is the total number of references made to fqn, across all
// distinct callers.
func (g *Graph) IncomingCount(fqn symbol.FQN) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	total := 0
	for _, caller := range g.incomingByFQN[fqn] {
		if edge, ok := g.edgeByPair[pairKey(caller, fqn)]; ok {
			total += edge.Count
		}
	}
	return total
}

// Walk is the result of a bounded-depth breadth-first traversal from a set
// of root FQNs.
type Walk struct {
	Roots   []symbol.FQN
	Nodes   []symbol.FQN
	Edges   []Edge
	Depth   int
	Reverse bool
}

// Walk explores outgoing edges from roots (or incoming, if reverse) up to
// depth hops, returning every node and edge visited. depth <= 0 is treated
// as 1, matching the teacher's own Walk semantics.
func (g *Graph) Walk(roots []symbol.FQN, depth int, reverse bool) Walk {
	if depth <= 0 {
		depth = 1
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	type queueItem struct {
		fqn   symbol.FQN
		depth int
	}

	visited := map[symbol.FQN]bool{}
	var rootList []symbol.FQN
	queue := make([]queueItem, 0, len(roots))
	for _, root := range roots {
		if root == "" || visited[root] {
			continue
		}
		visited[root] = true
		rootList = append(rootList, root)
		queue = append(queue, queueItem{fqn: root, depth: 0})
	}
	sort.Strings(rootList)

	edgeSet := map[string]Edge{}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.depth >= depth {
			continue
		}

		neighbors := g.outgoingByFQN[current.fqn]
		if reverse {
			neighbors = g.incomingByFQN[current.fqn]
		}
		for _, next := range neighbors {
			var key string
			if reverse {
				key = pairKey(next, current.fqn)
			} else {
				key = pairKey(current.fqn, next)
			}
			if edge, ok := g.edgeByPair[key]; ok {
				edgeSet[key] = *edge
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, queueItem{fqn: next, depth: current.depth + 1})
		}
	}

	nodes := make([]symbol.FQN, 0, len(visited))
	for fqn := range visited {
		nodes = append(nodes, fqn)
	}
	sort.Strings(nodes)

	edges := make([]Edge, 0, len(edgeSet))
	for _, edge := range edgeSet {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Caller == edges[j].Caller {
			return edges[i].Callee < edges[j].Callee
		}
		return edges[i].Caller < edges[j].Caller
	})

	return Walk{Roots: rootList, Nodes: nodes, Edges: edges, Depth: depth, Reverse: reverse}
}

func pairKey(caller, callee symbol.FQN) string {
	return caller + "\x00" + callee
}

func removeFQN(list []symbol.FQN, target symbol.FQN) []symbol.FQN {
	out := list[:0]
	for _, v := range list {
		if v != target {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
