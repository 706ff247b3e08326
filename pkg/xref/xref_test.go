package xref

import (
	"testing"

	"semls/pkg/symbol"
)

func TestAddEdge_AccumulatesCountAndSamples(t *testing.T) {
	g := NewGraph()
	loc := symbol.Location{File: "a.ph", StartLine: 4, EndLine: 4}

	g.AddEdge(`app\A()`, `app\B()`, loc)
	g.AddEdge(`app\A()`, `app\B()`, loc)

	edges := g.OutgoingEdges(`app\A()`)
	if len(edges) != 1 {
		t.Fatalf("expected 1 distinct edge, got %d", len(edges))
	}
	if edges[0].Count != 2 {
		t.Fatalf("expected count 2, got %d", edges[0].Count)
	}
	if len(edges[0].Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(edges[0].Samples))
	}
}

func TestAddEdge_CapsSamplesAtMax(t *testing.T) {
	g := NewGraph()
	loc := symbol.Location{File: "a.ph", StartLine: 1, EndLine: 1}

	for i := 0; i < maxSamples+5; i++ {
		g.AddEdge(`app\A()`, `app\B()`, loc)
	}

	edges := g.OutgoingEdges(`app\A()`)
	if len(edges[0].Samples) != maxSamples {
		t.Fatalf("expected samples capped at %d, got %d", maxSamples, len(edges[0].Samples))
	}
	if edges[0].Count != maxSamples+5 {
		t.Fatalf("expected count to keep growing past the sample cap, got %d", edges[0].Count)
	}
}

func TestAddEdge_IgnoresEmptyFQNs(t *testing.T) {
	g := NewGraph()
	loc := symbol.Location{File: "a.ph"}

	g.AddEdge("", `app\B()`, loc)
	g.AddEdge(`app\A()`, "", loc)

	if len(g.OutgoingEdges(`app\A()`)) != 0 {
		t.Fatal("expected no edge recorded for an empty caller or callee")
	}
}

func TestIncomingAndOutgoingEdges_AreSortedAndSymmetric(t *testing.T) {
	g := NewGraph()
	loc := symbol.Location{File: "a.ph"}

	g.AddEdge(`app\A()`, `app\C()`, loc)
	g.AddEdge(`app\A()`, `app\B()`, loc)
	g.AddEdge(`app\D()`, `app\B()`, loc)

	out := g.OutgoingEdges(`app\A()`)
	if len(out) != 2 || out[0].Callee != `app\B()` || out[1].Callee != `app\C()` {
		t.Fatalf("expected outgoing edges sorted by callee, got %+v", out)
	}

	in := g.IncomingEdges(`app\B()`)
	if len(in) != 2 || in[0].Caller != `app\A()` || in[1].Caller != `app\D()` {
		t.Fatalf("expected incoming edges sorted by caller, got %+v", in)
	}
}

func TestOutgoingCount_SumsAcrossDistinctCallees(t *testing.T) {
	g := NewGraph()
	loc := symbol.Location{File: "a.ph"}

	g.AddEdge(`app\A()`, `app\B()`, loc)
	g.AddEdge(`app\A()`, `app\B()`, loc)
	g.AddEdge(`app\A()`, `app\C()`, loc)

	if got := g.OutgoingCount(`app\A()`); got != 3 {
		t.Fatalf("expected outgoing count 3, got %d", got)
	}
	if got := g.IncomingCount(`app\B()`); got != 2 {
		t.Fatalf("expected incoming count 2, got %d", got)
	}
}

func TestRemoveEdgesFromCaller_DropsOutgoingAndIncomingSides(t *testing.T) {
	g := NewGraph()
	loc := symbol.Location{File: "a.ph"}

	g.AddEdge(`app\A()`, `app\B()`, loc)
	g.AddEdge(`app\A()`, `app\C()`, loc)
	g.AddEdge(`app\D()`, `app\B()`, loc)

	g.RemoveEdgesFromCaller(`app\A()`)

	if len(g.OutgoingEdges(`app\A()`)) != 0 {
		t.Fatal("expected no outgoing edges left for the removed caller")
	}
	in := g.IncomingEdges(`app\B()`)
	if len(in) != 1 || in[0].Caller != `app\D()` {
		t.Fatalf("expected only D's edge into B to remain, got %+v", in)
	}
}

func TestWalk_RespectsDepthAndDirection(t *testing.T) {
	g := NewGraph()
	loc := symbol.Location{File: "a.ph"}

	// A -> B -> C, depth 1 from A should see B but not C.
	g.AddEdge(`app\A()`, `app\B()`, loc)
	g.AddEdge(`app\B()`, `app\C()`, loc)

	shallow := g.Walk([]symbol.FQN{`app\A()`}, 1, false)
	if !containsFQN(shallow.Nodes, `app\B()`) || containsFQN(shallow.Nodes, `app\C()`) {
		t.Fatalf("expected depth-1 walk to reach B but not C, got %v", shallow.Nodes)
	}

	deep := g.Walk([]symbol.FQN{`app\A()`}, 2, false)
	if !containsFQN(deep.Nodes, `app\C()`) {
		t.Fatalf("expected depth-2 walk to reach C, got %v", deep.Nodes)
	}

	reverse := g.Walk([]symbol.FQN{`app\C()`}, 2, true)
	if !containsFQN(reverse.Nodes, `app\A()`) {
		t.Fatalf("expected reverse walk from C to reach A, got %v", reverse.Nodes)
	}
}

func TestWalk_ZeroOrNegativeDepthTreatedAsOne(t *testing.T) {
	g := NewGraph()
	loc := symbol.Location{File: "a.ph"}
	g.AddEdge(`app\A()`, `app\B()`, loc)

	w := g.Walk([]symbol.FQN{`app\A()`}, 0, false)
	if w.Depth != 1 {
		t.Fatalf("expected depth 0 to be treated as 1, got %d", w.Depth)
	}
}

func containsFQN(nodes []symbol.FQN, target symbol.FQN) bool {
	for _, n := range nodes {
		if n == target {
			return true
		}
	}
	return false
}
