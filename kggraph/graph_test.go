package kggraph

import (
	"strings"
	"testing"

	"github.com/dpeckham/kgx/triple"
)

func mkTriple(head, rel, tail string) triple.Triple {
	return triple.Triple{Head: head, Relation: rel, Tail: tail, Inference: triple.Explicit}
}

func TestBuildDeduplicatesEdges(t *testing.T) {
	ts := []triple.Triple{
		mkTriple("Alice", "knows", "Bob"),
		mkTriple("alice", "KNOWS", " Bob "),
		mkTriple("Carol", "knows", "Dave"),
	}
	g := Build(ts)
	if g.NodeCount() != 4 {
		t.Errorf("node count = %d, want 4", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("edge count = %d, want 2", g.EdgeCount())
	}
}

func TestComponentsTwoDisconnected(t *testing.T) {
	ts := []triple.Triple{
		mkTriple("Alice", "knows", "Bob"),
		mkTriple("Carol", "knows", "Dave"),
	}
	g := Build(ts)
	comps := g.Components()
	if len(comps) != 2 {
		t.Fatalf("components = %d, want 2", len(comps))
	}
	for _, c := range comps {
		if c.Size() != 2 {
			t.Errorf("component size = %d, want 2", c.Size())
		}
	}
}

func TestComponentsOrderingBySizeThenLabel(t *testing.T) {
	ts := []triple.Triple{
		mkTriple("Zed", "knows", "Yara"), // small component, "Yara"/"Zed"
		mkTriple("Alice", "knows", "Bob"),
		mkTriple("Bob", "knows", "Carol"),
		mkTriple("Carol", "knows", "Dave"), // big component: Alice,Bob,Carol,Dave
	}
	g := Build(ts)
	comps := g.Components()
	if len(comps) != 2 {
		t.Fatalf("components = %d, want 2", len(comps))
	}
	if comps[0].Size() != 4 || comps[1].Size() != 2 {
		t.Errorf("expected descending size order, got sizes %d, %d", comps[0].Size(), comps[1].Size())
	}
}

func TestComponentsTieBreakLexicographic(t *testing.T) {
	ts := []triple.Triple{
		mkTriple("Zed", "knows", "Yara"),
		mkTriple("Alice", "knows", "Bob"),
	}
	g := Build(ts)
	comps := g.Components()
	if len(comps) != 2 {
		t.Fatalf("components = %d, want 2", len(comps))
	}
	// Both size 2; component containing "Alice" should sort first.
	first := g.minLabel(comps[0])
	if first != "Alice" {
		t.Errorf("first component min label = %q, want Alice", first)
	}
}

func TestIsConnected(t *testing.T) {
	g := Build([]triple.Triple{mkTriple("A", "r", "B"), mkTriple("B", "r", "C")})
	if !g.IsConnected() {
		t.Error("expected connected graph")
	}
	g2 := Build([]triple.Triple{mkTriple("A", "r", "B"), mkTriple("C", "r", "D")})
	if g2.IsConnected() {
		t.Error("expected disconnected graph")
	}
}

func TestFormatComponentsStableUnderReorder(t *testing.T) {
	a := []triple.Triple{mkTriple("Alice", "knows", "Bob"), mkTriple("Carol", "knows", "Dave")}
	b := []triple.Triple{mkTriple("Carol", "knows", "Dave"), mkTriple("Alice", "knows", "Bob")}

	ga, gb := Build(a), Build(b)
	fa := FormatComponents(ga, ga.Components(), 8)
	fb := FormatComponents(gb, gb.Components(), 8)
	if fa != fb {
		t.Errorf("formatting not stable under input reorder:\n%q\nvs\n%q", fa, fb)
	}
}

func TestFormatComponentsIncludesIndexAndSize(t *testing.T) {
	g := Build([]triple.Triple{mkTriple("Alice", "knows", "Bob")})
	out := FormatComponents(g, g.Components(), 8)
	if !strings.Contains(out, "component 0") || !strings.Contains(out, "size=2") {
		t.Errorf("unexpected format: %q", out)
	}
}
