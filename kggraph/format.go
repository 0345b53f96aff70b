package kggraph

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// defaultComponentTokenBudget is the token count FormatComponents trims
// representative entities towards. Every component keeps at least one
// representative, so with enough components the rendering can still
// exceed this budget. The teacher's own estimateTokens (graph/builder.go) is a
// word-count heuristic used only to skip trivial chunks; sizing a prompt
// section calls for the real encoder.
const defaultComponentTokenBudget = 2000

// defaultMaxRepresentatives bounds representatives per component even when
// the token budget would allow more, keeping the rendering readable.
const defaultMaxRepresentatives = 8

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

func encoding() *tiktoken.Tiktoken {
	encOnce.Do(func() {
		// Encoding tables are embedded in the library; this only fails on
		// a corrupted install. enc stays nil and countTokens degrades to
		// a word-count estimate.
		enc, _ = tiktoken.GetEncoding("cl100k_base")
	})
	return enc
}

func countTokens(s string) int {
	if enc := encoding(); enc != nil {
		return len(enc.Encode(s, nil, nil))
	}
	return len(strings.Fields(s))
}

// FormatComponents renders a stable, LM-readable description of comps: one
// line per component with its index, size, and up to limit representative
// entities chosen by descending degree then lexicographic order. limit is
// a ceiling; the actual count per component may be lower if the overall
// rendering would exceed the token budget. The rendering is stable under
// equivalent graphs (same nodes and edges, any input order).
func FormatComponents(g *Graph, comps []Component, limit int) string {
	if limit <= 0 || limit > defaultMaxRepresentatives {
		limit = defaultMaxRepresentatives
	}

	var lines []string
	budget := defaultComponentTokenBudget

	for i, c := range comps {
		reps := representatives(g, c, limit)
		line := fmt.Sprintf("component %d (size=%d): %s", i, c.Size(), strings.Join(reps, ", "))

		// Shrink representatives further if the running total would blow
		// the budget; always keep at least one representative per
		// component so the bridging prompt never describes an empty node.
		for countTokens(strings.Join(append(lines, line), "\n")) > budget && len(reps) > 1 {
			reps = reps[:len(reps)-1]
			line = fmt.Sprintf("component %d (size=%d): %s", i, c.Size(), strings.Join(reps, ", "))
		}

		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// representatives picks up to limit node labels from c, ordered by
// descending degree then lexicographically — a deterministic policy so the
// rendering is stable across equivalent graphs.
func representatives(g *Graph, c Component, limit int) []string {
	nodes := append([]int(nil), c.Nodes...)
	sort.Slice(nodes, func(i, j int) bool {
		di, dj := g.Degree(nodes[i]), g.Degree(nodes[j])
		if di != dj {
			return di > dj
		}
		return g.Label(nodes[i]) < g.Label(nodes[j])
	})
	if len(nodes) > limit {
		nodes = nodes[:limit]
	}
	reps := make([]string, len(nodes))
	for i, idx := range nodes {
		reps[i] = g.Label(idx)
	}
	return reps
}
