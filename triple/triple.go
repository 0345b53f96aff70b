// Package triple defines the validated knowledge-graph triple type, the
// loosely-typed payload the LM returns, and the identity used for dedup
// across extraction phases.
package triple

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Inference tags how a triple was produced.
type Inference string

const (
	Explicit   Inference = "explicit"
	Contextual Inference = "contextual"
)

// Phase identifies which part of the pipeline is validating an item.
// Refinement-phase items are always forced to Contextual.
type Phase int

const (
	PhaseInitial Phase = iota
	PhaseRefinement
)

// Triple is a validated (head, relation, tail) assertion with provenance.
type Triple struct {
	Head            string    `json:"head"`
	Relation        string    `json:"relation"`
	Tail            string    `json:"tail"`
	Inference       Inference `json:"inference"`
	Justification   string    `json:"justification,omitempty"`
	CharStart       *int      `json:"char_start,omitempty"`
	CharEnd         *int      `json:"char_end,omitempty"`
	ExtractionText  string    `json:"extraction_text,omitempty"`
	IterationSource int       `json:"iteration_source"`
}

// RawItem is the dictionary-shaped payload an LM returns for one triple.
// Keys beyond these are ignored.
type RawItem struct {
	Head           string `json:"head"`
	Relation       string `json:"relation"`
	Tail           string `json:"tail"`
	Inference      string `json:"inference,omitempty"`
	Justification  string `json:"justification,omitempty"`
	CharStart      *int   `json:"char_start,omitempty"`
	CharEnd        *int   `json:"char_end,omitempty"`
	ExtractionText string `json:"extraction_text,omitempty"`
}

// Identity is the dedup key for a triple: case-folded, trimmed
// (head, relation, tail). Inference, grounding, and iteration_source are
// deliberately excluded — re-extractions of the same fact with different
// provenance are redundant, and keeping the first occurrence preserves
// the earliest grounding.
type Identity struct {
	Head     string
	Relation string
	Tail     string
}

var fold = cases.Fold()

func normalize(s string) string {
	return fold.String(strings.TrimSpace(s))
}

// IdentityOf computes t's dedup identity.
func IdentityOf(t Triple) Identity {
	return Identity{
		Head:     normalize(t.Head),
		Relation: normalize(t.Relation),
		Tail:     normalize(t.Tail),
	}
}

// NormalizeEntity is used by graph node labels, which need the same
// case-folding as triple identity but operate on bare strings rather than
// whole triples.
func NormalizeEntity(s string) string {
	return normalize(s)
}
