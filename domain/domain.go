// Package domain exposes the domain resource contract: a lazily-loaded,
// immutable-once-loaded bundle of extraction prompt(s), few-shot examples,
// a bridging/refinement prompt, and an optional entity/relation type
// schema, keyed by domain identifier.
//
// Grounded on the teacher's config.go (lazy-default-then-override pattern)
// and chunker/registry.go's domain-keyed dispatch (engineering.go vs
// legal.go as hardcoded flavors) — generalized here into resource files
// loaded by domain id instead of compiled-in Go prompt constants.
package domain

import (
	"fmt"
)

// Mode selects which extraction prompt variant to use.
type Mode string

const (
	ModeOpen        Mode = "open"
	ModeConstrained Mode = "constrained"
)

// FewShotExample is one worked example in a domain's prompt bundle.
type FewShotExample struct {
	Text     string          `json:"text"`
	Triples  []ExampleTriple `json:"triples"`
}

// ExampleTriple is a triple attached to a few-shot example, with optional
// char-range grounding into Text.
type ExampleTriple struct {
	Head          string `json:"head"`
	Relation      string `json:"relation"`
	Tail          string `json:"tail"`
	Inference     string `json:"inference"`
	CharStart     *int   `json:"char_start,omitempty"`
	CharEnd       *int   `json:"char_end,omitempty"`
}

// TypeSchema optionally constrains the entity and relation vocabularies a
// domain's prompts expect the LM to use.
type TypeSchema struct {
	EntityTypes   []string `json:"entity_types"`
	RelationTypes []string `json:"relation_types"`
}

// ResourceError reports a missing or malformed domain resource. It is
// always fatal and never silently recovered from.
type ResourceError struct {
	Domain string
	Path   string
	Reason string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("domain %q: resource error at %s: %s", e.Domain, e.Path, e.Reason)
}

// Bundle is the read-only interface the core consumes. The core never
// writes to domain resources.
type Bundle interface {
	Prompt(mode Mode) (string, error)
	Examples() ([]FewShotExample, error)
	BridgingPrompt() (string, error)
	Schema() (*TypeSchema, error)
}

// requiredSubstitutions are the three named substitution sites every
// bridging prompt must contain (spec section 4.3).
var requiredSubstitutions = []string{"{num_components}", "{component_info}", "{text}"}
