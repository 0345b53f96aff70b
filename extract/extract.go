// Package extract implements the one-shot initial extraction pass: a
// single grounded LLM call over a record's full text, followed by
// validation and within-call deduplication.
package extract

import (
	"context"
	"fmt"

	"github.com/dpeckham/kgx/domain"
	"github.com/dpeckham/kgx/llm"
	"github.com/dpeckham/kgx/triple"
)

// Initial runs extract_initial per spec: obtain the mode-appropriate
// prompt and examples from bundle, invoke the client's grounded
// extraction operation, validate each returned item with
// iteration_source=0, and dedupe within this call (first occurrence
// wins, preserving its char grounding). Returns the deduped triples and
// the count of items dropped by validation.
func Initial(ctx context.Context, client llm.Client, text string, bundle domain.Bundle, mode domain.Mode, temperature float64) ([]triple.Triple, int, error) {
	prompt, err := bundle.Prompt(mode)
	if err != nil {
		return nil, 0, fmt.Errorf("extract: loading prompt: %w", err)
	}

	examples, err := bundle.Examples()
	if err != nil {
		return nil, 0, fmt.Errorf("extract: loading examples: %w", err)
	}

	schema, err := bundle.Schema()
	if err != nil {
		return nil, 0, fmt.Errorf("extract: loading schema: %w", err)
	}

	raw, err := client.ExtractGrounded(ctx, llm.ExtractRequest{
		Text:        text,
		Prompt:      prompt,
		Examples:    examples,
		Schema:      schema,
		Temperature: temperature,
	})
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[triple.Identity]bool, len(raw))
	result := make([]triple.Triple, 0, len(raw))
	dropped := 0

	for _, item := range raw {
		t, ok := triple.Validate(item, triple.PhaseInitial, 0, text)
		if !ok {
			dropped++
			continue
		}
		id := triple.IdentityOf(t)
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, t)
	}

	return result, dropped, nil
}
