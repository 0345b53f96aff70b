// Package refine implements the connectivity-aware bridging loop: given
// an initial triple set, repeatedly ask the LM for triples that connect
// otherwise-disconnected components of the entity graph, stopping on one
// of a closed set of reasons.
package refine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	deepcopy "github.com/tiendc/go-deepcopy"

	"github.com/dpeckham/kgx/domain"
	"github.com/dpeckham/kgx/kggraph"
	"github.com/dpeckham/kgx/llm"
	"github.com/dpeckham/kgx/triple"
)

// StopReason is the closed taxonomy a refinement run terminates with.
type StopReason string

const (
	ConnectivityGoalAchieved  StopReason = "connectivity_goal_achieved"
	MaxIterationsReached      StopReason = "max_iterations_reached"
	NoNewTriplesFound         StopReason = "no_new_triples_found"
	NoConnectivityImprovement StopReason = "no_connectivity_improvement"
	LLMFailure                StopReason = "llm_failure"
	Cancelled                 StopReason = "cancelled"
)

// IterationRecord is one entry in the refinement trace.
type IterationRecord struct {
	Iteration               int        `json:"iteration"`
	NewTriples              int        `json:"new_triples"`
	TotalTriples            int        `json:"total_triples,omitempty"`
	DisconnectedComponents  int        `json:"disconnected_components,omitempty"`
	ConnectivityImprovement int        `json:"connectivity_improvement"`
	Status                  string     `json:"status"`
	Error                   string     `json:"error,omitempty"`
	EarlyStopReason         StopReason `json:"early_stop_reason,omitempty"`
}

// Trace records what happened across a refinement run, independent of the
// resulting triples.
type Trace struct {
	Iterations     []IterationRecord `json:"refinement_iterations"`
	IterationsUsed int               `json:"iterations_used"`
	StopReason     StopReason        `json:"stop_reason"`
	PartialResult  bool              `json:"partial_result"`
	TotalLLMCalls  int               `json:"total_llm_calls"`
}

// Config bounds a refinement run.
type Config struct {
	MaxDisconnected int
	MaxIterations   int
	Temperature     float64
}

// Refine runs the connectivity refinement loop over initial, the
// validated output of extract.Initial. text is the original record text,
// substituted into the bridging prompt. initialLLMCalls is added to the
// trace's total_llm_calls to account for the initial extraction call made
// before Refine was invoked (the refiner itself only ever issues bridging
// calls).
func Refine(ctx context.Context, client llm.Client, text string, bundle domain.Bundle, initial []triple.Triple, cfg Config, initialLLMCalls int) ([]triple.Triple, Trace, error) {
	bridgingPrompt, err := bundle.BridgingPrompt()
	if err != nil {
		return nil, Trace{}, fmt.Errorf("refine: loading bridging prompt: %w", err)
	}
	schema, err := bundle.Schema()
	if err != nil {
		return nil, Trace{}, fmt.Errorf("refine: loading schema: %w", err)
	}

	allTriples := make([]triple.Triple, len(initial))
	copy(allTriples, initial)
	seen := make(map[triple.Identity]bool, len(initial))
	for _, t := range initial {
		seen[triple.IdentityOf(t)] = true
	}

	g := kggraph.Build(allTriples)
	prevComponents := len(g.Components())

	trace := Trace{TotalLLMCalls: initialLLMCalls}

	// Checked unconditionally, before the loop: a graph already at the
	// connectivity goal returns the input unchanged regardless of
	// max_iterations, including max_iterations == 0.
	if prevComponents <= cfg.MaxDisconnected {
		trace.StopReason = ConnectivityGoalAchieved
		return snapshot(allTriples), trace, nil
	}

	for k := 1; k <= cfg.MaxIterations; k++ {
		if err := ctx.Err(); err != nil {
			trace.StopReason = Cancelled
			trace.PartialResult = true
			return snapshot(allTriples), trace, nil
		}

		g = kggraph.Build(allTriples)
		comps := g.Components()
		componentInfo := kggraph.FormatComponents(g, comps, 0)

		prompt := renderBridgingPrompt(bridgingPrompt, len(comps), componentInfo, text)

		iterStart := time.Now()
		raw, err := client.GenerateJSON(ctx, llm.GenerateRequest{
			Prompt:      prompt,
			Schema:      schema,
			Temperature: cfg.Temperature,
		})
		trace.TotalLLMCalls++

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				trace.StopReason = Cancelled
				trace.PartialResult = true
				return snapshot(allTriples), trace, nil
			}
			slog.Warn("refine: bridging call failed", "iteration", k, "error", err,
				"elapsed", time.Since(iterStart).Round(time.Millisecond))
			trace.Iterations = append(trace.Iterations, IterationRecord{
				Iteration: k,
				Status:    "failed",
				Error:     err.Error(),
			})
			trace.StopReason = LLMFailure
			trace.PartialResult = true
			return snapshot(allTriples), trace, nil
		}

		// A response was received, successful or not in connectivity
		// terms — this iteration counts toward iterations_used even if it
		// early-stops below.
		trace.IterationsUsed = k

		var dropped int
		newTriples := make([]triple.Triple, 0, len(raw))
		for _, item := range raw {
			t, ok := triple.Validate(item, triple.PhaseRefinement, k, text)
			if !ok {
				dropped++
				continue
			}
			id := triple.IdentityOf(t)
			if seen[id] {
				continue
			}
			seen[id] = true
			newTriples = append(newTriples, t)
		}

		if dropped > 0 {
			slog.Debug("refine: dropped invalid items", "iteration", k, "dropped", dropped)
		}

		if len(newTriples) == 0 {
			trace.Iterations = append(trace.Iterations, IterationRecord{
				Iteration:              k,
				NewTriples:             0,
				DisconnectedComponents: prevComponents,
				Status:                 "success",
				EarlyStopReason:        NoNewTriplesFound,
			})
			trace.StopReason = NoNewTriplesFound
			return snapshot(allTriples), trace, nil
		}

		allTriples = append(allTriples, newTriples...)

		cur := len(kggraph.Build(allTriples).Components())
		improvement := prevComponents - cur

		if cur >= prevComponents {
			trace.Iterations = append(trace.Iterations, IterationRecord{
				Iteration:               k,
				NewTriples:              len(newTriples),
				TotalTriples:            len(allTriples),
				DisconnectedComponents:  cur,
				ConnectivityImprovement: improvement,
				Status:                  "success",
				EarlyStopReason:         NoConnectivityImprovement,
			})
			trace.StopReason = NoConnectivityImprovement
			return snapshot(allTriples), trace, nil
		}

		trace.Iterations = append(trace.Iterations, IterationRecord{
			Iteration:               k,
			NewTriples:              len(newTriples),
			TotalTriples:            len(allTriples),
			DisconnectedComponents:  cur,
			ConnectivityImprovement: improvement,
			Status:                  "success",
		})

		prevComponents = cur

		if cur <= cfg.MaxDisconnected {
			trace.StopReason = ConnectivityGoalAchieved
			return snapshot(allTriples), trace, nil
		}
	}

	trace.StopReason = MaxIterationsReached
	return snapshot(allTriples), trace, nil
}

// renderBridgingPrompt performs the literal (non-expression-language)
// substitution of the three required sites into the domain's bridging
// prompt template.
func renderBridgingPrompt(tmpl string, numComponents int, componentInfo, text string) string {
	return substitute(tmpl, map[string]string{
		"{num_components}": fmt.Sprintf("%d", numComponents),
		"{component_info}": componentInfo,
		"{text}":           text,
	})
}

func substitute(tmpl string, subs map[string]string) string {
	out := tmpl
	for k, v := range subs {
		out = strings.ReplaceAll(out, k, v)
	}
	return out
}

// snapshot decouples the returned triple slice from allTriples, which the
// caller never mutates again but which deep-copying protects against
// regardless — cheap at the sizes a single record's triple set reaches.
func snapshot(all []triple.Triple) []triple.Triple {
	var out []triple.Triple
	if err := deepcopy.Copy(&out, &all); err != nil {
		out = make([]triple.Triple, len(all))
		copy(out, all)
	}
	return out
}
