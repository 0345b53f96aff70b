package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/dpeckham/kgx/domain"
	"github.com/dpeckham/kgx/kggraph"
	"github.com/dpeckham/kgx/loader"
	"github.com/dpeckham/kgx/refine"
	"github.com/dpeckham/kgx/triple"
)

// Metadata is the audit record emitted alongside a record's triples.
type Metadata struct {
	RecordID           string               `json:"record_id"`
	ExtractionMethod   string               `json:"extraction_method"`
	ModelIdentifier    string               `json:"model_identifier"`
	Temperature        float64              `json:"temperature"`
	Timestamp          time.Time            `json:"timestamp"`
	DomainID           string               `json:"domain_id"`
	Mode               string               `json:"mode"`
	PromptIdentifiers  []string             `json:"prompt_identifiers"`
	Input              InputStats           `json:"input"`
	ExtractionResults  ExtractionCounts     `json:"extraction_results"`
	GraphStructure     GraphStructure       `json:"graph_structure"`
	EntityAnalysis     EntityAnalysis       `json:"entity_analysis"`
	RelationAnalysis   RelationAnalysis     `json:"relation_analysis"`
	IterativeExtraction *IterativeExtraction `json:"iterative_extraction,omitempty"`
	PartialResult      bool                 `json:"partial_result"`
	EmptyInput         bool                 `json:"empty_input,omitempty"`
}

// InputStats describes the record's raw text.
type InputStats struct {
	TextLengthChars int `json:"text_length_chars"`
	TextLengthWords int `json:"text_length_words"`
}

// ExtractionCounts breaks down the final triple set by provenance.
type ExtractionCounts struct {
	TotalTriples          int     `json:"total_triples"`
	InitialTriples        int     `json:"initial_triples"`
	BridgingTriples       int     `json:"bridging_triples"`
	Explicit              int     `json:"explicit"`
	Contextual            int     `json:"contextual"`
	SourceGrounded        int     `json:"source_grounded"`
	ExplicitPct           float64 `json:"explicit_pct"`
	ContextualPct         float64 `json:"contextual_pct"`
	SourceGroundedPct     float64 `json:"source_grounded_pct"`
}

// GraphStructure summarizes the final graph's shape.
type GraphStructure struct {
	Nodes                  int     `json:"nodes"`
	Edges                  int     `json:"edges"`
	DisconnectedComponents int     `json:"disconnected_components"`
	IsConnected            bool    `json:"is_connected"`
	AvgDegree              float64 `json:"avg_degree"`
}

// EntityAnalysis reports how many of the final graph's entities are
// grounded in the source text.
type EntityAnalysis struct {
	TotalUnique        int     `json:"total_unique"`
	AppearingInText    int     `json:"appearing_in_text"`
	InferredOnly       int     `json:"inferred_only"`
	AppearingInTextPct float64 `json:"appearing_in_text_pct"`
	InferredOnlyPct    float64 `json:"inferred_only_pct"`
}

// RelationAnalysis reports the relation vocabulary used in the final
// triple set.
type RelationAnalysis struct {
	UniqueRelations int            `json:"unique_relations"`
	TopK            map[string]int `json:"top_k"`
}

// IterativeExtraction is only populated when refinement actually ran
// (max_iterations > 0).
type IterativeExtraction struct {
	MaxDisconnected        int                     `json:"max_disconnected"`
	MaxIterations          int                     `json:"max_iterations"`
	InitialExtraction      InitialExtractionStats  `json:"initial_extraction"`
	RefinementIterations   []refine.IterationRecord `json:"refinement_iterations"`
	FinalState             FinalState              `json:"final_state"`
	TotalLLMCalls          int                     `json:"total_llm_calls"`
}

// InitialExtractionStats captures the graph state right after the
// one-shot initial extraction, before any bridging iteration.
type InitialExtractionStats struct {
	Triples                int `json:"triples"`
	DisconnectedComponents int `json:"disconnected_components"`
}

// FinalState captures the graph state after refinement stopped.
type FinalState struct {
	TotalTriples            int               `json:"total_triples"`
	DisconnectedComponents  int               `json:"disconnected_components"`
	IsConnected             bool              `json:"is_connected"`
	IterationsUsed          int               `json:"iterations_used"`
	StopReason              refine.StopReason `json:"stop_reason"`
	ConnectivityImprovement int               `json:"connectivity_improvement"`
}

const topKRelations = 10

// emptyInputMetadata is returned when a record's text is empty or
// whitespace-only — a short-circuit, not an error (spec's EmptyInput
// category).
func emptyInputMetadata(rec loader.Record, e *Engine, cfg Config, start time.Time) Metadata {
	return Metadata{
		RecordID:          rec.ID,
		ExtractionMethod:  extractionMethod(cfg),
		ModelIdentifier:   cfg.ModelIdentifier,
		Temperature:       cfg.Temperature,
		Timestamp:         start,
		DomainID:          e.Domain,
		Mode:              string(e.Mode),
		PromptIdentifiers: promptIdentifiers(e.Mode),
		EmptyInput:        true,
	}
}

func extractionMethod(cfg Config) string {
	if cfg.MaxIterations == 0 {
		return "simple_one_step"
	}
	return "iterative_connectivity_aware"
}

func promptIdentifiers(mode domain.Mode) []string {
	return []string{string(mode), "bridging"}
}

// assembleMetadata implements spec.md §4.7 in full. initial is the
// validated output of the initial extraction; final is the triple set
// after refinement (equal to initial when max_iterations == 0).
func assembleMetadata(rec loader.Record, e *Engine, cfg Config, initial, final []triple.Triple, trace refine.Trace, droppedInitial int, start time.Time) Metadata {
	meta := Metadata{
		RecordID:          rec.ID,
		ExtractionMethod:  extractionMethod(cfg),
		ModelIdentifier:   cfg.ModelIdentifier,
		Temperature:       cfg.Temperature,
		Timestamp:         start,
		DomainID:          e.Domain,
		Mode:              string(e.Mode),
		PromptIdentifiers: promptIdentifiers(e.Mode),
		Input: InputStats{
			TextLengthChars: len([]rune(rec.Text)),
			TextLengthWords: len(strings.Fields(rec.Text)),
		},
		PartialResult: trace.StopReason == refine.LLMFailure,
	}

	meta.ExtractionResults = extractionCounts(initial, final)
	meta.GraphStructure = graphStructure(final)
	meta.EntityAnalysis = entityAnalysis(final, rec.Text)
	meta.RelationAnalysis = relationAnalysis(final)

	if cfg.MaxIterations > 0 {
		initialGraph := kggraph.Build(initial)
		finalGraph := kggraph.Build(final)
		improvement := len(initialGraph.Components()) - len(finalGraph.Components())

		meta.IterativeExtraction = &IterativeExtraction{
			MaxDisconnected: cfg.MaxDisconnected,
			MaxIterations:   cfg.MaxIterations,
			InitialExtraction: InitialExtractionStats{
				Triples:                len(initial),
				DisconnectedComponents: len(initialGraph.Components()),
			},
			RefinementIterations: trace.Iterations,
			FinalState: FinalState{
				TotalTriples:            len(final),
				DisconnectedComponents:  len(finalGraph.Components()),
				IsConnected:             finalGraph.IsConnected(),
				IterationsUsed:          trace.IterationsUsed,
				StopReason:              trace.StopReason,
				ConnectivityImprovement: improvement,
			},
			TotalLLMCalls: trace.TotalLLMCalls,
		}
	}

	return meta
}

func extractionCounts(initial, final []triple.Triple) ExtractionCounts {
	c := ExtractionCounts{
		TotalTriples:   len(final),
		InitialTriples: len(initial),
	}
	c.BridgingTriples = c.TotalTriples - c.InitialTriples
	for _, t := range final {
		if t.Inference == triple.Explicit {
			c.Explicit++
		} else {
			c.Contextual++
		}
		if t.CharStart != nil && t.CharEnd != nil {
			c.SourceGrounded++
		}
	}
	if c.TotalTriples > 0 {
		c.ExplicitPct = pct(c.Explicit, c.TotalTriples)
		c.ContextualPct = pct(c.Contextual, c.TotalTriples)
		c.SourceGroundedPct = pct(c.SourceGrounded, c.TotalTriples)
	}
	return c
}

func graphStructure(final []triple.Triple) GraphStructure {
	g := kggraph.Build(final)
	return GraphStructure{
		Nodes:                  g.NodeCount(),
		Edges:                  g.EdgeCount(),
		DisconnectedComponents: len(g.Components()),
		IsConnected:            g.IsConnected(),
		AvgDegree:              g.AvgDegree(),
	}
}

// entityAnalysis reports what fraction of the final graph's entities are
// findable in the original text, using the same case-folding as triple
// identity so "Alice" and "alice" are treated as the same membership
// check.
func entityAnalysis(final []triple.Triple, text string) EntityAnalysis {
	g := kggraph.Build(final)
	normText := triple.NormalizeEntity(text)

	a := EntityAnalysis{TotalUnique: g.NodeCount()}
	for i := 0; i < g.NodeCount(); i++ {
		if strings.Contains(normText, triple.NormalizeEntity(g.Label(i))) {
			a.AppearingInText++
		} else {
			a.InferredOnly++
		}
	}
	if a.TotalUnique > 0 {
		a.AppearingInTextPct = pct(a.AppearingInText, a.TotalUnique)
		a.InferredOnlyPct = pct(a.InferredOnly, a.TotalUnique)
	}
	return a
}

func relationAnalysis(final []triple.Triple) RelationAnalysis {
	counts := make(map[string]int)
	for _, t := range final {
		counts[t.Relation]++
	}

	type kv struct {
		relation string
		count    int
	}
	kvs := make([]kv, 0, len(counts))
	for r, c := range counts {
		kvs = append(kvs, kv{r, c})
	}
	sort.Slice(kvs, func(i, j int) bool {
		if kvs[i].count != kvs[j].count {
			return kvs[i].count > kvs[j].count
		}
		return kvs[i].relation < kvs[j].relation
	})
	if len(kvs) > topKRelations {
		kvs = kvs[:topKRelations]
	}

	top := make(map[string]int, len(kvs))
	for _, e := range kvs {
		top[e.relation] = e.count
	}

	return RelationAnalysis{
		UniqueRelations: len(counts),
		TopK:            top,
	}
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
