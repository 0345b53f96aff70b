// Package pipeline orchestrates a single record through initial
// extraction and connectivity refinement, and fans a batch of records out
// over a bounded worker pool.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dpeckham/kgx/domain"
	"github.com/dpeckham/kgx/extract"
	"github.com/dpeckham/kgx/llm"
	"github.com/dpeckham/kgx/loader"
	"github.com/dpeckham/kgx/refine"
	"github.com/dpeckham/kgx/triple"
)

// defaultConcurrency is the default semaphore size for ProcessBatch,
// matching the teacher's own default for parallel chunk processing.
const defaultConcurrency = 16

// defaultPerRecordTimeout caps how long a single record's extraction can
// take inside ProcessBatch.
const defaultPerRecordTimeout = 90 * time.Second

// Config bounds one record's extraction.
type Config struct {
	MaxDisconnected  int
	MaxIterations    int
	Temperature      float64
	ModelIdentifier  string
	Concurrency      int           // ProcessBatch only; defaults to 16
	PerRecordTimeout time.Duration // ProcessBatch only; defaults to 90s
}

// ExtractionResult is the JSON-serializable output of one record's
// extraction.
type ExtractionResult struct {
	RecordID string          `json:"record_id"`
	Triples  []triple.Triple `json:"triples"`
	Metadata Metadata        `json:"metadata"`
}

// Engine runs the extraction pipeline against a fixed LM client and domain
// bundle. It holds no per-record state and is safe for concurrent use.
type Engine struct {
	Client llm.Client
	Bundle domain.Bundle
	Mode   domain.Mode
	Domain string
}

// NewEngine constructs an Engine. client and bundle are shared across
// every record the Engine processes.
func NewEngine(client llm.Client, bundle domain.Bundle, domainID string, mode domain.Mode) *Engine {
	return &Engine{Client: client, Bundle: bundle, Mode: mode, Domain: domainID}
}

// ProcessRecord implements spec's process_record: fetch text, run initial
// extraction, run refinement, assemble metadata. Empty/whitespace-only
// text short-circuits with an empty result rather than an error.
func (e *Engine) ProcessRecord(ctx context.Context, rec loader.Record, cfg Config) (ExtractionResult, error) {
	start := time.Now()

	if strings.TrimSpace(rec.Text) == "" {
		return ExtractionResult{
			RecordID: rec.ID,
			Triples:  nil,
			Metadata: emptyInputMetadata(rec, e, cfg, start),
		}, nil
	}

	initial, droppedInitial, err := extract.Initial(ctx, e.Client, rec.Text, e.Bundle, e.Mode, cfg.Temperature)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("pipeline: initial extraction for record %q: %w", rec.ID, err)
	}

	if cfg.MaxIterations == 0 {
		meta := assembleMetadata(rec, e, cfg, initial, initial, refine.Trace{TotalLLMCalls: 1}, droppedInitial, start)
		return ExtractionResult{RecordID: rec.ID, Triples: initial, Metadata: meta}, nil
	}

	final, trace, err := refine.Refine(ctx, e.Client, rec.Text, e.Bundle, initial, refine.Config{
		MaxDisconnected: cfg.MaxDisconnected,
		MaxIterations:   cfg.MaxIterations,
		Temperature:     cfg.Temperature,
	}, 1)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("pipeline: refinement for record %q: %w", rec.ID, err)
	}

	meta := assembleMetadata(rec, e, cfg, initial, final, trace, droppedInitial, start)
	return ExtractionResult{RecordID: rec.ID, Triples: final, Metadata: meta}, nil
}

// ProcessBatch fans out ProcessRecord over records with a bounded worker
// pool, grounded on the teacher's graph.Build semaphore-channel pattern.
// Results are returned in the same order as records; a record whose
// processing errors still gets an entry (no triples, partial_result set)
// rather than being dropped from the slice. The error itself is not
// recorded in the result.
func (e *Engine) ProcessBatch(ctx context.Context, records []loader.Record, cfg Config) []ExtractionResult {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	timeout := cfg.PerRecordTimeout
	if timeout <= 0 {
		timeout = defaultPerRecordTimeout
	}

	results := make([]ExtractionResult, len(records))

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, rec := range records {
		wg.Add(1)
		go func(i int, rec loader.Record) {
			defer wg.Done()

			if ctx.Err() != nil {
				results[i] = ExtractionResult{
					RecordID: rec.ID,
					Metadata: Metadata{RecordID: rec.ID, PartialResult: true},
				}
				return
			}

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = ExtractionResult{
					RecordID: rec.ID,
					Metadata: Metadata{RecordID: rec.ID, PartialResult: true},
				}
				return
			}

			recordCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			res, err := e.ProcessRecord(recordCtx, rec, cfg)
			if err != nil {
				res = ExtractionResult{
					RecordID: rec.ID,
					Metadata: Metadata{RecordID: rec.ID, PartialResult: true},
				}
			}
			results[i] = res
		}(i, rec)
	}

	wg.Wait()
	return results
}
