// Package kgx extracts knowledge graph triples from unstructured text
// using an LM backend, with an iterative connectivity-aware refinement
// pass that bridges disconnected fragments of the initial extraction.
//
// The root package wires an LM client and a domain resource bundle into
// a pipeline.Engine; NewEngine is the only constructor most callers
// need. Record, ExtractionResult, and Config are re-exported here so
// callers rarely need to import the leaf packages directly.
package kgx

import (
	"context"
	"path/filepath"

	"github.com/dpeckham/kgx/domain"
	"github.com/dpeckham/kgx/llm"
	"github.com/dpeckham/kgx/loader"
	"github.com/dpeckham/kgx/pipeline"
)

// Record is one unit of input text to extract triples from.
type Record = loader.Record

// ExtractionResult is one record's extracted triples plus audit metadata.
type ExtractionResult = pipeline.ExtractionResult

// Engine runs the extraction pipeline against a fixed LM client and
// domain bundle, built by NewEngine.
type Engine struct {
	*pipeline.Engine
	cfg Config
}

// NewEngine validates cfg, constructs an LM client and a domain bundle
// from it, and returns a ready-to-use Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.DomainDir == "" {
		return nil, ErrDomainNotConfigured
	}
	if cfg.MaxDisconnected < 0 || cfg.MaxIterations < 0 {
		return nil, ErrInvalidConfig
	}

	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, err
	}

	domainID := cfg.DomainID
	if domainID == "" {
		domainID = filepath.Base(cfg.DomainDir)
	}

	mode := cfg.Mode
	if mode == "" {
		mode = domain.ModeOpen
	}

	bundle := domain.NewFileBundle(domainID, cfg.DomainDir)
	return &Engine{
		Engine: pipeline.NewEngine(client, bundle, domainID, mode),
		cfg:    cfg,
	}, nil
}

// Extract runs ProcessRecord using the Engine's configured bounds.
func (e *Engine) Extract(ctx context.Context, rec Record) (ExtractionResult, error) {
	return e.Engine.ProcessRecord(ctx, rec, e.cfg.pipelineConfig())
}

// ExtractBatch runs ProcessBatch using the Engine's configured bounds.
func (e *Engine) ExtractBatch(ctx context.Context, records []Record) []ExtractionResult {
	return e.Engine.ProcessBatch(ctx, records, e.cfg.pipelineConfig())
}
