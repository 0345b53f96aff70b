package kgx

import (
	"github.com/dpeckham/kgx/domain"
	"github.com/dpeckham/kgx/llm"
	"github.com/dpeckham/kgx/pipeline"
)

// Config holds all configuration for a kgx Engine.
type Config struct {
	// LLM selects the provider/model used for both grounded extraction
	// and bridging generation calls.
	LLM llm.Config `json:"llm"`

	// DomainDir is the directory holding the domain's prompt/example
	// resources (open.prompt.txt, constrained.prompt.txt,
	// bridging.prompt.txt, examples.json, schema.json).
	DomainDir string `json:"domain_dir"`

	// DomainID identifies the domain in emitted metadata; defaults to
	// the base name of DomainDir if empty.
	DomainID string `json:"domain_id"`

	// Mode selects which extraction prompt variant to use: "open" or
	// "constrained".
	Mode domain.Mode `json:"mode"`

	// MaxDisconnected is the component-count goal the refiner stops at.
	MaxDisconnected int `json:"max_disconnected"`

	// MaxIterations bounds the refinement loop; 0 disables refinement
	// entirely (simple_one_step extraction).
	MaxIterations int `json:"max_iterations"`

	// Temperature is passed to every LM call.
	Temperature float64 `json:"temperature"`

	// Concurrency bounds ProcessBatch's worker pool; defaults to 16.
	Concurrency int `json:"concurrency"`
}

// DefaultConfig returns sensible defaults: open-mode extraction against a
// local Ollama server, refinement capped at a single connected component
// within 5 iterations.
func DefaultConfig() Config {
	return Config{
		LLM: llm.Config{
			Provider: "ollama",
			Model:    "llama3.1:8b",
			BaseURL:  "http://localhost:11434",
		},
		Mode:            domain.ModeOpen,
		MaxDisconnected: 1,
		MaxIterations:   5,
		Temperature:     0,
		Concurrency:     16,
	}
}

// pipelineConfig projects Config into the pipeline package's narrower
// per-record configuration.
func (c Config) pipelineConfig() pipeline.Config {
	return pipeline.Config{
		MaxDisconnected: c.MaxDisconnected,
		MaxIterations:   c.MaxIterations,
		Temperature:     c.Temperature,
		ModelIdentifier: c.LLM.Model,
		Concurrency:     c.Concurrency,
	}
}
