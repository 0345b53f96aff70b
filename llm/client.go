// Package llm defines the two-operation LM client contract the core
// consumes (grounded extraction, ungrounded JSON generation) and adapts
// the teacher's provider implementations to it. Multiple backends are
// modeled as variants of this same interface; callers are polymorphic
// over the capability set and never branch on backend identity.
package llm

import (
	"context"
	"fmt"

	"github.com/dpeckham/kgx/domain"
	"github.com/dpeckham/kgx/triple"
)

// Client is the interface the core depends on.
type Client interface {
	// ExtractGrounded is used for initial extraction; items MAY carry
	// char_start/char_end grounding.
	ExtractGrounded(ctx context.Context, req ExtractRequest) ([]triple.RawItem, error)

	// GenerateJSON is used for bridging; grounding is not required and
	// MAY be absent.
	GenerateJSON(ctx context.Context, req GenerateRequest) ([]triple.RawItem, error)
}

// ExtractRequest carries everything a grounded extraction call needs.
type ExtractRequest struct {
	Text        string
	Prompt      string
	Examples    []domain.FewShotExample
	Schema      *domain.TypeSchema
	Temperature float64
}

// GenerateRequest carries everything an ungrounded JSON generation call
// needs.
type GenerateRequest struct {
	Prompt      string
	Schema      *domain.TypeSchema
	Temperature float64
}

// ClientError wraps any LM-backend failure: timeout, HTTP, parse, or
// authentication. The refiner treats every ClientError identically.
type ClientError struct {
	Op  string
	Err error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("llm: %s: %v", e.Op, e.Err)
}

func (e *ClientError) Unwrap() error { return e.Err }

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ClientError{Op: op, Err: err}
}

// Config configures an LLM provider.
type Config struct {
	Provider string // ollama, lmstudio, openrouter, openai, groq, xai, gemini, custom
	Model    string
	BaseURL  string
	APIKey   string
}

// NewClient creates an LLM client from configuration.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "ollama":
		return newOllama(cfg), nil
	case "lmstudio":
		return newLMStudio(cfg), nil
	case "openrouter":
		return newOpenRouter(cfg), nil
	case "openai":
		return newOpenAI(cfg), nil
	case "groq":
		return newGroq(cfg), nil
	case "xai":
		return newXAI(cfg), nil
	case "gemini":
		return newGemini(cfg), nil
	case "custom":
		return newOpenAICompatProvider(cfg), nil
	case "":
		return nil, fmt.Errorf("llm: provider not specified")
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
