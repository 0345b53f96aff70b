package llm

import (
	"context"

	"github.com/dpeckham/kgx/triple"
)

// Every provider below is a thin configuration wrapper over
// openAICompatClient, kept from the teacher's llm package and repointed
// at the two-operation Client contract: ExtractGrounded renders the
// extraction prompt with examples/schema inlined, GenerateJSON sends the
// bridging prompt as-is. Both parse the "triples" array out of the JSON
// response content via parseTriples.

type compatProvider struct {
	base openAICompatClient
}

func (p *compatProvider) ExtractGrounded(ctx context.Context, req ExtractRequest) ([]triple.RawItem, error) {
	prompt := promptWithExamples(req.Prompt, req.Text, req.Examples, req.Schema)
	items, err := p.base.chat(ctx, prompt, req.Temperature)
	return items, wrapErr("extract_grounded", err)
}

func (p *compatProvider) GenerateJSON(ctx context.Context, req GenerateRequest) ([]triple.RawItem, error) {
	items, err := p.base.chat(ctx, req.Prompt, req.Temperature)
	return items, wrapErr("generate_json", err)
}

// newOpenAI creates a client for the OpenAI API.
func newOpenAI(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &compatProvider{base: newOpenAICompatClient(cfg)}
}

// newGroq creates a client for Groq's inference API (OpenAI-compatible,
// fast open-source model hosting).
func newGroq(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	return &compatProvider{base: newOpenAICompatClient(cfg)}
}

// newLMStudio creates a client for a local LM Studio server.
func newLMStudio(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:1234"
	}
	return &compatProvider{base: newOpenAICompatClient(cfg)}
}

// newOllama creates a client for a local Ollama server via its
// OpenAI-compatible endpoint.
func newOllama(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	return &compatProvider{base: newOpenAICompatClient(cfg)}
}

// newOpenRouter creates a client for OpenRouter.
func newOpenRouter(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api"
	}
	return &compatProvider{base: newOpenAICompatClient(cfg)}
}

// newXAI creates a client for xAI (Grok).
func newXAI(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.x.ai"
	}
	return &compatProvider{base: newOpenAICompatClient(cfg)}
}

// newOpenAICompatProvider creates a generic OpenAI-compatible client for
// custom endpoints.
func newOpenAICompatProvider(cfg Config) Client {
	return &compatProvider{base: newOpenAICompatClient(cfg)}
}

// newGemini creates a client for Google's Gemini API via its
// OpenAI-compatible endpoint, which uses a different path prefix (no
// /v1 segment — it is already baked into BaseURL).
func newGemini(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	return &compatProvider{base: newOpenAICompatClientPrefix(cfg, "")}
}
