package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dpeckham/kgx/domain"
	"github.com/dpeckham/kgx/triple"
)

// openAICompatClient is the shared HTTP base for every OpenAI-compatible
// provider (OpenAI itself, Groq, OpenRouter, XAI, Ollama, LM Studio, and
// generic custom endpoints). Kept close to verbatim from the teacher's
// llm/openai_compat.go: the retry/backoff policy is orthogonal to what the
// response is parsed into, so only the request/response shaping below it
// changes.
type openAICompatClient struct {
	cfg        Config
	client     *http.Client
	pathPrefix string
}

func newOpenAICompatClient(cfg Config) openAICompatClient {
	return newOpenAICompatClientPrefix(cfg, "/v1")
}

func newOpenAICompatClientPrefix(cfg Config, prefix string) openAICompatClient {
	return openAICompatClient{
		cfg:        cfg,
		pathPrefix: prefix,
		client:     &http.Client{Timeout: 120 * time.Second},
	}
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       json.RawMessage `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chat sends a single-user-message chat completion request in JSON mode
// and parses the "triples" array out of the response content.
func (c *openAICompatClient) chat(ctx context.Context, prompt string, temperature float64) ([]triple.RawItem, error) {
	msgs, err := json.Marshal([]chatMessage{{Role: "user", Content: prompt}})
	if err != nil {
		return nil, err
	}

	body := chatCompletionRequest{
		Model:          c.cfg.Model,
		Messages:       msgs,
		Temperature:    temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	respBody, err := c.doPost(ctx, c.pathPrefix+"/chat/completions", body)
	if err != nil {
		return nil, err
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return parseTriples(resp.Choices[0].Message.Content)
}

const (
	maxRetries        = 6
	baseRetryDelay    = 2 * time.Second
	minRateLimitDelay = 5 * time.Second
)

func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable ||
		code == http.StatusGatewayTimeout
}

func (c *openAICompatClient) doPost(ctx context.Context, path string, body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := c.cfg.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<(attempt-1))
			slog.Warn("llm: retrying request", "url", url, "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request to %s failed: %w", url, err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading response body: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return respBody, nil
		}

		lastErr = fmt.Errorf("LLM API error %d: %s", resp.StatusCode, string(respBody))

		if !retryableStatusCode(resp.StatusCode) {
			return nil, lastErr
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			rateLimitDelay := minRateLimitDelay * time.Duration(1<<attempt)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
					headerDelay := time.Duration(seconds) * time.Second
					if headerDelay > rateLimitDelay {
						rateLimitDelay = headerDelay
					}
				}
			}
			slog.Warn("llm: rate limited, waiting before retry", "url", url, "attempt", attempt+1, "delay", rateLimitDelay)
			select {
			case <-time.After(rateLimitDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// promptWithExamples renders a grounded extraction request into a single
// prompt string, appending few-shot examples and the optional type schema
// after the domain's base prompt.
func promptWithExamples(basePrompt, text string, examples []domain.FewShotExample, schema *domain.TypeSchema) string {
	var b bytes.Buffer
	b.WriteString(basePrompt)
	b.WriteString("\n\n")

	if schema != nil {
		b.WriteString("ENTITY TYPES: ")
		b.WriteString(fmt.Sprintf("%v", schema.EntityTypes))
		b.WriteString("\nRELATION TYPES: ")
		b.WriteString(fmt.Sprintf("%v", schema.RelationTypes))
		b.WriteString("\n\n")
	}

	for _, ex := range examples {
		b.WriteString("EXAMPLE TEXT:\n")
		b.WriteString(ex.Text)
		b.WriteString("\nEXAMPLE TRIPLES:\n")
		exJSON, _ := json.Marshal(ex.Triples)
		b.Write(exJSON)
		b.WriteString("\n\n")
	}

	b.WriteString("TEXT:\n")
	b.WriteString(text)
	return b.String()
}
