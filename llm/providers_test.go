package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientKnownProviders(t *testing.T) {
	providers := []string{"ollama", "lmstudio", "openrouter", "openai", "groq", "xai", "gemini", "custom"}
	for _, name := range providers {
		t.Run(name, func(t *testing.T) {
			c, err := NewClient(Config{Provider: name, Model: "test-model"})
			if err != nil {
				t.Fatalf("NewClient(%q) error: %v", name, err)
			}
			if c == nil {
				t.Fatal("expected non-nil client")
			}
		})
	}
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient(Config{Provider: "doesnotexist"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewClientEmptyProvider(t *testing.T) {
	_, err := NewClient(Config{})
	if err == nil {
		t.Fatal("expected error for empty provider")
	}
}

// TestExtractGroundedAgainstMockServer exercises the full HTTP round trip
// through openAICompatClient against an httptest server emulating an
// OpenAI-compatible chat completion endpoint.
func TestExtractGroundedAgainstMockServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{
					"content": `{"triples": [{"head": "Alice", "relation": "knows", "tail": "Bob"}]}`,
				}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := newOpenAICompatProvider(Config{BaseURL: srv.URL, Model: "test-model"})
	items, err := c.ExtractGrounded(context.Background(), ExtractRequest{
		Text:   "Alice knows Bob.",
		Prompt: "extract triples",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Head != "Alice" {
		t.Errorf("unexpected items: %+v", items)
	}
}

// TestGenerateJSONWrapsServerErrorAsClientError verifies a non-retryable
// HTTP error surfaces as a *ClientError, which the refiner relies on to
// map uniformly to llm_failure.
func TestGenerateJSONWrapsServerErrorAsClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "unauthorized")
	}))
	defer srv.Close()

	c := newOpenAICompatProvider(Config{BaseURL: srv.URL, Model: "test-model"})
	_, err := c.GenerateJSON(context.Background(), GenerateRequest{Prompt: "bridge"})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *ClientError
	if !castClientError(err, &ce) {
		t.Errorf("expected *ClientError, got %T: %v", err, err)
	}
}

func castClientError(err error, target **ClientError) bool {
	ce, ok := err.(*ClientError)
	if ok {
		*target = ce
	}
	return ok
}
