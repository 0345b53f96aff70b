package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/dpeckham/kgx/triple"
)

// codeBlockRe strips markdown code fences from LLM output. Grounded on the
// teacher's graph/builder.go, which needs the identical fence-stripping
// for its own entity/relationship extraction calls.
var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// extractJSONObject finds a valid JSON object in raw LM response text. It
// handles common LLM quirks: markdown code blocks, and text before/after
// the JSON payload.
func extractJSONObject(raw string) (string, error) {
	if m := codeBlockRe.FindStringSubmatch(raw); len(m) > 1 {
		raw = m[1]
	}
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "{") {
		return raw, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], nil
	}

	return "", fmt.Errorf("no JSON object found in response")
}

// triplesResult is the JSON shape both extraction and bridging calls are
// asked to return: a single "triples" array.
type triplesResult struct {
	Triples []triple.RawItem `json:"triples"`
}

// parseTriples extracts and unmarshals the "triples" array from a raw LM
// chat response. A response with zero items is not an error.
func parseTriples(raw string) ([]triple.RawItem, error) {
	jsonStr, err := extractJSONObject(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing triples response: %w", err)
	}
	var result triplesResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("unmarshalling triples response: %w", err)
	}
	return result.Triples, nil
}
