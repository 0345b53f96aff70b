package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// fileBundle loads a domain's resources from a directory on first access
// and caches them for the process lifetime. Validation (non-empty prompt,
// schema-valid examples, required bridging substitutions) happens at that
// first access, not at construction — resources are discovered lazily.
type fileBundle struct {
	domain string
	dir    string

	openOnce        sync.Once
	openPrompt      string
	openErr         error

	constrainedOnce sync.Once
	constrainedPrompt string
	constrainedErr  error

	examplesOnce sync.Once
	examples     []FewShotExample
	examplesErr  error

	bridgingOnce sync.Once
	bridging     string
	bridgingErr  error

	schemaOnce sync.Once
	schema     *TypeSchema
	schemaErr  error
}

// NewFileBundle creates a Bundle backed by resource files under dir:
//
//	<dir>/open.prompt.txt
//	<dir>/constrained.prompt.txt   (optional)
//	<dir>/examples.json            (optional; [] if absent)
//	<dir>/bridging.prompt.txt      (optional; falls back to defaultBridgingPrompt)
//	<dir>/schema.json              (optional)
//
// Nothing is read until first use.
func NewFileBundle(domainID, dir string) Bundle {
	return &fileBundle{domain: domainID, dir: dir}
}

func (b *fileBundle) Prompt(mode Mode) (string, error) {
	switch mode {
	case ModeConstrained:
		b.constrainedOnce.Do(func() {
			b.constrainedPrompt, b.constrainedErr = b.loadPrompt("constrained.prompt.txt")
		})
		return b.constrainedPrompt, b.constrainedErr
	default:
		b.openOnce.Do(func() {
			b.openPrompt, b.openErr = b.loadPrompt("open.prompt.txt")
		})
		return b.openPrompt, b.openErr
	}
}

func (b *fileBundle) loadPrompt(filename string) (string, error) {
	path := filepath.Join(b.dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ResourceError{Domain: b.domain, Path: path, Reason: "prompt not found"}
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", &ResourceError{Domain: b.domain, Path: path, Reason: "prompt is empty"}
	}
	return prompt, nil
}

func (b *fileBundle) Examples() ([]FewShotExample, error) {
	b.examplesOnce.Do(func() {
		path := filepath.Join(b.dir, "examples.json")
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			b.examples = nil
			return
		}
		if err != nil {
			b.examplesErr = &ResourceError{Domain: b.domain, Path: path, Reason: err.Error()}
			return
		}
		var examples []FewShotExample
		if err := json.Unmarshal(data, &examples); err != nil {
			b.examplesErr = &ResourceError{Domain: b.domain, Path: path, Reason: "invalid examples schema: " + err.Error()}
			return
		}
		for i, ex := range examples {
			if strings.TrimSpace(ex.Text) == "" {
				b.examplesErr = &ResourceError{Domain: b.domain, Path: path, Reason: fmt.Sprintf("example %d has empty text", i)}
				return
			}
		}
		b.examples = examples
	})
	return b.examples, b.examplesErr
}

func (b *fileBundle) BridgingPrompt() (string, error) {
	b.bridgingOnce.Do(func() {
		path := filepath.Join(b.dir, "bridging.prompt.txt")
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Externally configured wins if present; otherwise the
			// built-in default applies.
			b.bridging = defaultBridgingPrompt
		case err != nil:
			b.bridgingErr = &ResourceError{Domain: b.domain, Path: path, Reason: err.Error()}
			return
		default:
			b.bridging = strings.TrimSpace(string(data))
		}

		for _, site := range requiredSubstitutions {
			if !strings.Contains(b.bridging, site) {
				b.bridgingErr = &ResourceError{
					Domain: b.domain,
					Path:   path,
					Reason: fmt.Sprintf("bridging prompt missing required substitution site %s", site),
				}
				return
			}
		}
	})
	return b.bridging, b.bridgingErr
}

func (b *fileBundle) Schema() (*TypeSchema, error) {
	b.schemaOnce.Do(func() {
		path := filepath.Join(b.dir, "schema.json")
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		if err != nil {
			b.schemaErr = &ResourceError{Domain: b.domain, Path: path, Reason: err.Error()}
			return
		}
		var schema TypeSchema
		if err := json.Unmarshal(data, &schema); err != nil {
			b.schemaErr = &ResourceError{Domain: b.domain, Path: path, Reason: "invalid schema: " + err.Error()}
			return
		}
		b.schema = &schema
	})
	return b.schema, b.schemaErr
}

// defaultBridgingPrompt is the package's built-in bridging prompt, used
// when a domain does not supply its own bridging.prompt.txt. The source
// exhibited two different bridging prompts (a hardcoded default and an
// externally configured one) with no documented precedence; this package
// makes that precedence explicit: external config wins when present.
const defaultBridgingPrompt = `You are analyzing a partially-extracted knowledge graph for a document.
The graph currently has {num_components} disconnected components:

{component_info}

Re-read the following text and find additional relationships that connect
entities across these components. Only emit relationships that are
actually supported by the text; do not invent connections.

Return a JSON object with exactly one key:
  "triples" : array of {"head": string, "relation": string, "tail": string, "justification": string, "char_start": integer?, "char_end": integer?}

Rules:
- Every triple must include a non-empty "justification" explaining the inferred connection.
- Prefer triples whose head and tail belong to different components above.
- If no new connecting relationships are supported by the text, return an empty array.
- Do NOT include any text outside the JSON object.

TEXT:
{text}`
