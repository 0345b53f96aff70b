package triple

import (
	"log/slog"
	"strings"
)

// Validate checks a raw LM payload against the shape invariants in spec
// section 3, trims strings, coerces inference, and enforces the
// refinement-phase justification requirement. text is the source record
// the item was extracted from, used to bound char_start/char_end and to
// check extraction_text against the text it claims to quote. Invalid
// items are dropped with a logged warning rather than failing the whole
// extraction — LMs occasionally emit partial items, and degraded-but-
// useful output beats a hard failure. ok is false when the item was
// dropped.
func Validate(raw RawItem, phase Phase, iteration int, text string) (t Triple, ok bool) {
	head := strings.TrimSpace(raw.Head)
	relation := strings.TrimSpace(raw.Relation)
	tail := strings.TrimSpace(raw.Tail)

	if head == "" || relation == "" || tail == "" {
		slog.Warn("triple: dropping item with empty field",
			"head", head, "relation", relation, "tail", tail)
		return Triple{}, false
	}

	t = Triple{
		Head:            head,
		Relation:        relation,
		Tail:            tail,
		IterationSource: iteration,
	}

	switch phase {
	case PhaseRefinement:
		t.Inference = Contextual
	default:
		t.Inference = coerceInference(raw.Inference)
	}

	t.Justification = strings.TrimSpace(raw.Justification)
	if phase == PhaseRefinement && t.Inference == Contextual && t.Justification == "" {
		slog.Warn("triple: dropping contextual refinement item with no justification",
			"head", head, "relation", relation, "tail", tail)
		return Triple{}, false
	}

	if !groundingConsistent(raw, text) {
		slog.Warn("triple: dropping item with inconsistent char grounding",
			"head", head, "relation", relation, "tail", tail,
			"char_start", raw.CharStart, "char_end", raw.CharEnd)
		return Triple{}, false
	}
	t.CharStart = raw.CharStart
	t.CharEnd = raw.CharEnd
	t.ExtractionText = raw.ExtractionText

	return t, true
}

// coerceInference maps a raw inference string into the enum, defaulting to
// Explicit when absent or unrecognized (initial-extraction default).
func coerceInference(raw string) Inference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(Contextual):
		return Contextual
	case string(Explicit):
		return Explicit
	default:
		return Explicit
	}
}

// groundingConsistent checks that optional char_start/char_end are
// internally consistent: both present or both absent, 0 <= start <= end
// <= len(text) (in runes, matching the rest of the package's Unicode
// handling), and that extraction_text, if present, actually names the
// span it claims to. Presence is opportunistic — grounding is never
// assumed.
func groundingConsistent(raw RawItem, text string) bool {
	if raw.CharStart == nil && raw.CharEnd == nil {
		return true
	}
	if raw.CharStart == nil || raw.CharEnd == nil {
		return false
	}
	if *raw.CharStart < 0 || *raw.CharEnd < *raw.CharStart {
		return false
	}
	runes := []rune(text)
	if *raw.CharEnd > len(runes) {
		return false
	}
	if raw.ExtractionText != "" {
		span := string(runes[*raw.CharStart:*raw.CharEnd])
		if whitespaceNormalize(span) != whitespaceNormalize(raw.ExtractionText) {
			return false
		}
	}
	return true
}

// whitespaceNormalize collapses runs of whitespace to a single space and
// trims the ends, the documented policy (spec's invariant 10 permits
// either byte-for-byte or whitespace-normalized comparison) for matching
// extraction_text against the source span: LMs routinely re-wrap or
// re-space a quoted span without changing its meaning.
func whitespaceNormalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
