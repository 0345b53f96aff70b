package triple

import "testing"

func intp(n int) *int { return &n }

func TestValidateDropsEmptyFields(t *testing.T) {
	cases := []RawItem{
		{Head: "", Relation: "knows", Tail: "Bob"},
		{Head: "Alice", Relation: "  ", Tail: "Bob"},
		{Head: "Alice", Relation: "knows", Tail: ""},
	}
	for _, raw := range cases {
		if _, ok := Validate(raw, PhaseInitial, 0, ""); ok {
			t.Errorf("expected drop for %+v", raw)
		}
	}
}

func TestValidateDefaultsExplicitOnInitial(t *testing.T) {
	got, ok := Validate(RawItem{Head: "Alice", Relation: "knows", Tail: "Bob"}, PhaseInitial, 0, "")
	if !ok {
		t.Fatal("expected valid triple")
	}
	if got.Inference != Explicit {
		t.Errorf("inference = %q, want explicit", got.Inference)
	}
	if got.IterationSource != 0 {
		t.Errorf("iteration_source = %d, want 0", got.IterationSource)
	}
}

func TestValidateForcesContextualOnRefinement(t *testing.T) {
	got, ok := Validate(RawItem{
		Head: "Bob", Relation: "met", Tail: "Carol",
		Justification: "both attended the same conference",
	}, PhaseRefinement, 2, "")
	if !ok {
		t.Fatal("expected valid triple")
	}
	if got.Inference != Contextual {
		t.Errorf("inference = %q, want contextual", got.Inference)
	}
	if got.IterationSource != 2 {
		t.Errorf("iteration_source = %d, want 2", got.IterationSource)
	}
}

func TestValidateDropsRefinementWithoutJustification(t *testing.T) {
	_, ok := Validate(RawItem{Head: "Bob", Relation: "met", Tail: "Carol"}, PhaseRefinement, 1, "")
	if ok {
		t.Fatal("expected drop for contextual triple with no justification")
	}
}

func TestValidateGrounding(t *testing.T) {
	const text = "Alice knows Bob."
	tests := []struct {
		name string
		raw  RawItem
		text string
		ok   bool
	}{
		{"both absent", RawItem{Head: "A", Relation: "r", Tail: "B"}, text, true},
		{"both present valid", RawItem{Head: "A", Relation: "r", Tail: "B", CharStart: intp(0), CharEnd: intp(5)}, text, true},
		{"start only", RawItem{Head: "A", Relation: "r", Tail: "B", CharStart: intp(0)}, text, false},
		{"end only", RawItem{Head: "A", Relation: "r", Tail: "B", CharEnd: intp(5)}, text, false},
		{"start after end", RawItem{Head: "A", Relation: "r", Tail: "B", CharStart: intp(5), CharEnd: intp(2)}, text, false},
		{"negative start", RawItem{Head: "A", Relation: "r", Tail: "B", CharStart: intp(-1), CharEnd: intp(2)}, text, false},
		{"char_end past end of text", RawItem{Head: "A", Relation: "r", Tail: "B", CharStart: intp(0), CharEnd: intp(len(text) + 10)}, text, false},
		{"char_end equal to len(text) is in bounds", RawItem{Head: "A", Relation: "r", Tail: "B", CharStart: intp(0), CharEnd: intp(len(text))}, text, true},
		{"extraction_text matches span", RawItem{Head: "A", Relation: "r", Tail: "B", CharStart: intp(0), CharEnd: intp(5), ExtractionText: "Alice"}, text, true},
		{"extraction_text mismatches span", RawItem{Head: "A", Relation: "r", Tail: "B", CharStart: intp(0), CharEnd: intp(5), ExtractionText: "Bob"}, text, false},
		{"extraction_text matches after whitespace normalization", RawItem{Head: "A", Relation: "r", Tail: "B", CharStart: intp(0), CharEnd: intp(5), ExtractionText: "  Alice  "}, text, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := Validate(tc.raw, PhaseInitial, 0, tc.text)
			if ok != tc.ok {
				t.Errorf("ok = %v, want %v", ok, tc.ok)
			}
		})
	}
}

func TestIdentityOfFoldsCaseAndTrims(t *testing.T) {
	a := Triple{Head: " Alice ", Relation: "Knows", Tail: "BOB"}
	b := Triple{Head: "alice", Relation: "knows", Tail: "bob"}
	if IdentityOf(a) != IdentityOf(b) {
		t.Errorf("expected identical identity, got %+v vs %+v", IdentityOf(a), IdentityOf(b))
	}
}

func TestIdentityIgnoresProvenance(t *testing.T) {
	a := Triple{Head: "Alice", Relation: "knows", Tail: "Bob", Inference: Explicit, IterationSource: 0}
	b := Triple{Head: "Alice", Relation: "knows", Tail: "Bob", Inference: Contextual, IterationSource: 3, CharStart: intp(1), CharEnd: intp(2)}
	if IdentityOf(a) != IdentityOf(b) {
		t.Errorf("identity should ignore inference/char/iteration fields")
	}
}
