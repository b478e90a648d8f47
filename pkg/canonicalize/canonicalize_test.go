package canonicalize

import (
	"testing"
)

func TestJCS_Sorting(t *testing.T) {
	input := map[string]interface{}{
		"c": 3,
		"a": 1,
		"b": 2,
	}

	expected := `{"a":1,"b":2,"c":3}`

	b, err := JCS(input)
	if err != nil {
		t.Fatalf("JCS failed: %v", err)
	}

	if string(b) != expected {
		t.Errorf("Expected %s, got %s", expected, string(b))
	}
}

func TestJCS_RecursiveSorting(t *testing.T) {
	input := map[string]interface{}{
		"z": map[string]interface{}{
			"y": "foo",
			"x": "bar",
		},
		"a": 1,
	}

	expected := `{"a":1,"z":{"x":"bar","y":"foo"}}`

	b, err := JCS(input)
	if err != nil {
		t.Fatalf("JCS failed: %v", err)
	}

	if string(b) != expected {
		t.Errorf("Expected %s, got %s", expected, string(b))
	}
}

func TestJCS_StructTagsRespected(t *testing.T) {
	type payload struct {
		Rating float64 `json:"avg_rating"`
		Count  int     `json:"count_total"`
	}

	b, err := JCS(payload{Rating: 4.6, Count: 12873})
	if err != nil {
		t.Fatalf("JCS failed: %v", err)
	}

	expected := `{"avg_rating":4.6,"count_total":12873}`
	if string(b) != expected {
		t.Errorf("Expected %s, got %s", expected, string(b))
	}
}

func TestCanonicalHash_Stability(t *testing.T) {
	// Semantically identical payloads constructed differently must hash identically.
	v1 := map[string]interface{}{"a": 1, "b": 2}

	type s struct {
		B int `json:"b"`
		A int `json:"a"`
	}
	v2 := s{A: 1, B: 2}

	h1, err := CanonicalHash(v1)
	if err != nil {
		t.Fatalf("CanonicalHash failed: %v", err)
	}
	h2, err := CanonicalHash(v2)
	if err != nil {
		t.Fatalf("CanonicalHash failed: %v", err)
	}

	if h1 != h2 {
		t.Errorf("hashes differ: %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h1))
	}
}
