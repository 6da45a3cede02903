package sku

import (
	"errors"
	"testing"
)

func TestParseValid(t *testing.T) {
	s, err := Parse("ST-32-X-30-RAW")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Style != "ST" || s.Waist != "32" || s.Shape != "X" || s.Length != "30" || s.Finish != "RAW" {
		t.Errorf("unexpected fields: %+v", s)
	}
}

func TestParseNormalizesCase(t *testing.T) {
	s, err := Parse(" st-32-x-30-raw ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.String() != "ST-32-X-30-RAW" {
		t.Errorf("expected canonical form, got %q", s.String())
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []string{
		"",
		"ST-32-X-30",        // 4 fields
		"ST-32-X-30-RAW-XX", // 6 fields
		"ST--X-30-RAW",      // empty field
		"STO-32-X-30-RAW",   // style too long
		"ST-3A-X-30-RAW",    // waist not digits
		"ST-32-XY-30-RAW",   // shape too long
		"ST-32-X-3-RAW",     // length too short
		"ST-32-X-30-RA",     // finish too short
		"ST_32_X_30_RAW",    // wrong delimiter
	}

	for _, token := range tests {
		if _, err := Parse(token); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidFormat", token, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	tokens := []string{"ST-32-X-30-RAW", "SL-28-T-34-BRW", "BC-40-R-28-IND"}
	for _, token := range tokens {
		s, err := Parse(token)
		if err != nil {
			t.Fatalf("Parse(%q): %v", token, err)
		}
		again, err := Parse(s.String())
		if err != nil {
			t.Fatalf("Parse(String()): %v", err)
		}
		if again != s {
			t.Errorf("round trip mismatch: %v != %v", again, s)
		}
	}
}

func TestMatching(t *testing.T) {
	a := mustParse(t, "ST-32-X-30-RAW")
	sameLength := mustParse(t, "ST-32-X-30-RAW")
	longer := mustParse(t, "ST-32-X-34-RAW")
	washed := mustParse(t, "ST-32-X-30-IND")
	otherWaist := mustParse(t, "ST-33-X-30-RAW")

	if !ExactMatch(a, sameLength) {
		t.Error("identical SKUs should be an exact match")
	}
	if ExactMatch(a, longer) {
		t.Error("different length must not be an exact match")
	}

	// Exact match implies substitutable.
	if !Substitutable(a, sameLength) {
		t.Error("exact match must imply substitutable")
	}
	if !Substitutable(longer, a) {
		t.Error("longer inseam should be substitutable")
	}
	if !Substitutable(washed, a) {
		t.Error("finish difference should not block substitution")
	}
	if Substitutable(otherWaist, a) {
		t.Error("different waist must not be substitutable")
	}
}

func TestProductionEligible(t *testing.T) {
	tests := []struct {
		token    string
		eligible bool
	}{
		{"ST-32-X-30-RAW", true},
		{"ST-32-X-30-BRW", true},
		{"ST-32-X-30-IND", false},
		{"ST-32-X-30-BLK", false},
	}
	for _, tt := range tests {
		if got := ProductionEligible(mustParse(t, tt.token)); got != tt.eligible {
			t.Errorf("ProductionEligible(%s) = %v, want %v", tt.token, got, tt.eligible)
		}
	}
}

func TestWithFinishAndLength(t *testing.T) {
	a := mustParse(t, "ST-32-X-34-RAW")

	altered := a.WithLength("30").WithFinish("IND")
	if altered.String() != "ST-32-X-30-IND" {
		t.Errorf("unexpected altered SKU: %s", altered)
	}

	// Original is unchanged.
	if a.String() != "ST-32-X-34-RAW" {
		t.Errorf("original SKU mutated: %s", a)
	}
	if altered.Style != a.Style || altered.Waist != a.Waist || altered.Shape != a.Shape {
		t.Error("alteration must preserve style, waist and shape")
	}
}

func mustParse(t *testing.T, token string) SKU {
	t.Helper()
	s, err := Parse(token)
	if err != nil {
		t.Fatalf("Parse(%q): %v", token, err)
	}
	return s
}
