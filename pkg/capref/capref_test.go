package capref

import "testing"

func TestParse_PlainName(t *testing.T) {
	ref, err := Parse("data-analysis")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if ref.Name != "data-analysis" || ref.Range != "" {
		t.Errorf("unexpected ref: %+v", ref)
	}
}

func TestParse_WithRange(t *testing.T) {
	cases := []struct {
		input string
		name  string
		rng   string
	}{
		{"data-analysis@1.2.0", "data-analysis", "1.2.0"},
		{"data-analysis@^1.2.0", "data-analysis", "^1.2.0"},
		{"route-planning@~2.0.1", "route-planning", "~2.0.1"},
		{"text-generation@>=1.0.0", "text-generation", ">=1.0.0"},
	}
	for _, tc := range cases {
		ref, err := Parse(tc.input)
		if err != nil {
			t.Fatalf("Parse(%s) failed: %v", tc.input, err)
		}
		if ref.Name != tc.name || ref.Range != tc.rng {
			t.Errorf("Parse(%s) = %+v, want name=%s range=%s", tc.input, ref, tc.name, tc.rng)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"", "  ", "@1.0.0", "data-analysis@", "9bad", "data-analysis@not-a-range"} {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should fail", input)
		}
	}
}

func TestSatisfies(t *testing.T) {
	cases := []struct {
		advertised string
		required   string
		want       bool
	}{
		{"data-analysis@1.5.0", "data-analysis@^1.2.0", true},
		{"data-analysis@2.0.0", "data-analysis@^1.2.0", false},
		{"data-analysis@1.5.0", "data-analysis", true},
		{"data-analysis", "data-analysis", true},
		{"data-analysis", "data-analysis@^1.0.0", false},
		{"data-analysis@1.5.0", "route-planning", false},
	}
	for _, tc := range cases {
		adv, err := Parse(tc.advertised)
		if err != nil {
			t.Fatalf("Parse(%s) failed: %v", tc.advertised, err)
		}
		req, err := Parse(tc.required)
		if err != nil {
			t.Fatalf("Parse(%s) failed: %v", tc.required, err)
		}
		if got := Satisfies(adv, req); got != tc.want {
			t.Errorf("Satisfies(%s, %s) = %v, want %v", tc.advertised, tc.required, got, tc.want)
		}
	}
}

func TestMatchSet(t *testing.T) {
	advertised := []string{"data-analysis@1.5.0", "report-generation"}

	if !MatchSet(advertised, []string{"data-analysis@^1.0.0"}) {
		t.Error("expected match for in-range capability")
	}
	if !MatchSet(advertised, []string{"data-analysis", "report-generation"}) {
		t.Error("expected match for full superset")
	}
	if MatchSet(advertised, []string{"data-analysis", "nonexistent"}) {
		t.Error("missing capability must fail the set")
	}
	if !MatchSet(advertised, nil) {
		t.Error("empty requirement always matches")
	}
	if MatchSet(advertised, []string{"@@bad"}) {
		t.Error("unparsable requirement must fail")
	}
}
