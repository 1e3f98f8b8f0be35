package fuzzy

import "testing"

func TestBestMatch_PicksClosestCandidate(t *testing.T) {
	m := NewMatcher(nil)

	candidates := []string{"Celta", "Real Madrid", "Real Sociedad", "Athletic"}
	match, score, ok := m.BestMatch("Celta Vigo B", candidates)
	if !ok {
		t.Fatal("expected a match")
	}
	if match != "Celta" {
		t.Fatalf("expected Celta, got %q (score %.1f)", match, score)
	}
}

func TestBestMatch_AlwaysMatchesWhenPoolNonEmpty(t *testing.T) {
	m := NewMatcher(nil)

	match, _, ok := m.BestMatch("Zzzzzz United", []string{"Betis", "Osasuna"})
	if !ok {
		t.Fatal("best-effort matching must return something for a non-empty pool")
	}
	if match == "" {
		t.Fatal("match must not be empty")
	}
}

func TestBestMatch_BlankQueryOrEmptyPool(t *testing.T) {
	m := NewMatcher(nil)

	if _, _, ok := m.BestMatch("", []string{"Betis"}); ok {
		t.Fatal("blank query must not match")
	}
	if _, _, ok := m.BestMatch("   ", []string{"Betis"}); ok {
		t.Fatal("whitespace query must not match")
	}
	if _, _, ok := m.BestMatch("Betis", nil); ok {
		t.Fatal("empty pool must not match")
	}
	if _, _, ok := m.BestMatch("Betis", []string{"", "  "}); ok {
		t.Fatal("pool of blank candidates must not match")
	}
}

func TestBestMatchAbove_ThresholdIsStrict(t *testing.T) {
	m := NewMatcher(scorerFunc(func(a, b string) float64 { return 80 }))

	if _, _, ok := m.BestMatchAbove("Girona FC", []string{"Girona"}, 80); ok {
		t.Fatal("score equal to threshold must not match")
	}

	m = NewMatcher(scorerFunc(func(a, b string) float64 { return 81 }))
	match, score, ok := m.BestMatchAbove("Girona FC", []string{"Girona"}, 80)
	if !ok {
		t.Fatal("score above threshold must match")
	}
	if match != "Girona" || score != 81 {
		t.Fatalf("unexpected match %q score %.1f", match, score)
	}
}

func TestBestMatch_ExactNameBeatsPartial(t *testing.T) {
	m := NewMatcher(nil)

	match, _, ok := m.BestMatch("real madrid", []string{"Real Sociedad", "Real Madrid"})
	if !ok || match != "Real Madrid" {
		t.Fatalf("expected Real Madrid, got %q", match)
	}
}

type scorerFunc func(a, b string) float64

func (f scorerFunc) Score(a, b string) float64 { return f(a, b) }
