// Package fuzzy selects the best approximate string match from a candidate
// pool. It is the only place in the codebase that knows how similarity is
// scored, so the metric can be swapped without touching resolution logic.
package fuzzy

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Scorer reports the similarity of two strings on a 0-100 scale.
type Scorer interface {
	Score(a, b string) float64
}

// SorensenDiceScorer scores bigram overlap after case folding. It behaves
// well on short names with word-order and diacritic-free spelling drift.
type SorensenDiceScorer struct {
	metric *metrics.SorensenDice
}

func NewSorensenDiceScorer() *SorensenDiceScorer {
	metric := metrics.NewSorensenDice()
	metric.CaseSensitive = false
	metric.NgramSize = 2
	return &SorensenDiceScorer{metric: metric}
}

func (s *SorensenDiceScorer) Score(a, b string) float64 {
	return strutil.Similarity(normalize(a), normalize(b), s.metric) * 100
}

// JaroWinklerScorer is an alternative metric favouring shared prefixes.
type JaroWinklerScorer struct {
	metric *metrics.JaroWinkler
}

func NewJaroWinklerScorer() *JaroWinklerScorer {
	metric := metrics.NewJaroWinkler()
	metric.CaseSensitive = false
	return &JaroWinklerScorer{metric: metric}
}

func (s *JaroWinklerScorer) Score(a, b string) float64 {
	return strutil.Similarity(normalize(a), normalize(b), s.metric) * 100
}

// Matcher picks the single best-scoring candidate for a query.
type Matcher struct {
	scorer Scorer
}

func NewMatcher(scorer Scorer) *Matcher {
	if scorer == nil {
		scorer = NewSorensenDiceScorer()
	}
	return &Matcher{scorer: scorer}
}

// BestMatch returns the highest-scoring candidate. ok is false when the
// query is blank or the pool is empty; a match is otherwise always made,
// however poor its score.
func (m *Matcher) BestMatch(query string, candidates []string) (match string, score float64, ok bool) {
	if strings.TrimSpace(query) == "" || len(candidates) == 0 {
		return "", 0, false
	}

	best := -1.0
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		s := m.scorer.Score(query, candidate)
		if s > best {
			best = s
			match = candidate
		}
	}
	if best < 0 {
		return "", 0, false
	}

	return match, best, true
}

// BestMatchAbove is BestMatch with a strict minimum score. Candidates
// scoring at or below the threshold are treated as no match.
func (m *Matcher) BestMatchAbove(query string, candidates []string, threshold float64) (string, float64, bool) {
	match, score, ok := m.BestMatch(query, candidates)
	if !ok || score <= threshold {
		return "", 0, false
	}
	return match, score, true
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
