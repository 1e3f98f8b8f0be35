package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/dani537/fantasy-crew/internal/domain/fixture"
	"github.com/dani537/fantasy-crew/internal/domain/team"
	"github.com/dani537/fantasy-crew/internal/platform/logging"
)

// EnrichmentService projects per-fixture odds onto canonical team rows
// and onto the upcoming-round table. It works on copies; the bundle is
// never mutated.
type EnrichmentService struct {
	logger *logging.Logger
}

func NewEnrichmentService(logger *logging.Logger) *EnrichmentService {
	if logger == nil {
		logger = logging.Default()
	}
	return &EnrichmentService{logger: logger}
}

// Enrich walks every unplayed fixture of the odds source and, for each
// side that resolves through the odds mapping, writes the fixture's three
// figures onto every team row with that canonical name (one club can
// appear in several rows across competitions). The upcoming-round table
// is enriched the same way, matched on the home side only. Fixtures
// where neither side resolves contribute nothing.
func (s *EnrichmentService) Enrich(ctx context.Context, bundle SourceBundle, res Resolution) ([]team.Team, []fixture.Match, []Notice) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EnrichmentService.Enrich")
	defer span.End()

	teams := copyTeams(bundle.Teams)
	matches := copyMatches(bundle.NextMatches)
	if len(bundle.Odds) == 0 {
		if bundle.Odds != nil {
			s.logger.InfoContext(ctx, "odds source empty, skipping enrichment")
			return teams, matches, []Notice{{Stage: "enrichment", Code: noticeCodeEmptySource, Detail: "odds"}}
		}
		s.logger.InfoContext(ctx, "odds source missing, skipping enrichment")
		return teams, matches, nil
	}

	var notices []Notice
	projected := 0
	for _, f := range bundle.Odds {
		if !f.IsFuture() {
			continue
		}

		homeWin := round2(f.HomeWin)
		draw := round2(f.Draw)
		awayWin := round2(f.AwayWin)

		homeCanonical, homeOK := res.TeamByOddsName[f.HomeName]
		awayCanonical, awayOK := res.TeamByOddsName[f.AwayName]
		if !homeOK && !awayOK {
			notices = append(notices, Notice{
				Stage:  "enrichment",
				Code:   noticeCodeDroppedFixture,
				Detail: fmt.Sprintf("%s vs %s", f.HomeName, f.AwayName),
			})
			continue
		}

		for i := range teams {
			if homeOK && teams[i].Name == homeCanonical {
				teams[i].OddsHomeWin = ptr(homeWin)
				teams[i].OddsDraw = ptr(draw)
				teams[i].OddsAwayWin = ptr(awayWin)
				projected++
			}
			if awayOK && teams[i].Name == awayCanonical {
				teams[i].OddsHomeWin = ptr(homeWin)
				teams[i].OddsDraw = ptr(draw)
				teams[i].OddsAwayWin = ptr(awayWin)
				projected++
			}
		}

		if homeOK {
			for i := range matches {
				if matches[i].Home != homeCanonical {
					continue
				}
				matches[i].OddsHomeWin = ptr(homeWin)
				matches[i].OddsDraw = ptr(draw)
				matches[i].OddsAwayWin = ptr(awayWin)
			}
		}
	}

	s.logger.InfoContext(ctx, "odds enrichment finished", "teams_projected", projected, "fixtures_dropped", len(notices))
	return teams, matches, notices
}

// copyTeams clones the table for in-place projection. A nil input stays
// nil and a non-nil empty input stays non-nil, so downstream
// missing-table checks still see the source's delivery state.
func copyTeams(src []team.Team) []team.Team {
	if src == nil {
		return nil
	}
	out := make([]team.Team, len(src))
	copy(out, src)
	return out
}

func copyMatches(src []fixture.Match) []fixture.Match {
	if src == nil {
		return nil
	}
	out := make([]fixture.Match, len(src))
	copy(out, src)
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr[T any](v T) *T {
	return &v
}
