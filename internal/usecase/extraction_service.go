package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/sourcegraph/conc"

	"github.com/dani537/fantasy-crew/internal/domain/snapshot"
	"github.com/dani537/fantasy-crew/internal/platform/logging"
)

// ExtractionService fans out over the upstream sources and materializes
// one SourceBundle snapshot per run. A failed fetch leaves its bundle
// field nil (missing); a fetch that answered with zero rows leaves an
// empty, non-nil slice. The distinction is what lets consolidation
// fail fast on structure while degrading on content.
type ExtractionService struct {
	competition CompetitionSource
	league      LeagueSource
	lineups     LineupSource
	odds        OddsSource
	news        NewsSource
	snapshots   snapshot.Repository
	logger      *logging.Logger
	now         func() time.Time
}

func NewExtractionService(
	competition CompetitionSource,
	league LeagueSource,
	lineups LineupSource,
	oddsSource OddsSource,
	newsSource NewsSource,
	snapshots snapshot.Repository,
	logger *logging.Logger,
) *ExtractionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ExtractionService{
		competition: competition,
		league:      league,
		lineups:     lineups,
		odds:        oddsSource,
		news:        newsSource,
		snapshots:   snapshots,
		logger:      logger,
		now:         time.Now,
	}
}

// Extract fetches all sources concurrently and returns the bundle plus
// notices for every source that could not be delivered. It never fails:
// structural absence is judged later, by consolidation.
func (s *ExtractionService) Extract(ctx context.Context) (SourceBundle, []Notice) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ExtractionService.Extract")
	defer span.End()

	var (
		mu      sync.Mutex
		bundle  SourceBundle
		notices []Notice
	)

	fail := func(source string, err error) {
		mu.Lock()
		defer mu.Unlock()
		notices = append(notices, Notice{Stage: "extraction", Code: "source_unavailable", Detail: source})
		s.logger.WarnContext(ctx, "source extraction failed", "source", source, "error", err)
	}

	var wg conc.WaitGroup
	if s.competition != nil {
		wg.Go(func() {
			players, err := s.competition.Players(ctx)
			if err != nil {
				fail("players", err)
				return
			}
			mu.Lock()
			bundle.Players = players
			mu.Unlock()
			s.persistSnapshot(ctx, "competition", "players", players)
		})
		wg.Go(func() {
			teams, err := s.competition.Teams(ctx)
			if err != nil {
				fail("teams", err)
				return
			}
			mu.Lock()
			bundle.Teams = teams
			mu.Unlock()
			s.persistSnapshot(ctx, "competition", "teams", teams)
		})
		wg.Go(func() {
			matches, err := s.competition.NextRound(ctx)
			if err != nil {
				fail("next_matches", err)
				return
			}
			mu.Lock()
			bundle.NextMatches = matches
			mu.Unlock()
			s.persistSnapshot(ctx, "competition", "next_matches", matches)
		})
		wg.Go(func() {
			info, err := s.competition.Season(ctx)
			if err != nil {
				fail("season", err)
				return
			}
			mu.Lock()
			bundle.Rounds = info.Rounds
			bundle.ActiveEvents = info.ActiveEvents
			mu.Unlock()
			s.persistSnapshot(ctx, "competition", "season", info)
		})
	}
	if s.league != nil {
		wg.Go(func() {
			records, err := s.league.Ownership(ctx)
			if err != nil {
				fail("ownership", err)
				return
			}
			mu.Lock()
			bundle.Ownership = records
			mu.Unlock()
			s.persistSnapshot(ctx, "league", "ownership", records)
		})
		wg.Go(func() {
			offers, err := s.league.MarketOffers(ctx)
			if err != nil {
				fail("market_offers", err)
				return
			}
			mu.Lock()
			bundle.Offers = offers
			mu.Unlock()
			s.persistSnapshot(ctx, "league", "market_offers", offers)
		})
		wg.Go(func() {
			sales, err := s.league.MarketSales(ctx)
			if err != nil {
				fail("market_sales", err)
				return
			}
			mu.Lock()
			bundle.Sales = sales
			mu.Unlock()
			s.persistSnapshot(ctx, "league", "market_sales", sales)
		})
		wg.Go(func() {
			table, err := s.league.Standings(ctx)
			if err != nil {
				fail("standings", err)
				return
			}
			mu.Lock()
			bundle.Standings = table
			mu.Unlock()
			s.persistSnapshot(ctx, "league", "standings", table)
		})
	}
	if s.lineups != nil {
		wg.Go(func() {
			signals, err := s.lineups.Signals(ctx)
			if err != nil {
				fail("lineup_signals", err)
				return
			}
			mu.Lock()
			bundle.LineupSignals = signals
			mu.Unlock()
			s.persistSnapshot(ctx, "lineups", "signals", signals)
		})
	}
	if s.odds != nil {
		wg.Go(func() {
			fixtures, err := s.odds.MatchOdds(ctx)
			if err != nil {
				fail("odds", err)
				return
			}
			mu.Lock()
			bundle.Odds = fixtures
			mu.Unlock()
			s.persistSnapshot(ctx, "odds", "match_odds", fixtures)
		})
	}
	if s.news != nil {
		wg.Go(func() {
			items, err := s.news.Latest(ctx)
			if err != nil {
				fail("news", err)
				return
			}
			mu.Lock()
			bundle.News = items
			mu.Unlock()
		})
	}
	wg.Wait()

	s.logger.InfoContext(ctx, "source extraction finished",
		"players", len(bundle.Players),
		"teams", len(bundle.Teams),
		"ownership", len(bundle.Ownership),
		"offers", len(bundle.Offers),
		"sales", len(bundle.Sales),
		"lineup_signals", len(bundle.LineupSignals),
		"odds", len(bundle.Odds),
		"standings", len(bundle.Standings),
		"rounds", len(bundle.Rounds),
		"failed_sources", len(notices),
	)

	return bundle, notices
}

// persistSnapshot writes the raw table to the audit store. Best effort:
// a write failure is logged and the run continues.
func (s *ExtractionService) persistSnapshot(ctx context.Context, source, entityType string, rows any) {
	if s.snapshots == nil {
		return
	}

	payload, err := sonic.Marshal(rows)
	if err != nil {
		s.logger.WarnContext(ctx, "marshal snapshot payload", "source", source, "entity_type", entityType, "error", err)
		return
	}
	digest := sha256.Sum256(payload)

	err = s.snapshots.UpsertMany(ctx, []snapshot.Payload{{
		Source:      source,
		EntityType:  entityType,
		EntityKey:   source + ":" + entityType,
		PayloadJSON: string(payload),
		PayloadHash: hex.EncodeToString(digest[:]),
		FetchedAt:   s.now().UTC(),
	}})
	if err != nil {
		s.logger.WarnContext(ctx, "persist snapshot", "source", source, "entity_type", entityType, "error", err)
	}
}
