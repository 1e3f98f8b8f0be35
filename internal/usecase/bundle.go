package usecase

import (
	"context"

	"github.com/dani537/fantasy-crew/internal/domain/fixture"
	"github.com/dani537/fantasy-crew/internal/domain/lineup"
	"github.com/dani537/fantasy-crew/internal/domain/market"
	"github.com/dani537/fantasy-crew/internal/domain/news"
	"github.com/dani537/fantasy-crew/internal/domain/odds"
	"github.com/dani537/fantasy-crew/internal/domain/ownership"
	"github.com/dani537/fantasy-crew/internal/domain/player"
	"github.com/dani537/fantasy-crew/internal/domain/season"
	"github.com/dani537/fantasy-crew/internal/domain/standings"
	"github.com/dani537/fantasy-crew/internal/domain/team"
)

// SourceBundle is the fully-materialized snapshot of every upstream table
// a pipeline run consumes. A nil slice means the source was never
// delivered (fetch failed or disabled); a non-nil empty slice means the
// source answered with zero rows. Consolidation treats only the former
// as fatal.
type SourceBundle struct {
	Players       []player.Player
	Teams         []team.Team
	NextMatches   []fixture.Match
	Ownership     []ownership.Record
	Offers        []market.Offer
	Sales         []market.Sale
	LineupSignals []lineup.Signal
	Odds          []odds.Fixture
	News          []news.Item
	Standings     []standings.Entry
	Rounds        []season.Round
	ActiveEvents  []season.Event
}

// CompetitionSource delivers the primary source's public competition data.
type CompetitionSource interface {
	Players(ctx context.Context) ([]player.Player, error)
	Teams(ctx context.Context) ([]team.Team, error)
	NextRound(ctx context.Context) ([]fixture.Match, error)
	Season(ctx context.Context) (season.Info, error)
}

// LeagueSource delivers the user's private-league data.
type LeagueSource interface {
	Ownership(ctx context.Context) ([]ownership.Record, error)
	MarketOffers(ctx context.Context) ([]market.Offer, error)
	MarketSales(ctx context.Context) ([]market.Sale, error)
	Standings(ctx context.Context) ([]standings.Entry, error)
}

// LineupSource delivers predicted lineups under a foreign naming scheme.
type LineupSource interface {
	Signals(ctx context.Context) ([]lineup.Signal, error)
}

// OddsSource delivers match odds under the odds provider's naming scheme.
type OddsSource interface {
	MatchOdds(ctx context.Context) ([]odds.Fixture, error)
}

// NewsSource delivers cleaned feed items for report briefs.
type NewsSource interface {
	Latest(ctx context.Context) ([]news.Item, error)
}
