package usecase

import (
	"context"
	"fmt"

	"github.com/dani537/fantasy-crew/internal/domain/analysis"
	"github.com/dani537/fantasy-crew/internal/domain/lineup"
	"github.com/dani537/fantasy-crew/internal/domain/market"
	"github.com/dani537/fantasy-crew/internal/domain/ownership"
	"github.com/dani537/fantasy-crew/internal/domain/team"
	"github.com/dani537/fantasy-crew/internal/platform/logging"
)

// ConsolidationService merges every canonical-keyed table into the master
// analytical table: a fixed sequence of left joins anchored on the full
// player set, so the output row count always equals the player input.
type ConsolidationService struct {
	logger *logging.Logger
}

func NewConsolidationService(logger *logging.Logger) *ConsolidationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ConsolidationService{logger: logger}
}

// Consolidate joins, in order: player + team on team id, + ownership,
// + market offer, + sale on player id, + resolved lineup signal on
// canonical player name. teams must be the enrichment output. A nil
// required table aborts with ErrMissingSource; an empty one just
// contributes nulls.
//
// When several offers target one player, the highest amount is kept,
// ties broken by earliest creation.
func (s *ConsolidationService) Consolidate(ctx context.Context, bundle SourceBundle, teams []team.Team, res Resolution) ([]analysis.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ConsolidationService.Consolidate")
	defer span.End()

	if err := requireSources(bundle, teams); err != nil {
		return nil, err
	}

	teamByID := make(map[int64]team.Team, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = t
	}

	ownershipByPlayer := make(map[int64]ownership.Record, len(bundle.Ownership))
	for _, rec := range bundle.Ownership {
		if _, taken := ownershipByPlayer[rec.PlayerID]; taken {
			continue
		}
		ownershipByPlayer[rec.PlayerID] = rec
	}

	offerByPlayer := make(map[int64]market.Offer)
	for _, offer := range bundle.Offers {
		if offer.RequestedPlayerID == nil {
			continue
		}
		id := *offer.RequestedPlayerID
		current, exists := offerByPlayer[id]
		if !exists || betterOffer(offer, current) {
			offerByPlayer[id] = offer
		}
	}

	saleByPlayer := make(map[int64]market.Sale, len(bundle.Sales))
	for _, sale := range bundle.Sales {
		if _, taken := saleByPlayer[sale.PlayerID]; taken {
			continue
		}
		saleByPlayer[sale.PlayerID] = sale
	}

	signalByCanonical := make(map[string]lineup.Signal, len(bundle.LineupSignals))
	for _, signal := range bundle.LineupSignals {
		canonical, ok := res.PlayerByLineupName[signal.PlayerName]
		if !ok || canonical == "" {
			continue
		}
		if _, taken := signalByCanonical[canonical]; taken {
			continue
		}
		signalByCanonical[canonical] = signal
	}

	rows := make([]analysis.Row, 0, len(bundle.Players))
	for _, p := range bundle.Players {
		row := analysis.Row{
			PlayerID:         p.ID,
			PlayerName:       p.Name,
			PositionCode:     p.PositionCode,
			AltPositionCodes: p.AltPositionCodes,
			AltPositionsRaw:  p.AltPositionsRaw,
			Price:            p.Price,
			PriceIncrement:   p.PriceIncrement,
			Status:           p.Status,
			StatusInfo:       p.StatusInfo,
			Fitness:          p.Fitness,
			Points:           p.Points,
			PointsHome:       p.PointsHome,
			PointsAway:       p.PointsAway,
			PlayedHome:       p.PlayedHome,
			PlayedAway:       p.PlayedAway,
		}

		if p.TeamID != nil {
			if t, ok := teamByID[*p.TeamID]; ok {
				row.TeamID = ptr(t.ID)
				row.TeamName = ptr(t.Name)
				row.TeamIsHome = t.IsHome
				row.OddsHomeWin = t.OddsHomeWin
				row.OddsDraw = t.OddsDraw
				row.OddsAwayWin = t.OddsAwayWin
			}
		}

		if rec, ok := ownershipByPlayer[p.ID]; ok {
			row.OwnerName = ptr(rec.OwnerName)
			row.PurchaseDate = rec.PurchaseDate
			row.PurchasePrice = rec.PurchasePrice
			row.Clause = rec.Clause
			row.ClauseLockedUntil = rec.ClauseLockedUntil
			row.Invested = rec.Invested
		}

		if offer, ok := offerByPlayer[p.ID]; ok {
			row.OfferAmount = ptr(offer.Amount)
			row.OfferUntil = offer.Until
			row.OfferBidderName = ptr(offer.BidderName)
		}

		if sale, ok := saleByPlayer[p.ID]; ok {
			row.SalePrice = ptr(sale.Price)
			row.SaleUntil = sale.Until
			row.SaleSellerName = ptr(sale.SellerName)
			row.SaleClause = sale.Clause
		}

		if signal, ok := signalByCanonical[p.Name]; ok {
			row.StarterChanceRaw = ptr(signal.StarterChance)
			if signal.ReserveName != "" {
				row.ReserveName = ptr(signal.ReserveName)
			}
			row.Doubtful = ptr(signal.Doubtful)
			row.Cautioned = ptr(signal.Cautioned)
		}

		rows = append(rows, row)
	}

	s.logger.InfoContext(ctx, "consolidation finished", "rows", len(rows))
	return rows, nil
}

func requireSources(bundle SourceBundle, teams []team.Team) error {
	required := []struct {
		name    string
		present bool
	}{
		{"players", bundle.Players != nil},
		{"teams", teams != nil},
		{"ownership", bundle.Ownership != nil},
		{"market_offers", bundle.Offers != nil},
		{"market_sales", bundle.Sales != nil},
		{"lineup_signals", bundle.LineupSignals != nil},
	}
	for _, source := range required {
		if !source.present {
			return fmt.Errorf("%w: %s", ErrMissingSource, source.name)
		}
	}
	return nil
}

// betterOffer implements the retention policy for competing offers on one
// player: highest amount, then earliest creation.
func betterOffer(candidate, current market.Offer) bool {
	if candidate.Amount != current.Amount {
		return candidate.Amount > current.Amount
	}
	if candidate.Created == nil || current.Created == nil {
		return false
	}
	return candidate.Created.Before(*current.Created)
}
