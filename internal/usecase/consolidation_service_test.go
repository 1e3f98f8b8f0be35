package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/dani537/fantasy-crew/internal/domain/lineup"
	"github.com/dani537/fantasy-crew/internal/domain/market"
	"github.com/dani537/fantasy-crew/internal/domain/ownership"
	"github.com/dani537/fantasy-crew/internal/domain/player"
	"github.com/dani537/fantasy-crew/internal/domain/team"
)

// consolidationBundle returns the smallest bundle where every required
// source is present (non-nil) but empty.
func consolidationBundle(players []player.Player) SourceBundle {
	return SourceBundle{
		Players:       players,
		Teams:         []team.Team{},
		Ownership:     []ownership.Record{},
		Offers:        []market.Offer{},
		Sales:         []market.Sale{},
		LineupSignals: []lineup.Signal{},
	}
}

func TestConsolidate_RowPerPlayerInInputOrder(t *testing.T) {
	svc := NewConsolidationService(nil)

	players := []player.Player{
		{ID: 3, Name: "Cole"},
		{ID: 1, Name: "Abbot"},
		{ID: 2, Name: "Burns"},
	}
	bundle := consolidationBundle(players)

	rows, err := svc.Consolidate(t.Context(), bundle, bundle.Teams, Resolution{})
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}

	if len(rows) != len(players) {
		t.Fatalf("got %d rows for %d players", len(rows), len(players))
	}
	for i, p := range players {
		if rows[i].PlayerID != p.ID {
			t.Fatalf("row %d has player %d, want input order preserved", i, rows[i].PlayerID)
		}
	}
}

func TestConsolidate_MissingSourceAborts(t *testing.T) {
	svc := NewConsolidationService(nil)

	bundle := consolidationBundle([]player.Player{{ID: 1, Name: "Abbot"}})
	bundle.Ownership = nil

	_, err := svc.Consolidate(t.Context(), bundle, bundle.Teams, Resolution{})
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource, got %v", err)
	}
}

func TestConsolidate_EmptySourcesYieldNullColumns(t *testing.T) {
	svc := NewConsolidationService(nil)

	bundle := consolidationBundle([]player.Player{{ID: 1, Name: "Abbot"}})

	rows, err := svc.Consolidate(t.Context(), bundle, bundle.Teams, Resolution{})
	if err != nil {
		t.Fatalf("empty sources must not abort: %v", err)
	}

	row := rows[0]
	if row.TeamName != nil || row.OwnerName != nil || row.OfferAmount != nil ||
		row.SalePrice != nil || row.StarterChanceRaw != nil {
		t.Fatalf("unjoined columns must stay nil: %+v", row)
	}
}

func TestConsolidate_JoinsTeamOwnershipAndSale(t *testing.T) {
	svc := NewConsolidationService(nil)

	sold := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	bundle := consolidationBundle([]player.Player{
		{ID: 1, Name: "Abbot", TeamID: intPtr(7)},
		{ID: 2, Name: "Burns"},
	})
	bundle.Ownership = []ownership.Record{
		{OwnerID: 9, OwnerName: "Rocket Squad", PlayerID: 1, Invested: ptr(int64(5_000_000))},
	}
	bundle.Sales = []market.Sale{
		{PlayerID: 2, Price: 1_200_000, Until: &sold, SellerName: market.OpenMarketName},
	}
	teams := []team.Team{
		{ID: 7, Name: "RC Celta", OddsHomeWin: ptr(2.1)},
	}

	rows, err := svc.Consolidate(t.Context(), bundle, teams, Resolution{})
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}

	owned := rows[0]
	if owned.TeamName == nil || *owned.TeamName != "RC Celta" {
		t.Fatalf("team join missed: %+v", owned.TeamName)
	}
	if owned.OddsHomeWin == nil || *owned.OddsHomeWin != 2.1 {
		t.Fatalf("enriched odds not carried onto the row: %v", owned.OddsHomeWin)
	}
	if owned.OwnerName == nil || *owned.OwnerName != "Rocket Squad" {
		t.Fatalf("ownership join missed: %v", owned.OwnerName)
	}
	if owned.SalePrice != nil {
		t.Fatalf("unsold player has a sale price")
	}

	listed := rows[1]
	if listed.SalePrice == nil || *listed.SalePrice != 1_200_000 {
		t.Fatalf("sale join missed: %v", listed.SalePrice)
	}
	if listed.SaleSellerName == nil || *listed.SaleSellerName != market.OpenMarketName {
		t.Fatalf("seller = %v, want open market", listed.SaleSellerName)
	}
	if listed.OwnerName != nil {
		t.Fatalf("free agent has an owner")
	}
}

func TestConsolidate_KeepsHighestOfferEarliestOnTies(t *testing.T) {
	svc := NewConsolidationService(nil)

	early := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	late := early.Add(2 * time.Hour)
	bundle := consolidationBundle([]player.Player{{ID: 1, Name: "Abbot"}})
	bundle.Offers = []market.Offer{
		{ID: 101, Amount: 2_000_000, Created: &late, BidderName: "Slow Rich", RequestedPlayerID: intPtr(1)},
		{ID: 102, Amount: 3_000_000, Created: &late, BidderName: "Big Late", RequestedPlayerID: intPtr(1)},
		{ID: 103, Amount: 3_000_000, Created: &early, BidderName: "Big Early", RequestedPlayerID: intPtr(1)},
		{ID: 104, Amount: 500_000, Created: &early, RequestedPlayerID: nil}, // league-wide, no target
	}

	rows, err := svc.Consolidate(t.Context(), bundle, bundle.Teams, Resolution{})
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}

	row := rows[0]
	if row.OfferAmount == nil || *row.OfferAmount != 3_000_000 {
		t.Fatalf("offer amount = %v, want the highest bid", row.OfferAmount)
	}
	if row.OfferBidderName == nil || *row.OfferBidderName != "Big Early" {
		t.Fatalf("bidder = %v, want the earlier of the tied bids", row.OfferBidderName)
	}
}

func TestConsolidate_SignalJoinsOnResolvedCanonicalName(t *testing.T) {
	svc := NewConsolidationService(nil)

	bundle := consolidationBundle([]player.Player{{ID: 1, Name: "John Smith"}})
	bundle.LineupSignals = []lineup.Signal{
		{PlayerName: "J. Smith", StarterChance: "85%", Doubtful: true, TeamName: "Celta"},
		{PlayerName: "Nobody Known", StarterChance: "10%", TeamName: "Celta"},
	}
	res := Resolution{PlayerByLineupName: map[string]string{"J. Smith": "John Smith"}}

	rows, err := svc.Consolidate(t.Context(), bundle, bundle.Teams, res)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}

	row := rows[0]
	if row.StarterChanceRaw == nil || *row.StarterChanceRaw != "85%" {
		t.Fatalf("signal join missed: %v", row.StarterChanceRaw)
	}
	if row.Doubtful == nil || !*row.Doubtful {
		t.Fatalf("doubtful flag not carried")
	}
}
