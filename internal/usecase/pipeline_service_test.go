package usecase

import (
	"errors"
	"testing"

	"github.com/dani537/fantasy-crew/internal/domain/fixture"
	"github.com/dani537/fantasy-crew/internal/domain/lineup"
	"github.com/dani537/fantasy-crew/internal/domain/market"
	"github.com/dani537/fantasy-crew/internal/domain/odds"
	"github.com/dani537/fantasy-crew/internal/domain/ownership"
	"github.com/dani537/fantasy-crew/internal/domain/player"
	"github.com/dani537/fantasy-crew/internal/domain/team"
)

func newPipelineService() *PipelineService {
	return NewPipelineService(
		NewResolverService(nil, nil),
		NewEnrichmentService(nil),
		NewConsolidationService(nil),
		NewFeatureService(nil),
		nil,
	)
}

func TestPipelineRun_EndToEnd(t *testing.T) {
	svc := newPipelineService()

	bundle := SourceBundle{
		Players: []player.Player{
			{ID: 1, Name: "Jon Doe", TeamID: intPtr(7), PositionCode: 3, PointsHome: 20, PlayedHome: 5, PointsAway: 10, PlayedAway: 5},
			{ID: 2, Name: "Marco Ruiz", TeamID: intPtr(7), PositionCode: 4},
			{ID: 3, Name: "Paul Keeper", TeamID: intPtr(8), PositionCode: 1},
		},
		Teams: []team.Team{
			{ID: 7, Name: "RC Celta"},
			{ID: 8, Name: "Real Madrid"},
		},
		NextMatches: []fixture.Match{
			{Home: "RC Celta", Away: "Real Madrid", Label: "RC Celta - Real Madrid"},
		},
		Ownership: []ownership.Record{
			{OwnerID: 9, OwnerName: "Rocket Squad", PlayerID: 1},
		},
		Offers: []market.Offer{},
		Sales: []market.Sale{
			{PlayerID: 2, Price: 900_000, SellerName: market.OpenMarketName},
		},
		LineupSignals: []lineup.Signal{
			{TeamName: "Celta de Vigo", PlayerName: "Jon Doe", StarterChance: "75%"},
		},
		Odds: []odds.Fixture{
			{HomeName: "RC Celta", AwayName: "Real Madrid", HomeWin: 2.5, Draw: 3.333, AwayWin: 2.8},
		},
	}

	result, err := svc.Run(t.Context(), bundle)
	if err != nil {
		t.Fatalf("pipeline run: %v", err)
	}

	if len(result.Master) != len(bundle.Players) {
		t.Fatalf("master has %d rows for %d players", len(result.Master), len(bundle.Players))
	}

	owned := result.Master[0]
	if owned.OwnerName == nil || *owned.OwnerName != "Rocket Squad" {
		t.Fatalf("player 1 owner = %v, want Rocket Squad", owned.OwnerName)
	}
	if owned.Position != "MF" {
		t.Fatalf("player 1 position = %q, want MF", owned.Position)
	}
	if owned.StarterProbability != 0.75 {
		t.Fatalf("player 1 starter probability = %v, want 0.75 from the lineup signal", owned.StarterProbability)
	}
	if owned.AvgPoints == nil || *owned.AvgPoints != 3.0 {
		t.Fatalf("player 1 avg = %v, want 3.0", owned.AvgPoints)
	}
	if owned.OddsDraw == nil || *owned.OddsDraw != 3.33 {
		t.Fatalf("player 1 draw odds = %v, want 3.33 via the club join", owned.OddsDraw)
	}
	if owned.SalePrice != nil {
		t.Fatalf("player 1 is not for sale")
	}

	listed := result.Master[1]
	if listed.SalePrice == nil || *listed.SalePrice != 900_000 {
		t.Fatalf("player 2 sale price = %v, want 900000", listed.SalePrice)
	}
	if listed.OwnerName != nil {
		t.Fatalf("player 2 has no owner")
	}
	if listed.StarterProbability != 0.0 {
		t.Fatalf("player 2 has no signal, probability = %v", listed.StarterProbability)
	}

	free := result.Master[2]
	if free.OwnerName != nil || free.SalePrice != nil || free.OfferAmount != nil {
		t.Fatalf("player 3 must be all-null on league columns: %+v", free)
	}
	if free.Position != "GK" {
		t.Fatalf("player 3 position = %q, want GK", free.Position)
	}

	if len(result.NextMatches) != 1 || result.NextMatches[0].OddsHomeWin == nil {
		t.Fatalf("next round missed its odds: %+v", result.NextMatches)
	}
}

func TestPipelineRun_MissingRequiredSourceFails(t *testing.T) {
	svc := newPipelineService()

	bundle := consolidationBundle([]player.Player{{ID: 1, Name: "Jon Doe"}})
	bundle.LineupSignals = nil

	_, err := svc.Run(t.Context(), bundle)
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource, got %v", err)
	}
}

func TestPipelineRun_EmptyTeamsTableDegrades(t *testing.T) {
	svc := newPipelineService()

	bundle := consolidationBundle([]player.Player{{ID: 1, Name: "Jon Doe", TeamID: ptr(int64(9))}})

	result, err := svc.Run(t.Context(), bundle)
	if err != nil {
		t.Fatalf("empty teams table aborted the run: %v", err)
	}
	if len(result.Master) != 1 {
		t.Fatalf("master rows = %d, want 1", len(result.Master))
	}
	if result.Master[0].TeamName != nil {
		t.Fatalf("team name = %q, want null with no teams delivered", *result.Master[0].TeamName)
	}
}

func TestPipelineRun_CollectsNoticesAcrossStages(t *testing.T) {
	svc := newPipelineService()

	bundle := consolidationBundle([]player.Player{
		{ID: 1, Name: "Jon Doe", AltPositionsRaw: "[bad"},
	})
	bundle.Odds = []odds.Fixture{
		{HomeName: "Alpha", AwayName: "Beta", HomeWin: 2, Draw: 3, AwayWin: 4},
	}

	result, err := svc.Run(t.Context(), bundle)
	if err != nil {
		t.Fatalf("pipeline run: %v", err)
	}

	var dropped, malformed bool
	for _, n := range result.Notices {
		switch n.Code {
		case noticeCodeDroppedFixture:
			dropped = true
		case noticeCodeMalformedValue:
			malformed = true
		}
	}
	if !dropped || !malformed {
		t.Fatalf("expected dropped-fixture and malformed-value notices, got %+v", result.Notices)
	}
}
