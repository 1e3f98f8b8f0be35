package biwenger

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dani537/fantasy-crew/internal/domain/market"
)

const leagueBody = `{"data":{"standings":[
	{"id":9,"name":"Rocket Squad","points":412,"position":1,"teamSize":14,"teamValue":92000000,"teamValueInc":350000},
	{"id":10,"name":"Bench Warmers","points":388,"position":2,"teamSize":13,"teamValue":80500000,"teamValueInc":-120000}
]}}`

const userNineBody = `{"data":{"name":"Rocket Squad","players":[
	{"id":100,"owner":{"date":1755000000,"price":4000000,"clause":8000000,"clauseLockedUntil":1757000000,"invested":4500000}},
	{"id":101,"owner":{"price":900000}}
]}}`

const userTenBody = `{"data":{"name":"Bench Warmers","players":[
	{"id":102}
]}}`

const marketBody = `{"data":{
	"sales":[
		{"price":1200000,"date":1755500000,"until":1755600000,"player":{"id":101,"owner":{"clause":2000000}},"user":{"id":9,"name":"Rocket Squad"}},
		{"price":700000,"player":{"id":103}}
	],
	"offers":[
		{"id":501,"amount":1512400,"created":1755510000,"status":"waiting","type":"purchase","requestedPlayers":[100]},
		{"id":502,"amount":2000000,"created":1755520000,"status":"waiting","type":"purchase","from":{"id":10,"name":"Bench Warmers"},"requestedPlayers":[100,101]}
	]
}}`

func newLeagueTestClient(t *testing.T) (*Client, *map[string]string) {
	t.Helper()
	seenHeaders := map[string]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenHeaders["authorization"] = r.Header.Get("authorization")
		seenHeaders["x-league"] = r.Header.Get("x-league")
		seenHeaders["x-user"] = r.Header.Get("x-user")
		switch {
		case r.URL.Path == leaguePath:
			w.Write([]byte(leagueBody))
		case r.URL.Path == "/user/9":
			w.Write([]byte(userNineBody))
		case r.URL.Path == "/user/10":
			w.Write([]byte(userTenBody))
		case r.URL.Path == marketPath:
			w.Write([]byte(marketBody))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		CDNBaseURL: server.URL,
		AppBaseURL: server.URL,
		Token:      "test-token",
		LeagueID:   77,
		UserID:     9,
	})
	return client, &seenHeaders
}

func TestOwnership_FlattensSquads(t *testing.T) {
	client, headers := newLeagueTestClient(t)

	records, err := client.Ownership(t.Context())
	if err != nil {
		t.Fatalf("ownership: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.OwnerName != "Rocket Squad" || first.PlayerID != 100 {
		t.Fatalf("record mapped wrong: %+v", first)
	}
	if first.PurchasePrice == nil || *first.PurchasePrice != 4_000_000 {
		t.Fatalf("purchase price = %v", first.PurchasePrice)
	}
	if first.PurchaseDate == nil || first.ClauseLockedUntil == nil {
		t.Fatalf("owner timestamps missing: %+v", first)
	}

	// Player held without owner metadata still yields a record.
	bare := records[2]
	if bare.OwnerName != "Bench Warmers" || bare.PlayerID != 102 || bare.PurchasePrice != nil {
		t.Fatalf("bare record mapped wrong: %+v", bare)
	}

	if !strings.HasPrefix((*headers)["authorization"], "Bearer ") {
		t.Fatalf("league calls must carry the bearer token, got %q", (*headers)["authorization"])
	}
	if (*headers)["x-league"] != "77" || (*headers)["x-user"] != "9" {
		t.Fatalf("league scope headers missing: %v", *headers)
	}
}

func TestStandings_MapsLeagueTable(t *testing.T) {
	client, _ := newLeagueTestClient(t)

	entries, err := client.Standings(t.Context())
	if err != nil {
		t.Fatalf("standings: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	leader := entries[0]
	if leader.UserID != 9 || leader.Position != 1 || leader.Points != 412 {
		t.Fatalf("leader mapped wrong: %+v", leader)
	}
	if leader.TeamSize != 14 || leader.TeamValue != 92_000_000 {
		t.Fatalf("leader squad figures mapped wrong: %+v", leader)
	}
	if entries[1].TeamValueInc != -120_000 {
		t.Fatalf("negative value swing lost: %+v", entries[1])
	}
}

func TestMarketSales_OpenMarketPlaceholder(t *testing.T) {
	client, _ := newLeagueTestClient(t)

	sales, err := client.MarketSales(t.Context())
	if err != nil {
		t.Fatalf("market sales: %v", err)
	}
	if len(sales) != 2 {
		t.Fatalf("expected 2 sales, got %d", len(sales))
	}

	userSale := sales[0]
	if userSale.SellerName != "Rocket Squad" || userSale.SellerID == nil {
		t.Fatalf("user sale mapped wrong: %+v", userSale)
	}
	if userSale.Clause == nil || *userSale.Clause != 2_000_000 {
		t.Fatalf("sale clause = %v", userSale.Clause)
	}

	openSale := sales[1]
	if openSale.SellerName != market.OpenMarketName || openSale.SellerID != nil {
		t.Fatalf("userless sale must be the open market: %+v", openSale)
	}
}

func TestMarketOffers_TargetAndPlaceholder(t *testing.T) {
	client, _ := newLeagueTestClient(t)

	offers, err := client.MarketOffers(t.Context())
	if err != nil {
		t.Fatalf("market offers: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(offers))
	}

	open := offers[0]
	if open.BidderName != market.OpenMarketName || open.BidderID != nil {
		t.Fatalf("senderless offer must be the open market: %+v", open)
	}
	if open.RequestedPlayerID == nil || *open.RequestedPlayerID != 100 {
		t.Fatalf("offer target = %v, want 100", open.RequestedPlayerID)
	}

	named := offers[1]
	if named.BidderName != "Bench Warmers" {
		t.Fatalf("named bidder mapped wrong: %+v", named)
	}
	// Multi-player offers keep the first target.
	if named.RequestedPlayerID == nil || *named.RequestedPlayerID != 100 {
		t.Fatalf("multi-target offer = %v, want the first id", named.RequestedPlayerID)
	}
}
