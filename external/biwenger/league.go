package biwenger

import (
	"context"
	"fmt"

	"github.com/dani537/fantasy-crew/internal/domain/market"
	"github.com/dani537/fantasy-crew/internal/domain/ownership"
	"github.com/dani537/fantasy-crew/internal/domain/standings"
)

const (
	leagueQuery     = "?include=all,-lastAccess&fields=*,standings,tournaments,group,settings(description)"
	userDetailQuery = "?fields=*,account(id),players(id,owner),lineups(round,points,count,position),league(id,name,competition,type,mode,marketMode,scoreID),market,seasons,offers,lastPositions"
)

type leagueEnvelope struct {
	Data struct {
		Standings []standingPayload `json:"standings"`
	} `json:"data"`
}

type standingPayload struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Points       int64  `json:"points"`
	Position     int    `json:"position"`
	TeamSize     int    `json:"teamSize"`
	TeamValue    int64  `json:"teamValue"`
	TeamValueInc int64  `json:"teamValueInc"`
}

type userDetailEnvelope struct {
	Data struct {
		Name    string `json:"name"`
		Players []struct {
			ID    int64 `json:"id"`
			Owner *struct {
				Date              int64  `json:"date"`
				Price             *int64 `json:"price"`
				Clause            *int64 `json:"clause"`
				ClauseLockedUntil int64  `json:"clauseLockedUntil"`
				Invested          *int64 `json:"invested"`
			} `json:"owner"`
		} `json:"players"`
	} `json:"data"`
}

type marketEnvelope struct {
	Data struct {
		Sales []struct {
			Price  int64 `json:"price"`
			Date   int64 `json:"date"`
			Until  int64 `json:"until"`
			Player *struct {
				ID    int64 `json:"id"`
				Owner *struct {
					Clause *int64 `json:"clause"`
				} `json:"owner"`
			} `json:"player"`
			User *struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"user"`
		} `json:"sales"`
		Offers []struct {
			ID      int64  `json:"id"`
			Amount  int64  `json:"amount"`
			Created int64  `json:"created"`
			Until   int64  `json:"until"`
			Status  string `json:"status"`
			Type    string `json:"type"`
			From    *struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"from"`
			RequestedPlayers []int64 `json:"requestedPlayers"`
		} `json:"offers"`
	} `json:"data"`
}

// Standings fetches the user-league classification table in the order
// the league reports it.
func (c *Client) Standings(ctx context.Context) ([]standings.Entry, error) {
	var league leagueEnvelope
	if _, err := c.doJSON(ctx, c.appBaseURL+leaguePath+leagueQuery, true, &league); err != nil {
		return nil, fmt.Errorf("fetch league standings: %w", err)
	}

	entries := make([]standings.Entry, 0, len(league.Data.Standings))
	for _, member := range league.Data.Standings {
		entries = append(entries, standings.Entry{
			UserID:       member.ID,
			Name:         member.Name,
			Points:       member.Points,
			Position:     member.Position,
			TeamSize:     member.TeamSize,
			TeamValue:    member.TeamValue,
			TeamValueInc: member.TeamValueInc,
		})
	}
	return entries, nil
}

// Ownership walks the league standings and fetches each member's squad,
// flattening it into one record per held player. Users whose detail
// fetch fails are skipped with a warning; a partially-assembled table is
// still an answer.
func (c *Client) Ownership(ctx context.Context) ([]ownership.Record, error) {
	var league leagueEnvelope
	if _, err := c.doJSON(ctx, c.appBaseURL+leaguePath+leagueQuery, true, &league); err != nil {
		return nil, fmt.Errorf("fetch league standings: %w", err)
	}

	records := make([]ownership.Record, 0, len(league.Data.Standings)*20)
	for _, member := range league.Data.Standings {
		var detail userDetailEnvelope
		url := fmt.Sprintf("%s/user/%d%s", c.appBaseURL, member.ID, userDetailQuery)
		if _, err := c.doJSON(ctx, url, true, &detail); err != nil {
			c.logger.WarnContext(ctx, "skipping league member, detail fetch failed",
				"user_id", member.ID, "user", member.Name, "error", err)
			continue
		}

		ownerName := detail.Data.Name
		if ownerName == "" {
			ownerName = member.Name
		}
		for _, held := range detail.Data.Players {
			record := ownership.Record{
				OwnerID:   member.ID,
				OwnerName: ownerName,
				PlayerID:  held.ID,
			}
			if owner := held.Owner; owner != nil {
				record.PurchaseDate = unixTime(owner.Date)
				record.PurchasePrice = owner.Price
				record.Clause = owner.Clause
				record.ClauseLockedUntil = unixTime(owner.ClauseLockedUntil)
				record.Invested = owner.Invested
			}
			records = append(records, record)
		}
	}
	return records, nil
}

// MarketSales fetches the players currently listed on the league market.
// A listing with no user is the open market selling on its own.
func (c *Client) MarketSales(ctx context.Context) ([]market.Sale, error) {
	var envelope marketEnvelope
	if _, err := c.doJSON(ctx, c.appBaseURL+marketPath, true, &envelope); err != nil {
		return nil, fmt.Errorf("fetch market sales: %w", err)
	}

	sales := make([]market.Sale, 0, len(envelope.Data.Sales))
	for _, payload := range envelope.Data.Sales {
		if payload.Player == nil {
			continue
		}
		sale := market.Sale{
			PlayerID:   payload.Player.ID,
			Price:      payload.Price,
			Date:       unixTime(payload.Date),
			Until:      unixTime(payload.Until),
			SellerName: market.OpenMarketName,
		}
		if payload.User != nil {
			sale.SellerID = &payload.User.ID
			sale.SellerName = payload.User.Name
		}
		if payload.Player.Owner != nil {
			sale.Clause = payload.Player.Owner.Clause
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

// MarketOffers fetches the offers pending against the user's squad. An
// offer with no sender comes from the open market; the first requested
// player identifies the target.
func (c *Client) MarketOffers(ctx context.Context) ([]market.Offer, error) {
	var envelope marketEnvelope
	if _, err := c.doJSON(ctx, c.appBaseURL+marketPath, true, &envelope); err != nil {
		return nil, fmt.Errorf("fetch market offers: %w", err)
	}

	offers := make([]market.Offer, 0, len(envelope.Data.Offers))
	for _, payload := range envelope.Data.Offers {
		offer := market.Offer{
			ID:         payload.ID,
			Amount:     payload.Amount,
			Created:    unixTime(payload.Created),
			Until:      unixTime(payload.Until),
			Status:     payload.Status,
			Type:       payload.Type,
			BidderName: market.OpenMarketName,
		}
		if payload.From != nil {
			offer.BidderID = &payload.From.ID
			offer.BidderName = payload.From.Name
		}
		if len(payload.RequestedPlayers) > 0 {
			offer.RequestedPlayerID = &payload.RequestedPlayers[0]
		}
		offers = append(offers, offer)
	}
	return offers, nil
}
