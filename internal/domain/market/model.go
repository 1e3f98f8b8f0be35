package market

import "time"

// OpenMarketName labels sales and offers with no counterparty team,
// i.e. the league's open market acting on its own.
const OpenMarketName = "Mercado"

// Sale is a player currently listed for sale. At most one active listing
// exists per player.
type Sale struct {
	PlayerID   int64
	Price      int64
	Date       *time.Time
	Until      *time.Time
	SellerID   *int64
	SellerName string
	Clause     *int64
}

// Offer is a bid against a player. Several offers may target the same
// player; consolidation keeps one per a documented policy.
type Offer struct {
	ID                int64
	Amount            int64
	Created           *time.Time
	Until             *time.Time
	Status            string
	Type              string
	BidderID          *int64
	BidderName        string
	RequestedPlayerID *int64
}
