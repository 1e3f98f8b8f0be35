package analysis

import (
	"time"

	"github.com/dani537/fantasy-crew/internal/domain/player"
)

// Row is one line of the master analytical table: a player left-joined
// with its club, league ownership, market activity and resolved lineup
// signal. Pointer fields are nil when the contributing source had no
// record for the player; a nil here is typed absence, not a zero.
type Row struct {
	PlayerID   int64
	PlayerName string

	// PositionCode is the raw integer issued upstream; Position is its
	// decoded label, filled in by feature engineering. Unknown codes are
	// carried through as their literal digits.
	PositionCode int
	Position     string

	AltPositionCodes []int
	AltPositionsRaw  string
	AltPositions     string

	Price          int64
	PriceIncrement int64
	Status         player.Status
	StatusInfo     *string
	Fitness        []string

	Points     int
	PointsHome int
	PointsAway int
	PlayedHome int
	PlayedAway int

	AvgPoints     *float64
	AvgPointsHome *float64
	AvgPointsAway *float64

	TeamID     *int64
	TeamName   *string
	TeamIsHome *bool

	OddsHomeWin *float64
	OddsDraw    *float64
	OddsAwayWin *float64

	OwnerName         *string
	PurchaseDate      *time.Time
	PurchasePrice     *int64
	Clause            *int64
	ClauseLockedUntil *time.Time
	Invested          *int64

	OfferAmount     *int64
	OfferUntil      *time.Time
	OfferBidderName *string

	SalePrice      *int64
	SaleUntil      *time.Time
	SaleSellerName *string
	SaleClause     *int64

	// StarterChanceRaw is the lineup site's probability text; the
	// normalized [0,1] StarterProbability defaults to zero when the
	// player has no resolved signal.
	StarterChanceRaw   *string
	StarterProbability float64
	ReserveName        *string
	Doubtful           *bool
	Cautioned          *bool
}
