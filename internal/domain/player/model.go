package player

import "fmt"

// Status is the availability of a player for the upcoming round.
type Status string

const (
	StatusOK        Status = "ok"
	StatusInjured   Status = "injured"
	StatusSuspended Status = "suspended"
	StatusDoubtful  Status = "doubtful"
	StatusUnknown   Status = "unknown"
)

// ParseStatus maps a raw upstream status string onto the known set.
// Anything unrecognised collapses to StatusUnknown.
func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusOK, StatusInjured, StatusSuspended, StatusDoubtful:
		return Status(raw)
	default:
		return StatusUnknown
	}
}

// Position codes issued by the primary source. Code 5 denotes coaching
// staff and is filtered out at extraction time.
const (
	CodeGoalkeeper = 1
	CodeDefender   = 2
	CodeMidfielder = 3
	CodeForward    = 4
	CodeCoach      = 5
)

// Player is one athlete as issued by the primary source. IDs are stable
// across runs; everything else is a per-run snapshot.
type Player struct {
	ID           int64
	Name         string
	Slug         string
	TeamID       *int64
	PositionCode int

	// AltPositionCodes holds alternate positions when the source already
	// delivered a structured list; AltPositionsRaw keeps the raw encoding
	// (a "[2, 4]" style list or comma-separated codes) when it did not.
	AltPositionCodes []int
	AltPositionsRaw  string

	Price          int64
	PriceIncrement int64
	Status         Status
	StatusInfo     *string

	// Fitness is the recent per-match mark sequence, most recent first.
	// Entries are numeric point totals or status notes, kept verbatim.
	Fitness []string

	Points     int
	PointsHome int
	PointsAway int
	PlayedHome int
	PlayedAway int
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	return nil
}
