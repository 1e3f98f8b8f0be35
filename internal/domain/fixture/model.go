package fixture

import "time"

// Match is one game of the upcoming round (jornada) as announced by the
// primary source. Home/Away use canonical team spellings.
type Match struct {
	Round  string
	Date   *time.Time
	Home   string
	Away   string
	Label  string
	Venue  string
	Status string

	// Odds projected on by enrichment, matched on the home side.
	OddsHomeWin *float64
	OddsDraw    *float64
	OddsAwayWin *float64
}
