package team

import (
	"fmt"
	"time"
)

// Team is a real club in the primary source's competition. Name is the
// canonical spelling every foreign naming scheme resolves onto.
type Team struct {
	ID   int64
	Name string
	Slug string

	NextGameDate *time.Time
	NextGameHome string
	NextGameAway string
	NextGame     string
	IsHome       *bool

	// Odds for the team's next fixture, projected on by enrichment.
	// Nil until a future fixture from the odds source resolves to this team.
	OddsHomeWin *float64
	OddsDraw    *float64
	OddsAwayWin *float64
}

func (t Team) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}
