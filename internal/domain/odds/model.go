package odds

// Fixture is a single match quoted by the odds provider. Team names use
// the provider's naming scheme, not the canonical one.
type Fixture struct {
	Date     string
	HomeName string
	AwayName string

	HomeWin float64
	Draw    float64
	AwayWin float64

	// Final goal counts, recorded once the match has been played.
	HomeGoals *int
	AwayGoals *int
}

// IsFuture reports whether the fixture has not been played yet. The
// provider records goal counts only after the final whistle.
func (f Fixture) IsFuture() bool {
	return f.HomeGoals == nil && f.AwayGoals == nil
}
