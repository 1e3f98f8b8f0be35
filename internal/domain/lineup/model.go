package lineup

// Signal is one predicted-lineup record scraped from the external lineup
// site. It carries no key into the primary source's identity space; names
// are spelled the way that site spells them and must be resolved before
// the record is joinable.
type Signal struct {
	PositionLabel string
	PlayerName    string

	// ReserveName is the substitute listed behind the starter, when any.
	ReserveName string

	// StarterChance is the raw probability text as scraped ("80%", "100%").
	StarterChance string

	Cautioned bool
	Doubtful  bool

	TeamName string
	// TeamID is the lineup site's own team identifier, not a canonical id.
	TeamID int64
}
