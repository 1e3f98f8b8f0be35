// Package standings models the user-league classification table.
package standings

// Entry is one member's row in the league table.
type Entry struct {
	UserID       int64
	Name         string
	Points       int64
	Position     int
	TeamSize     int
	TeamValue    int64
	TeamValueInc int64
}
