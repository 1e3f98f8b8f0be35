// Package season models the competition calendar: the scheduled rounds
// and whatever events are open at extraction time.
package season

import "time"

// Round is one scheduled round of the competition.
type Round struct {
	ID     int64
	Name   string
	Short  string
	Status string
	Type   string
}

// Event is an open competition event, typically a round in play. End is
// nil when the source gives no closing time.
type Event struct {
	ID     int64
	Name   string
	Status string
	Type   string
	End    *time.Time
}

// Info bundles the calendar with the currently open events.
type Info struct {
	Rounds       []Round
	ActiveEvents []Event
}
