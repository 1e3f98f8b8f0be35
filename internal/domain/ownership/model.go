package ownership

import (
	"fmt"
	"time"
)

// Record links a player to the fantasy team holding it in the user's
// private league. A player has at most one active record.
type Record struct {
	OwnerID   int64
	OwnerName string
	PlayerID  int64

	PurchaseDate      *time.Time
	PurchasePrice     *int64
	Clause            *int64
	ClauseLockedUntil *time.Time
	Invested          *int64
}

func (r Record) Validate() error {
	if r.PlayerID <= 0 {
		return fmt.Errorf("ownership player id is required")
	}
	if r.OwnerName == "" {
		return fmt.Errorf("ownership owner name is required")
	}
	return nil
}
