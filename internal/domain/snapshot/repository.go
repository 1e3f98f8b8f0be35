package snapshot

import "context"

// Repository persists raw source snapshots.
type Repository interface {
	UpsertMany(ctx context.Context, items []Payload) error
}
