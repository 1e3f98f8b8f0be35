package snapshot

import "time"

// Payload is one raw source snapshot kept for audit and replay. The
// (Source, EntityType, EntityKey) triple identifies a logical record;
// re-ingesting the same triple overwrites the previous snapshot.
type Payload struct {
	Source      string
	EntityType  string
	EntityKey   string
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}
