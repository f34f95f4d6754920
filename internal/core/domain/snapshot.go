package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxKeyLen is the longest key, in bytes, that every snapshot store can hold.
const MaxKeyLen = 1024

type SnapshotEntry struct {
	Key       string
	Inventory Inventory
}

// Snapshot is a point-in-time copy of every record in a keyspace.
type Snapshot struct {
	ID        string
	CreatedAt time.Time
	Entries   []SnapshotEntry
}

func NewSnapshot(entries []SnapshotEntry) Snapshot {
	return Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Entries:   entries,
	}
}
