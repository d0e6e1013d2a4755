package domain

import "time"

// AuditEntry is an immutable record of one mutation. Entries are appended in
// the same transaction as the write they describe and are never updated or
// deleted outside full tenant erasure.
type AuditEntry struct {
	ID         string
	TenantID   string
	Module     Module
	Action     Action
	EntityID   string
	EntityName string
	// JSON snapshots of the entity around the mutation. Before is empty on
	// create, After on delete.
	Before []byte
	After  []byte

	ActorID   string
	ActorName string
	CreatedAt time.Time
}
