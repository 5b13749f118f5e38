// Package events carries journal lifecycle changes from the write pipeline to
// downstream consumers over a Redis stream. Delivery is asynchronous and
// at-least-once; events for the same entry keep their publish order.
package events

import (
	"time"

	"github.com/inkleaf/journal/internal/models"
)

// Event kinds
const (
	EntryCreated = "entry.created"
	EntryUpdated = "entry.updated"
	EntryDeleted = "entry.deleted"
)

// EntryEventsStream is the stream every ChangeEvent is appended to.
const EntryEventsStream = "journal.entry.events"

// ChangeEvent is an immutable fact describing one committed mutation.
// Exactly one is produced per successful store write.
type ChangeEvent struct {
	EventID    string      `json:"eventId"`
	Kind       string      `json:"kind"`
	EntryID    string      `json:"entryId"`
	OwnerID    string      `json:"ownerId"`
	OwnerName  string      `json:"ownerName"`
	EntryDate  models.Date `json:"entryDate"`
	Title      string      `json:"title"`
	OccurredAt time.Time   `json:"occurredAt"`
}
