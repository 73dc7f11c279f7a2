// Package source defines the pending-item source capability and an adapter
// that talks to the external task application through its scripting host.
package source

import (
	"context"
	"time"
)

// Item is one pending item owned by the external source. It is never
// mutated locally; it leaves the pending set only through Acknowledge.
type Item struct {
	ID        string
	CreatedAt time.Time
	Text      string
}

// Source is the capability the sync core consumes from the external task
// application.
type Source interface {
	// FetchPending returns the incomplete items of the named list.
	FetchPending(ctx context.Context, list string) ([]Item, error)
	// Acknowledge consumes the given items at the source and returns the
	// number actually acknowledged. Unknown ids are ignored, not fatal.
	Acknowledge(ctx context.Context, ids []string) (int, error)
}
