package acceptance

import (
	"context"
	"time"
)

// Record is the acceptance state for one client key. Created only by an
// explicit accept action; a later accept from the same key overwrites it.
type Record struct {
	Key         string    `json:"key"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	AcceptedAt  time.Time `json:"accepted_at"`
}

// Store maps client keys to acceptance records. Presence of a record for
// a key means the client is treated as not captive for every protocol
// response. Implementations must be safe for arbitrarily many concurrent
// callers with last-writer-wins semantics on same-key accepts.
type Store interface {
	// IsAccepted reports whether a current record exists for key.
	IsAccepted(ctx context.Context, key string) (bool, error)

	// Accept inserts or overwrites the record for key with the current
	// timestamp and the given fingerprint (may be empty). Re-accepting
	// simply refreshes timestamp and fingerprint.
	Accept(ctx context.Context, key, fingerprint string) (Record, error)

	Ping(ctx context.Context) error
}
