package quota

import "context"

// UpdateFn inspects the caller's current record (nil when absent) and returns
// the record to commit plus the decision to report. A nil next record means
// commit nothing; the row is left untouched.
type UpdateFn func(cur *Record) (next *Record, d Decision)

// Store is the persistence surface the accounting engine runs against.
type Store interface {
	// Read is a point read with no locking. Absent records yield (nil, nil).
	Read(ctx context.Context, callerID string) (*Record, error)

	// Update executes fn against the current record and commits the
	// replacement within a single isolated transaction, retrying internally
	// on write conflicts. It is the only mutation path: two concurrent
	// updates for the same caller must serialize so that both never observe
	// the same starting state.
	Update(ctx context.Context, callerID string, fn UpdateFn) (Decision, error)
}
