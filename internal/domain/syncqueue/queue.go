package syncqueue

import "context"

// Queue is the durable, ordered list of deferred remote writes.
type Queue interface {
	// Append adds entry at the tail and persists it before returning
	Append(ctx context.Context, entry Entry) (Entry, error)

	// LoadAll returns pending entries in insertion order
	LoadAll(ctx context.Context) ([]Entry, error)

	// ReplaceAll atomically replaces the pending set, keeping the given order
	ReplaceAll(ctx context.Context, entries []Entry) error

	// Swap atomically claims every pending entry in-flight for this handle and
	// returns them. Entries appended afterwards stay pending for the next drain.
	// It fails with ErrDrainInProgress while another handle's claim is live.
	Swap(ctx context.Context) ([]Entry, error)

	// Ack removes a replayed in-flight entry
	Ack(ctx context.Context, seq int64) error

	// Requeue moves an in-flight entry back to the tail with attempts incremented
	Requeue(ctx context.Context, entry Entry, cause error) (Entry, error)

	// Recover returns in-flight entries to pending at their original position.
	// Only entries claimed by this handle or whose claim has expired are touched.
	Recover(ctx context.Context) (int, error)

	Len(ctx context.Context) (int, error)

	// Bury moves an in-flight entry to the dead letters
	Bury(ctx context.Context, entry Entry, reason string) error
	Dead(ctx context.Context) ([]DeadEntry, error)

	// Revive puts a dead entry back at the tail of the pending queue with attempts reset
	Revive(ctx context.Context, seq int64) (Entry, error)
}
