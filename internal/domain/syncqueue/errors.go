package syncqueue

import "errors"

var (
	// ErrUnreconciledReference means the record points at another record that has no remote id yet.
	ErrUnreconciledReference = errors.New("referenced record has not been synced yet")
	// ErrStorageUnavailable wraps failures of the durable queue itself.
	ErrStorageUnavailable = errors.New("sync queue storage unavailable")
	ErrEntryNotFound      = errors.New("sync queue entry not found")
	// ErrDrainInProgress means another process holds a live claim on in-flight entries.
	ErrDrainInProgress = errors.New("sync queue is being drained by another process")
)
