package syncqueue

import (
	"encoding/json"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
)

// Op is the remote operation an entry replays.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
)

func (o Op) Valid() bool {
	return o == OpCreate || o == OpUpdate
}

// Entry is a deferred remote write. Payload is the record snapshot taken when the
// write failed; replay reads the current local record and falls back to it.
type Entry struct {
	Seq        int64           `json:"seq"`
	Kind       store.Kind      `json:"kind"`
	Op         Op              `json:"op"`
	LocalID    string          `json:"local_id"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	LastError  *string         `json:"last_error,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// DeadEntry is an entry removed from replay after too many failed attempts.
type DeadEntry struct {
	Entry
	Reason   string    `json:"reason"`
	BuriedAt time.Time `json:"buried_at"`
}

// NewEntry snapshots record into an entry ready for Append.
func NewEntry(op Op, record store.Record) (Entry, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Kind:       record.Kind(),
		Op:         op,
		LocalID:    record.Key(),
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}
