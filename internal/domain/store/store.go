// Package store defines the storage capability shared by the local store,
// the remote client and the server repositories. Sync logic depends only on
// this shape, so either side can be replaced without touching it.
package store

import (
	"context"
	"errors"
)

// Kind tags the entity type of a record or queue entry.
type Kind string

const (
	KindWorker     Kind = "worker"
	KindProject    Kind = "project"
	KindAttendance Kind = "attendance"
	KindPayment    Kind = "payment"
)

func (k Kind) Valid() bool {
	switch k {
	case KindWorker, KindProject, KindAttendance, KindPayment:
		return true
	}
	return false
}

// ErrNotFound is returned by GetByID and Update when no record has the id.
var ErrNotFound = errors.New("record not found")

// Record is implemented by every synchronised entity.
type Record interface {
	Kind() Kind
	// Key is the identifier assigned by the store currently holding the record.
	Key() string
	// RemoteKey is the server-assigned identifier, "" while the record is local only.
	RemoteKey() string
	Validate() error
}

// Capability is the CRUD surface every store exposes per entity kind.
type Capability[T Record] interface {
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, record T) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id string) (T, error)
}

// LocalCapability is a Capability whose records also carry a remote identifier.
type LocalCapability[T Record] interface {
	Capability[T]
	// SetRemoteID reconciles the local row with the identifier the remote store assigned.
	SetRemoteID(ctx context.Context, localID string, remoteID string) error
}

// Syncer receives every record right after a successful local write.
type Syncer interface {
	SyncEntity(ctx context.Context, record Record) error
}

// NopSyncer is used where the store written to is already the remote store.
type NopSyncer struct{}

func (NopSyncer) SyncEntity(context.Context, Record) error { return nil }
