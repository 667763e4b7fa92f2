package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/syncqueue"
)

// deferredError marks a failure that should leave the write in the sync queue
// rather than reach the caller.
type deferredError struct{ err error }

func (e *deferredError) Error() string { return e.err.Error() }
func (e *deferredError) Unwrap() error { return e.err }

func deferred(err error) error { return &deferredError{err: err} }

func isDeferred(err error) bool {
	var d *deferredError
	return errors.As(err, &d)
}

// binding pushes one entity kind from the local store to the remote store.
type binding interface {
	push(ctx context.Context, record store.Record) error
	// current returns the local record an entry refers to, falling back to the
	// entry's snapshot when the local row is gone.
	current(ctx context.Context, entry syncqueue.Entry) (store.Record, error)
}

type kindBinding[T store.Record] struct {
	local  store.LocalCapability[T]
	remote store.Capability[T]
	// outbound rewrites local references to remote ids
	outbound func(ctx context.Context, record T) (T, error)
	// withID returns record keyed by id
	withID func(record T, id string) T
}

func (b *kindBinding[T]) push(ctx context.Context, record store.Record) error {
	rec, ok := record.(T)
	if !ok {
		return fmt.Errorf("unexpected %T for kind %s", record, record.Kind())
	}

	out, err := b.outbound(ctx, rec)
	if err != nil {
		if errors.Is(err, syncqueue.ErrUnreconciledReference) {
			return deferred(err)
		}
		return err
	}

	if rec.RemoteKey() == "" {
		created, err := b.remote.Create(ctx, out)
		if err != nil {
			return deferred(err)
		}
		if created.Key() == "" {
			return deferred(fmt.Errorf("remote create of %s returned no id", rec.Kind()))
		}
		if err := b.local.SetRemoteID(ctx, rec.Key(), created.Key()); err != nil {
			return fmt.Errorf("failed to reconcile %s %s: %w", rec.Kind(), rec.Key(), err)
		}
		return nil
	}

	if _, err := b.remote.Update(ctx, b.withID(out, rec.RemoteKey())); err != nil {
		return deferred(err)
	}
	return nil
}

func (b *kindBinding[T]) current(ctx context.Context, entry syncqueue.Entry) (store.Record, error) {
	rec, err := b.local.GetByID(ctx, entry.LocalID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	var snapshot T
	if err := json.Unmarshal(entry.Payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", entry.Kind, err)
	}
	return snapshot, nil
}
