package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/syncqueue"
	"github.com/google/uuid"
)

const (
	statusPending  = "pending"
	statusInflight = "inflight"
)

// DefaultLeaseTTL is how long a drain's claim on its in-flight entries lasts
// without progress. Every settled entry renews it.
const DefaultLeaseTTL = 5 * time.Minute

type syncQueue struct {
	db    *DB
	owner string
	ttl   time.Duration
}

type QueueOption func(*syncQueue)

// WithLeaseTTL sets how long this handle's claims on in-flight entries stay
// live. A process that dies mid-drain blocks other drains for at most ttl.
func WithLeaseTTL(ttl time.Duration) QueueOption {
	return func(s *syncQueue) { s.ttl = ttl }
}

// NewSyncQueue returns the durable queue stored in the sync_queue table. Each
// handle claims in-flight entries under its own owner id, so handles in
// different processes on the same database never drain or recover each
// other's live entries.
func NewSyncQueue(db *DB, opts ...QueueOption) syncqueue.Queue {
	s := &syncQueue{
		db:    db,
		owner: uuid.NewString(),
		ttl:   DefaultLeaseTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *syncQueue) leaseUntil() int64 {
	return time.Now().Add(s.ttl).UnixMilli()
}

// renew extends the lease on this handle's remaining in-flight entries.
func (s *syncQueue) renew(ctx context.Context) error {
	q := GetQuerier(ctx, s.db)
	_, err := q.ExecContext(ctx, `UPDATE sync_queue SET lease_until = ? WHERE status = ? AND owner = ?`,
		s.leaseUntil(), statusInflight, s.owner)
	return err
}

// release returns expired claims to pending. With includeOwn set, this
// handle's live in-flight entries go back as well.
func (s *syncQueue) release(ctx context.Context, includeOwn bool) (int64, error) {
	q := GetQuerier(ctx, s.db)

	owner := ""
	if includeOwn {
		owner = s.owner
	}
	res, err := q.ExecContext(ctx, `
		UPDATE sync_queue SET status = ?, owner = NULL, lease_until = NULL
		WHERE status = ? AND (owner = ? OR owner IS NULL OR lease_until IS NULL OR lease_until < ?)
	`, statusPending, statusInflight, owner, time.Now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const queueColumns = `seq, kind, op, local_id, payload, attempts, last_error, enqueued_at`

func scanEntry(row interface{ Scan(...any) error }) (syncqueue.Entry, error) {
	var (
		e          syncqueue.Entry
		payload    string
		lastError  sql.NullString
		enqueuedAt string
	)
	if err := row.Scan(&e.Seq, &e.Kind, &e.Op, &e.LocalID, &payload, &e.Attempts, &lastError, &enqueuedAt); err != nil {
		return syncqueue.Entry{}, err
	}
	e.Payload = json.RawMessage(payload)
	e.LastError = stringPtr(lastError)

	t, err := parseTime(enqueuedAt)
	if err != nil {
		return syncqueue.Entry{}, err
	}
	e.EnqueuedAt = t
	return e, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", syncqueue.ErrStorageUnavailable, op, err)
}

func validateEntry(e syncqueue.Entry) error {
	if !e.Kind.Valid() {
		return fmt.Errorf("invalid sync entry kind %q", e.Kind)
	}
	if !e.Op.Valid() {
		return fmt.Errorf("invalid sync entry op %q", e.Op)
	}
	if e.LocalID == "" {
		return errors.New("sync entry has no local id")
	}
	if !json.Valid(e.Payload) {
		return errors.New("sync entry payload is not valid JSON")
	}
	return nil
}

func (s *syncQueue) insert(ctx context.Context, e syncqueue.Entry) (syncqueue.Entry, error) {
	q := GetQuerier(ctx, s.db)

	if e.EnqueuedAt.IsZero() {
		e.EnqueuedAt = time.Now().UTC()
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO sync_queue (kind, op, local_id, payload, attempts, last_error, enqueued_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Kind, e.Op, e.LocalID, string(e.Payload), e.Attempts, nullable(e.LastError), formatTime(e.EnqueuedAt), statusPending)
	if err != nil {
		return syncqueue.Entry{}, err
	}

	if e.Seq, err = res.LastInsertId(); err != nil {
		return syncqueue.Entry{}, err
	}
	return e, nil
}

// Append implements syncqueue.Queue.
func (s *syncQueue) Append(ctx context.Context, entry syncqueue.Entry) (syncqueue.Entry, error) {
	if err := validateEntry(entry); err != nil {
		return syncqueue.Entry{}, err
	}

	appended, err := s.insert(ctx, entry)
	if err != nil {
		return syncqueue.Entry{}, storageErr("append", err)
	}
	return appended, nil
}

func (s *syncQueue) list(ctx context.Context, status string) ([]syncqueue.Entry, error) {
	q := GetQuerier(ctx, s.db)

	rows, err := q.QueryContext(ctx, `SELECT `+queueColumns+` FROM sync_queue WHERE status = ? ORDER BY seq`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []syncqueue.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LoadAll implements syncqueue.Queue.
func (s *syncQueue) LoadAll(ctx context.Context) ([]syncqueue.Entry, error) {
	entries, err := s.list(ctx, statusPending)
	if err != nil {
		return nil, storageErr("load", err)
	}
	return entries, nil
}

// ReplaceAll implements syncqueue.Queue. New seq values are assigned in slice order.
func (s *syncQueue) ReplaceAll(ctx context.Context, entries []syncqueue.Entry) error {
	for _, e := range entries {
		if err := validateEntry(e); err != nil {
			return err
		}
	}

	err := WithTransaction(ctx, s.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, s.db)
		if _, err := q.ExecContext(ctx, `DELETE FROM sync_queue WHERE status = ?`, statusPending); err != nil {
			return err
		}
		for _, e := range entries {
			if _, err := s.insert(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storageErr("replace", err)
	}
	return nil
}

// Swap implements syncqueue.Queue. Expired claims of other handles are
// released first and drained with this batch.
func (s *syncQueue) Swap(ctx context.Context) ([]syncqueue.Entry, error) {
	var entries []syncqueue.Entry

	err := WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.release(ctx, false); err != nil {
			return err
		}

		q := GetQuerier(ctx, s.db)
		var foreign int
		if err := q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sync_queue WHERE status = ? AND owner IS NOT ?`, statusInflight, s.owner,
		).Scan(&foreign); err != nil {
			return err
		}
		if foreign > 0 {
			return syncqueue.ErrDrainInProgress
		}

		var err error
		if entries, err = s.list(ctx, statusPending); err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		last := entries[len(entries)-1].Seq
		_, err = q.ExecContext(ctx, `
			UPDATE sync_queue SET status = ?, owner = ?, lease_until = ?
			WHERE status = ? AND seq <= ?
		`, statusInflight, s.owner, s.leaseUntil(), statusPending, last)
		return err
	})
	if errors.Is(err, syncqueue.ErrDrainInProgress) {
		return nil, err
	}
	if err != nil {
		return nil, storageErr("swap", err)
	}
	return entries, nil
}

// Ack implements syncqueue.Queue.
func (s *syncQueue) Ack(ctx context.Context, seq int64) error {
	var res sql.Result

	err := WithTransaction(ctx, s.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, s.db)
		var err error
		if res, err = q.ExecContext(ctx, `DELETE FROM sync_queue WHERE seq = ?`, seq); err != nil {
			return err
		}
		return s.renew(ctx)
	})
	if err != nil {
		return storageErr("ack", err)
	}
	return checkAffected(res, syncqueue.ErrEntryNotFound)
}

// Requeue implements syncqueue.Queue.
func (s *syncQueue) Requeue(ctx context.Context, entry syncqueue.Entry, cause error) (syncqueue.Entry, error) {
	entry.Attempts++
	if cause != nil {
		msg := cause.Error()
		entry.LastError = &msg
	}

	var requeued syncqueue.Entry
	err := WithTransaction(ctx, s.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, s.db)
		if _, err := q.ExecContext(ctx, `DELETE FROM sync_queue WHERE seq = ?`, entry.Seq); err != nil {
			return err
		}
		var err error
		if requeued, err = s.insert(ctx, entry); err != nil {
			return err
		}
		return s.renew(ctx)
	})
	if err != nil {
		return syncqueue.Entry{}, storageErr("requeue", err)
	}
	return requeued, nil
}

// Recover implements syncqueue.Queue. A live claim held by another handle,
// such as a running daemon's drain, is left alone.
func (s *syncQueue) Recover(ctx context.Context) (int, error) {
	n, err := s.release(ctx, true)
	if err != nil {
		return 0, storageErr("recover", err)
	}
	return int(n), nil
}

// Len implements syncqueue.Queue. In-flight entries count as pending.
func (s *syncQueue) Len(ctx context.Context) (int, error) {
	q := GetQuerier(ctx, s.db)

	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_queue`).Scan(&n); err != nil {
		return 0, storageErr("len", err)
	}
	return n, nil
}

// Bury implements syncqueue.Queue.
func (s *syncQueue) Bury(ctx context.Context, entry syncqueue.Entry, reason string) error {
	err := WithTransaction(ctx, s.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, s.db)
		if _, err := q.ExecContext(ctx, `DELETE FROM sync_queue WHERE seq = ?`, entry.Seq); err != nil {
			return err
		}
		_, err := q.ExecContext(ctx, `
			INSERT OR REPLACE INTO sync_dead_letters (
				seq, kind, op, local_id, payload, attempts, last_error, enqueued_at, reason, buried_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, entry.Seq, entry.Kind, entry.Op, entry.LocalID, string(entry.Payload), entry.Attempts,
			nullable(entry.LastError), formatTime(entry.EnqueuedAt), reason, formatTime(time.Now()))
		if err != nil {
			return err
		}
		return s.renew(ctx)
	})
	if err != nil {
		return storageErr("bury", err)
	}
	return nil
}

// Dead implements syncqueue.Queue.
func (s *syncQueue) Dead(ctx context.Context) ([]syncqueue.DeadEntry, error) {
	q := GetQuerier(ctx, s.db)

	rows, err := q.QueryContext(ctx, `SELECT `+queueColumns+`, reason, buried_at FROM sync_dead_letters ORDER BY seq`)
	if err != nil {
		return nil, storageErr("dead", err)
	}
	defer rows.Close()

	dead := []syncqueue.DeadEntry{}
	for rows.Next() {
		var (
			d          syncqueue.DeadEntry
			payload    string
			lastError  sql.NullString
			enqueuedAt string
			buriedAt   string
		)
		if err := rows.Scan(&d.Seq, &d.Kind, &d.Op, &d.LocalID, &payload, &d.Attempts, &lastError, &enqueuedAt, &d.Reason, &buriedAt); err != nil {
			return nil, storageErr("dead", err)
		}
		d.Payload = json.RawMessage(payload)
		d.LastError = stringPtr(lastError)
		if d.EnqueuedAt, err = parseTime(enqueuedAt); err != nil {
			return nil, storageErr("dead", err)
		}
		if d.BuriedAt, err = parseTime(buriedAt); err != nil {
			return nil, storageErr("dead", err)
		}
		dead = append(dead, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("dead", err)
	}
	return dead, nil
}

// Revive implements syncqueue.Queue.
func (s *syncQueue) Revive(ctx context.Context, seq int64) (syncqueue.Entry, error) {
	var revived syncqueue.Entry

	err := WithTransaction(ctx, s.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, s.db)

		e, err := scanEntry(q.QueryRowContext(ctx, `SELECT `+queueColumns+` FROM sync_dead_letters WHERE seq = ?`, seq))
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM sync_dead_letters WHERE seq = ?`, seq); err != nil {
			return err
		}

		e.Attempts = 0
		e.LastError = nil
		revived, err = s.insert(ctx, e)
		return err
	})
	if err != nil {
		if isNoRows(err) {
			return syncqueue.Entry{}, syncqueue.ErrEntryNotFound
		}
		return syncqueue.Entry{}, storageErr("revive", err)
	}
	return revived, nil
}
