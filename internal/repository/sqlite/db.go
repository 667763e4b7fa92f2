// Package sqlite is the agent's local store: workers, projects, attendance and
// payments keyed by locally assigned ids, plus the durable sync queue.
//
// The database runs embedded through the pure-Go ncruces driver with WAL
// journaling, so the agent needs no cgo toolchain on the device.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps the local database connection.
type DB struct {
	conn *sql.DB
	path string

	closeOnce sync.Once
	closeErr  error
}

// Open opens (creating when missing) the local database at path and applies the schema.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	params := url.Values{}
	params.Add("_pragma", "journal_mode(wal)")
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "foreign_keys(1)")
	params.Set("_txlock", "immediate")

	conn, err := sql.Open("sqlite3", "file:"+path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(4)
	conn.SetConnMaxLifetime(30 * time.Minute)

	db := &DB{conn: conn, path: path}
	if err := db.InitSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// InitSchema creates the tables if they don't exist. Safe to call repeatedly.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Databases created before drain claims existed lack these columns
	for _, col := range []struct{ name, decl string }{
		{"owner", "TEXT"},
		{"lease_until", "INTEGER"},
	} {
		var n int
		if err := db.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM pragma_table_info('sync_queue') WHERE name = ?`, col.name,
		).Scan(&n); err != nil {
			return fmt.Errorf("failed to inspect sync_queue: %w", err)
		}
		if n > 0 {
			continue
		}
		if _, err := db.conn.ExecContext(ctx, `ALTER TABLE sync_queue ADD COLUMN `+col.name+` `+col.decl); err != nil {
			return fmt.Errorf("failed to add sync_queue.%s: %w", col.name, err)
		}
	}
	return nil
}

// Path returns the database file location.
func (db *DB) Path() string {
	return db.path
}

// Close checkpoints the WAL and closes the connection. Later calls return the
// first result, and queries on a closed DB fail instead of panicking.
func (db *DB) Close() error {
	db.closeOnce.Do(func() {
		if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			slog.Warn("failed to checkpoint WAL", "error", err)
		}
		if err := db.conn.Close(); err != nil {
			db.closeErr = fmt.Errorf("failed to close database: %w", err)
		}
	})
	return db.closeErr
}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// GetQuerier returns the transaction carried by ctx, or the connection pool.
func GetQuerier(ctx context.Context, db *DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.conn
}

// WithTransaction executes fn inside a database transaction. Repositories called
// with the ctx passed to fn join the transaction.
func WithTransaction(ctx context.Context, db *DB, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ==================== SCAN HELPERS ====================

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// timestamps holds the text columns shared by every entity table.
type timestamps struct {
	createdAt string
	updatedAt sql.NullString
	deletedAt sql.NullString
}

func (ts timestamps) parse() (time.Time, *time.Time, *time.Time, error) {
	created, err := parseTime(ts.createdAt)
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	updated, err := parseTimePtr(ts.updatedAt)
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	deleted, err := parseTimePtr(ts.deletedAt)
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	return created, updated, deleted, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// checkAffected maps an UPDATE that touched nothing to notFound.
func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
