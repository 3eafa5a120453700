// Package sqlstore implements storage.Store over database/sql.
//
// One implementation serves every SQL backend. Queries are written with "?"
// placeholders and rebound for dialects that number their parameters.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmynk/splitledger/internal/storage"
)

// Dialect selects backend-specific SQL.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return "unknown"
	}
}

// Ensure DB implements storage.Store
var _ storage.Store = (*DB)(nil)

// queryer is the subset of *sql.DB and *sql.Tx the store needs.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB implements storage.Store on an open *sql.DB.
type DB struct {
	*ledger
}

// New wraps an open database whose schema is already migrated.
func New(db *sql.DB, dialect Dialect) *DB {
	return &DB{ledger: &ledger{q: db, db: db, dialect: dialect}}
}

// SQL returns the underlying database handle.
func (s *DB) SQL() *sql.DB {
	return s.db
}

// Dialect reports the backend dialect.
func (s *DB) Dialect() Dialect {
	return s.dialect
}

// Close closes the database connection.
func (s *DB) Close() error {
	return s.db.Close()
}

// InTx runs fn inside a database transaction.
func (s *DB) InTx(ctx context.Context, fn func(storage.Ledger) error) error {
	return s.ledger.atomic(ctx, func(l *ledger) error { return fn(l) })
}

// ledger carries the queries. db is nil when q is a transaction.
type ledger struct {
	q       queryer
	db      *sql.DB
	dialect Dialect
}

func (l *ledger) inTx() bool {
	return l.db == nil
}

// atomic runs fn in the current transaction, or in a new one when l is not
// already transactional.
func (l *ledger) atomic(ctx context.Context, fn func(*ledger) error) error {
	if l.inTx() {
		return fn(l)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&ledger{q: tx, dialect: l.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (l *ledger) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return l.q.ExecContext(ctx, l.rebind(query), args...)
}

func (l *ledger) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return l.q.QueryContext(ctx, l.rebind(query), args...)
}

func (l *ledger) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return l.q.QueryRowContext(ctx, l.rebind(query), args...)
}

// rebind rewrites "?" placeholders to "$1", "$2", ... for Postgres.
func (l *ledger) rebind(query string) string {
	if l.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Advisory lock namespaces for the two-key form of pg_advisory_xact_lock.
const (
	lockSpaceGroup  = 1
	lockSpaceLedger = 2
)

// LockLedger takes a shared group lock and an exclusive ledger lock on
// Postgres. SQLite stores run with a single connection, so an open
// transaction already excludes every other writer.
func (l *ledger) LockLedger(ctx context.Context, groupID, currency string) error {
	if !l.inTx() || l.dialect != Postgres {
		return nil
	}
	if _, err := l.exec(ctx, "SELECT pg_advisory_xact_lock_shared(?, hashtext(?))", lockSpaceGroup, groupID); err != nil {
		return fmt.Errorf("failed to lock group: %w", err)
	}
	if _, err := l.exec(ctx, "SELECT pg_advisory_xact_lock(?, hashtext(?))", lockSpaceLedger, groupID+"/"+currency); err != nil {
		return fmt.Errorf("failed to lock ledger: %w", err)
	}
	return nil
}

// LockGroup takes an exclusive group lock on Postgres.
func (l *ledger) LockGroup(ctx context.Context, groupID string) error {
	if !l.inTx() || l.dialect != Postgres {
		return nil
	}
	if _, err := l.exec(ctx, "SELECT pg_advisory_xact_lock(?, hashtext(?))", lockSpaceGroup, groupID); err != nil {
		return fmt.Errorf("failed to lock group: %w", err)
	}
	return nil
}

// requireAffected maps a zero-row update to storage.ErrNotFound.
func requireAffected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
	}
	return nil
}

func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
