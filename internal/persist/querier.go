package persist

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Rows is the minimal row iterator both engines can satisfy.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}

// Tx is a minimal write transaction.
type Tx interface {
	Exec(ctx context.Context, query string, args ...any) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Querier is the two-operation query surface the store depends on. SQL text
// is written with `?` placeholders; each engine rebinds as needed.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) error
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Begin(ctx context.Context) (Tx, error)
	Rebind(query string) string
	Close()
}

// ── Postgres (pgx) ────────────────────────────────────────────────

type pgQuerier struct {
	pool *pgxpool.Pool
}

// NewPgQuerier adapts a pgx pool to the store's query surface.
func NewPgQuerier(pool *pgxpool.Pool) Querier {
	return &pgQuerier{pool: pool}
}

func (q *pgQuerier) Exec(ctx context.Context, query string, args ...any) error {
	_, err := q.pool.Exec(ctx, q.Rebind(query), args...)
	return err
}

func (q *pgQuerier) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := q.pool.Query(ctx, q.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return pgRows{rows: rows}, nil
}

func (q *pgQuerier) Begin(ctx context.Context) (Tx, error) {
	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx, rebind: q.Rebind}, nil
}

// Rebind converts `?` placeholders to `$1..$n`.
func (q *pgQuerier) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (q *pgQuerier) Close() { q.pool.Close() }

type pgRows struct {
	rows pgx.Rows
}

func (r pgRows) Next() bool             { return r.rows.Next() }
func (r pgRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r pgRows) Close()                 { r.rows.Close() }
func (r pgRows) Err() error             { return r.rows.Err() }

type pgTx struct {
	tx     pgx.Tx
	rebind func(string) string
}

func (t *pgTx) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.Exec(ctx, t.rebind(query), args...)
	return err
}

func (t *pgTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// ── MySQL (database/sql) ──────────────────────────────────────────

type sqlQuerier struct {
	db *sql.DB
}

// NewSQLQuerier adapts a database/sql handle (MySQL driver) to the store.
func NewSQLQuerier(db *sql.DB) Querier {
	return &sqlQuerier{db: db}
}

func (q *sqlQuerier) Exec(ctx context.Context, query string, args ...any) error {
	_, err := q.db.ExecContext(ctx, query, args...)
	return err
}

func (q *sqlQuerier) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{rows: rows}, nil
}

func (q *sqlQuerier) Begin(ctx context.Context) (Tx, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

// Rebind is the identity for MySQL; queries already use `?`.
func (q *sqlQuerier) Rebind(query string) string { return query }

func (q *sqlQuerier) Close() { _ = q.db.Close() }

type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool             { return r.rows.Next() }
func (r *sqlRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *sqlRows) Close()                 { _ = r.rows.Close() }
func (r *sqlRows) Err() error             { return r.rows.Err() }

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

func (t *sqlTx) Commit(ctx context.Context) error   { return t.tx.Commit() }
func (t *sqlTx) Rollback(ctx context.Context) error { return t.tx.Rollback() }
