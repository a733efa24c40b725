package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresStore stores collections as tables in PostgreSQL. A hidden
// seq column records insertion order, and writers hold a transaction-scoped
// advisory lock per collection so several processes can share the database.
func NewPostgresStore(pool *pgxpool.Pool, opts ...Option) *SQLStore {
	return newSQLStore(&pgBackend{pool: pool}, dialect{
		placeholder:  func(n int) string { return fmt.Sprintf("$%d", n) },
		orderBy:      "seq",
		extraColumns: "seq BIGSERIAL",
		columnsQuery: `SELECT column_name::text FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1 AND column_name <> 'seq'
			ORDER BY ordinal_position`,
		lockStatement: "SELECT pg_advisory_xact_lock(hashtext($1::text))",
		isNoRows:      func(err error) bool { return errors.Is(err, pgx.ErrNoRows) },
	}, opts)
}

type pgBackend struct {
	pool *pgxpool.Pool
}

type pgQueryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func pgQueryRecords(ctx context.Context, q pgQueryer, query string, width int, args ...any) ([][]string, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		vals := make([]string, width)
		dest := make([]any, width)
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

func pgQueryStrings(ctx context.Context, q pgQueryer, query string, args ...any) ([]string, error) {
	rows, err := pgQueryRecords(ctx, q, query, 1, args...)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row[0]
	}
	return out, nil
}

func (b *pgBackend) QueryRecords(ctx context.Context, query string, width int, args ...any) ([][]string, error) {
	return pgQueryRecords(ctx, b.pool, query, width, args...)
}

func (b *pgBackend) QueryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	return pgQueryStrings(ctx, b.pool, query, args...)
}

func (b *pgBackend) Exec(ctx context.Context, query string, args ...any) error {
	_, err := b.pool.Exec(ctx, query, args...)
	return err
}

func (b *pgBackend) Begin(ctx context.Context) (sqlTx, error) {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

func (b *pgBackend) Close() error {
	b.pool.Close()
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) QueryRow(ctx context.Context, query string, args ...any) rowScanner {
	return t.tx.QueryRow(ctx, query, args...)
}

func (t *pgTx) QueryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	return pgQueryStrings(ctx, t.tx, query, args...)
}

func (t *pgTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *pgTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }
