package repository

import (
	"context"
	"database/sql"
	"errors"
)

// NewSQLiteStore stores collections as tables of an embedded SQLite database.
// Rows come back in rowid order, which is insertion order.
func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLStore {
	return newSQLStore(&sqliteBackend{db: db}, dialect{
		placeholder:  func(int) string { return "?" },
		orderBy:      "rowid",
		columnsQuery: "SELECT name FROM pragma_table_info(?) ORDER BY cid",
		isNoRows:     func(err error) bool { return errors.Is(err, sql.ErrNoRows) },
	}, opts)
}

type sqliteBackend struct {
	db *sql.DB
}

func (b *sqliteBackend) QueryRecords(ctx context.Context, query string, width int, args ...any) ([][]string, error) {
	return queryRecords(ctx, b.db, query, width, args...)
}

func (b *sqliteBackend) QueryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	return queryStrings(ctx, b.db, query, args...)
}

func (b *sqliteBackend) Exec(ctx context.Context, query string, args ...any) error {
	_, err := b.db.ExecContext(ctx, query, args...)
	return err
}

func (b *sqliteBackend) Begin(ctx context.Context) (sqlTx, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx}, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) QueryRow(ctx context.Context, query string, args ...any) rowScanner {
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t *sqliteTx) QueryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	return queryStrings(ctx, t.tx, query, args...)
}

func (t *sqliteTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *sqliteTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *sqliteTx) Rollback(context.Context) error { return t.tx.Rollback() }

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryRecords(ctx context.Context, q queryer, query string, width int, args ...any) ([][]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
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

func queryStrings(ctx context.Context, q queryer, query string, args ...any) ([]string, error) {
	rows, err := queryRecords(ctx, q, query, 1, args...)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row[0]
	}
	return out, nil
}
