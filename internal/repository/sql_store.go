package repository

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// sqlTx is the slice of a transaction the store needs, implemented for
// database/sql (SQLite) and pgx (Postgres).
type sqlTx interface {
	QueryRow(ctx context.Context, query string, args ...any) rowScanner
	QueryStrings(ctx context.Context, query string, args ...any) ([]string, error)
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type sqlBackend interface {
	QueryRecords(ctx context.Context, query string, width int, args ...any) ([][]string, error)
	QueryStrings(ctx context.Context, query string, args ...any) ([]string, error)
	Exec(ctx context.Context, query string, args ...any) error
	Begin(ctx context.Context) (sqlTx, error)
	Close() error
}

type dialect struct {
	placeholder func(n int) string
	// orderBy yields insertion order.
	orderBy string
	// extraColumns are prepended to CREATE TABLE and hidden from records.
	extraColumns string
	columnsQuery string
	// lockStatement, when set, takes a transaction-scoped lock keyed by collection name.
	lockStatement string
	isNoRows      func(error) bool
}

// SQLStore maps each collection onto a table of TEXT columns.
type SQLStore struct {
	backend sqlBackend
	dialect dialect
	schemas schemaSet
	locker  Locker
	now     func() time.Time
}

func newSQLStore(backend sqlBackend, d dialect, opts []Option) *SQLStore {
	o := applyOptions(opts)
	return &SQLStore{backend: backend, dialect: d, locker: o.locker, now: o.now}
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}

func columnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

func (s *SQLStore) Close() error { return s.backend.Close() }

func (s *SQLStore) Init(ctx context.Context, schema Schema) error {
	if err := schema.validate(); err != nil {
		return err
	}

	defs := make([]string, 0, len(schema.Columns)+1)
	if s.dialect.extraColumns != "" {
		defs = append(defs, s.dialect.extraColumns)
	}
	defs = append(defs, `"id" TEXT PRIMARY KEY`)
	for _, col := range schema.Columns[1:] {
		defs = append(defs, fmt.Sprintf(`%s TEXT NOT NULL DEFAULT ''`, quoteIdent(col)))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(schema.Name), strings.Join(defs, ", "))
	if err := s.backend.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create collection %s: %w", schema.Name, err)
	}

	existing, err := s.backend.QueryStrings(ctx, s.dialect.columnsQuery, schema.Name)
	if err != nil {
		return fmt.Errorf("inspect collection %s: %w", schema.Name, err)
	}
	if !sameColumns(existing, schema.Columns) {
		return fmt.Errorf("collection %s: existing columns %v do not match %v", schema.Name, existing, schema.Columns)
	}

	s.schemas.put(schema)
	return nil
}

func (s *SQLStore) ListAll(ctx context.Context, collection string) []Record {
	schema, err := s.schemas.get(collection)
	if err != nil {
		log.Printf("WARNING: list %s: %v", collection, err)
		return []Record{}
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		columnList(schema.Columns), quoteIdent(schema.Name), s.dialect.orderBy)
	rows, err := s.backend.QueryRecords(ctx, query, len(schema.Columns))
	if err != nil {
		log.Printf("WARNING: list %s degraded to empty: %v", collection, err)
		return []Record{}
	}
	return toRecords(schema, rows)
}

func (s *SQLStore) Get(ctx context.Context, collection, id string) (Record, bool) {
	schema, err := s.schemas.get(collection)
	if err != nil {
		return nil, false
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = %s",
		columnList(schema.Columns), quoteIdent(schema.Name), s.dialect.placeholder(1))
	rows, err := s.backend.QueryRecords(ctx, query, len(schema.Columns), id)
	if err != nil {
		log.Printf("WARNING: get %s/%s degraded to absent: %v", collection, id, err)
		return nil, false
	}
	recs := toRecords(schema, rows)
	if len(recs) == 0 {
		return nil, false
	}
	return recs[0], true
}

func toRecords(schema Schema, rows [][]string) []Record {
	recs := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(schema.Columns))
		for i, col := range schema.Columns {
			rec[col] = row[i]
		}
		recs = append(recs, rec)
	}
	return recs
}

func (s *SQLStore) Upsert(ctx context.Context, collection string, fields Record, id string) (string, error) {
	var effective string
	err := s.inTx(ctx, collection, func(tx sqlTx, schema Schema, ts string) error {
		if id != "" {
			ok, err := s.update(ctx, tx, schema, id, fields, ts)
			if err != nil {
				return err
			}
			if ok {
				effective = id
				return nil
			}
		}
		ids, err := tx.QueryStrings(ctx, fmt.Sprintf("SELECT id FROM %s", quoteIdent(schema.Name)))
		if err != nil {
			return fmt.Errorf("read ids: %w", err)
		}
		effective = nextID(schema, ids)
		rec := buildRecord(schema, fields, effective, nil, ts)

		args := make([]any, len(schema.Columns))
		marks := make([]string, len(schema.Columns))
		for i, col := range schema.Columns {
			args[i] = rec[col]
			marks[i] = s.dialect.placeholder(i + 1)
		}
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(schema.Name), columnList(schema.Columns), strings.Join(marks, ", "))
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return effective, nil
}

func (s *SQLStore) Replace(ctx context.Context, collection, id string, fields Record) (bool, error) {
	var found bool
	err := s.inTx(ctx, collection, func(tx sqlTx, schema Schema, ts string) error {
		var err error
		found, err = s.update(ctx, tx, schema, id, fields, ts)
		return err
	})
	return found, err
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	var found bool
	err := s.inTx(ctx, collection, func(tx sqlTx, schema Schema, ts string) error {
		n, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = %s",
			quoteIdent(schema.Name), s.dialect.placeholder(1)), id)
		if err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		found = n > 0
		return nil
	})
	return found, err
}

// update rewrites every column of an existing row except id and the
// creation timestamp. It reports false when the row does not exist.
func (s *SQLStore) update(ctx context.Context, tx sqlTx, schema Schema, id string, fields Record, ts string) (bool, error) {
	existing := Record{}
	if schema.CreatedColumn != "" {
		var created string
		err := tx.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM %s WHERE id = %s",
			quoteIdent(schema.CreatedColumn), quoteIdent(schema.Name), s.dialect.placeholder(1)), id).Scan(&created)
		if s.dialect.isNoRows(err) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("read existing: %w", err)
		}
		existing[schema.CreatedColumn] = created
	}
	rec := buildRecord(schema, fields, id, existing, ts)

	sets := make([]string, 0, len(schema.Columns))
	args := make([]any, 0, len(schema.Columns))
	for _, col := range schema.Columns[1:] {
		if col == schema.CreatedColumn {
			continue
		}
		args = append(args, rec[col])
		sets = append(sets, fmt.Sprintf("%s = %s", quoteIdent(col), s.dialect.placeholder(len(args))))
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s",
		quoteIdent(schema.Name), strings.Join(sets, ", "), s.dialect.placeholder(len(args)))
	n, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update: %w", err)
	}
	return n > 0, nil
}

func (s *SQLStore) inTx(ctx context.Context, collection string, fn func(sqlTx, Schema, string) error) error {
	schema, err := s.schemas.get(collection)
	if err != nil {
		return err
	}
	unlock, err := s.locker.Lock(ctx, collection)
	if err != nil {
		return fmt.Errorf("lock %s: %w", collection, err)
	}
	defer unlock()

	tx, err := s.backend.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s: %w", collection, err)
	}
	if s.dialect.lockStatement != "" {
		if _, err := tx.Exec(ctx, s.dialect.lockStatement, collection); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("lock %s: %w", collection, err)
		}
	}
	if err := fn(tx, schema, s.now().Format(TimeLayout)); err != nil {
		tx.Rollback(ctx)
		return fmt.Errorf("%s: %w", collection, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", collection, err)
	}
	return nil
}
