package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the on-disk timestamp format for every collection.
const TimeLayout = "2006-01-02 15:04:05"

// Record is one flat row of a collection, keyed by column name.
type Record map[string]string

type KeyKind int

const (
	// IntKeys assigns ids as one greater than the current maximum.
	IntKeys KeyKind = iota
	// UUIDKeys assigns a fresh random UUID per record.
	UUIDKeys
)

// Schema describes a named collection. Columns[0] must be "id".
type Schema struct {
	Name          string
	Columns       []string
	Keys          KeyKind
	CreatedColumn string
	UpdatedColumn string
}

// RecordStore is durable CRUD over named, schema-defined flat collections.
// Reads degrade to empty/absent on failure; writes always report failure.
type RecordStore interface {
	Init(ctx context.Context, schema Schema) error
	ListAll(ctx context.Context, collection string) []Record
	Get(ctx context.Context, collection, id string) (Record, bool)
	Upsert(ctx context.Context, collection string, fields Record, id string) (string, error)
	Replace(ctx context.Context, collection, id string, fields Record) (bool, error)
	Delete(ctx context.Context, collection, id string) (bool, error)
	Close() error
}

var ErrUnknownCollection = errors.New("collection not initialized")

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func (s Schema) validate() error {
	if !identPattern.MatchString(s.Name) {
		return fmt.Errorf("invalid collection name %q", s.Name)
	}
	if len(s.Columns) == 0 || s.Columns[0] != "id" {
		return fmt.Errorf("collection %s: first column must be id", s.Name)
	}
	seen := make(map[string]bool, len(s.Columns))
	for _, col := range s.Columns {
		if !identPattern.MatchString(col) {
			return fmt.Errorf("collection %s: invalid column name %q", s.Name, col)
		}
		if seen[col] {
			return fmt.Errorf("collection %s: duplicate column %q", s.Name, col)
		}
		seen[col] = true
	}
	for _, col := range []string{s.CreatedColumn, s.UpdatedColumn} {
		if col != "" && !seen[col] {
			return fmt.Errorf("collection %s: timestamp column %q not in columns", s.Name, col)
		}
	}
	return nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// buildRecord produces the full row to persist. existing is nil for inserts.
func buildRecord(schema Schema, fields Record, id string, existing Record, ts string) Record {
	rec := make(Record, len(schema.Columns))
	for _, col := range schema.Columns {
		rec[col] = fields[col]
	}
	rec["id"] = id
	if schema.CreatedColumn != "" {
		if existing != nil {
			rec[schema.CreatedColumn] = existing[schema.CreatedColumn]
		} else {
			rec[schema.CreatedColumn] = ts
		}
	}
	if schema.UpdatedColumn != "" {
		rec[schema.UpdatedColumn] = ts
	}
	return rec
}

func nextID(schema Schema, ids []string) string {
	if schema.Keys == UUIDKeys {
		return uuid.NewString()
	}
	var max int64
	for _, id := range ids {
		n, err := strconv.ParseInt(id, 10, 64)
		if err == nil && n > max {
			max = n
		}
	}
	return strconv.FormatInt(max+1, 10)
}

func recordIDs(recs []Record) []string {
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec["id"]
	}
	return ids
}

type schemaSet struct {
	mu sync.RWMutex
	m  map[string]Schema
}

func (s *schemaSet) put(schema Schema) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[string]Schema)
	}
	s.m[schema.Name] = schema
}

func (s *schemaSet) get(name string) (Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schema, ok := s.m[name]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return schema, nil
}

// Option configures a store.
type Option func(*storeOptions)

type storeOptions struct {
	now    func() time.Time
	locker Locker
}

func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) { o.now = now }
}

// WithLocker replaces the default in-process collection lock.
func WithLocker(l Locker) Option {
	return func(o *storeOptions) { o.locker = l }
}

func applyOptions(opts []Option) storeOptions {
	o := storeOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.locker == nil {
		o.locker = NewKeyedMutex()
	}
	return o
}
