package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// CSVStore keeps each collection in <dir>/<name>.csv with a header row.
// Every mutation rewrites the whole file through a temp file and rename,
// so readers observe either the old or the new file, never a partial one.
type CSVStore struct {
	dir     string
	schemas schemaSet
	locker  Locker
	now     func() time.Time
}

func NewCSVStore(dir string, opts ...Option) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	o := applyOptions(opts)
	return &CSVStore{dir: dir, locker: o.locker, now: o.now}, nil
}

func (s *CSVStore) path(name string) string {
	return filepath.Join(s.dir, name+".csv")
}

func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) Init(ctx context.Context, schema Schema) error {
	if err := schema.validate(); err != nil {
		return err
	}
	unlock, err := s.locker.Lock(ctx, schema.Name)
	if err != nil {
		return err
	}
	defer unlock()

	header, err := readHeader(s.path(schema.Name))
	switch {
	case errors.Is(err, os.ErrNotExist) || errors.Is(err, io.EOF):
		if err := writeCSVAtomic(s.path(schema.Name), schema.Columns, nil); err != nil {
			return fmt.Errorf("create collection %s: %w", schema.Name, err)
		}
	case err != nil:
		return fmt.Errorf("read collection %s: %w", schema.Name, err)
	case !sameColumns(header, schema.Columns):
		return fmt.Errorf("collection %s: existing columns %v do not match %v", schema.Name, header, schema.Columns)
	}

	s.schemas.put(schema)
	return nil
}

func (s *CSVStore) ListAll(ctx context.Context, collection string) []Record {
	schema, err := s.schemas.get(collection)
	if err != nil {
		log.Printf("WARNING: list %s: %v", collection, err)
		return []Record{}
	}
	recs, err := s.read(schema)
	if err != nil {
		log.Printf("WARNING: list %s degraded to empty: %v", collection, err)
		return []Record{}
	}
	return recs
}

func (s *CSVStore) Get(ctx context.Context, collection, id string) (Record, bool) {
	for _, rec := range s.ListAll(ctx, collection) {
		if rec["id"] == id {
			return rec, true
		}
	}
	return nil, false
}

func (s *CSVStore) Upsert(ctx context.Context, collection string, fields Record, id string) (string, error) {
	var effective string
	err := s.mutate(ctx, collection, func(schema Schema, recs []Record) ([]Record, bool) {
		ts := s.now().Format(TimeLayout)
		if id != "" {
			for i, rec := range recs {
				if rec["id"] == id {
					recs[i] = buildRecord(schema, fields, id, rec, ts)
					effective = id
					return recs, true
				}
			}
		}
		effective = nextID(schema, recordIDs(recs))
		return append(recs, buildRecord(schema, fields, effective, nil, ts)), true
	})
	if err != nil {
		return "", err
	}
	return effective, nil
}

func (s *CSVStore) Replace(ctx context.Context, collection, id string, fields Record) (bool, error) {
	var found bool
	err := s.mutate(ctx, collection, func(schema Schema, recs []Record) ([]Record, bool) {
		for i, rec := range recs {
			if rec["id"] == id {
				recs[i] = buildRecord(schema, fields, id, rec, s.now().Format(TimeLayout))
				found = true
				return recs, true
			}
		}
		return recs, false
	})
	return found, err
}

func (s *CSVStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	var found bool
	err := s.mutate(ctx, collection, func(schema Schema, recs []Record) ([]Record, bool) {
		kept := recs[:0]
		for _, rec := range recs {
			if rec["id"] == id {
				found = true
				continue
			}
			kept = append(kept, rec)
		}
		return kept, found
	})
	return found, err
}

// mutate runs one read-modify-write cycle under the collection lock. A read
// failure here is fatal: rewriting from a degraded empty read would lose data.
func (s *CSVStore) mutate(ctx context.Context, collection string, fn func(Schema, []Record) ([]Record, bool)) error {
	schema, err := s.schemas.get(collection)
	if err != nil {
		return err
	}
	unlock, err := s.locker.Lock(ctx, collection)
	if err != nil {
		return fmt.Errorf("lock %s: %w", collection, err)
	}
	defer unlock()

	recs, err := s.read(schema)
	if err != nil {
		return fmt.Errorf("read %s: %w", collection, err)
	}
	recs, changed := fn(schema, recs)
	if !changed {
		return nil
	}
	if err := writeCSVAtomic(s.path(collection), schema.Columns, recs); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	return nil
}

func (s *CSVStore) read(schema Schema) ([]Record, error) {
	f, err := os.Open(s.path(schema.Name))
	if errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}
	if !sameColumns(rows[0], schema.Columns) {
		return nil, fmt.Errorf("unexpected header %v", rows[0])
	}

	recs := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(schema.Columns))
		for i, col := range schema.Columns {
			rec[col] = row[i]
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csv.NewReader(f).Read()
}

func writeCSVAtomic(path string, columns []string, recs []Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		return err
	}
	row := make([]string, len(columns))
	for _, rec := range recs {
		for i, col := range columns {
			row[i] = rec[col]
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	committed = true
	return nil
}
