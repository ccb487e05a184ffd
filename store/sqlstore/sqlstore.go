// Package sqlstore provides a database/sql-backed schema.Store that
// persists records as msgpack-encoded documents, one table per record
// type. Like database/sql itself, the package imports no drivers; the
// caller opens the *sql.DB with the driver of their choice (the tests use
// modernc.org/sqlite).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-openapi/inflect"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/fabrica"
)

// Store persists records in one (id, data) table per record type.
type Store struct {
	db    *sql.DB
	rules *inflect.Ruleset
}

// New returns a store over the given database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db, rules: inflect.NewDefaultRuleset()}
}

// Table derives the table name for a qualified record type name:
// "posts.OrderItem" becomes "order_items".
func (s *Store) Table(typeName string) string {
	base := typeName
	if i := strings.LastIndex(typeName, "."); i >= 0 {
		base = typeName[i+1:]
	}
	return s.rules.Pluralize(s.rules.Underscore(base))
}

// Migrate creates the backing table for each record type if missing.
func (s *Store) Migrate(ctx context.Context, typeNames ...string) error {
	for _, name := range typeNames {
		stmt := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, data BLOB NOT NULL)",
			s.Table(name),
		)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: migrating %s: %w", name, err)
		}
	}
	return nil
}

// Insert encodes the fields and writes a new row under a fresh uuid
// identity. Record-valued fields are flattened to their identities, the
// usual foreign-key shape.
func (s *Store) Insert(ctx context.Context, typeName string, fields fabrica.Fields) (fabrica.Value, error) {
	data, err := msgpack.Marshal(flatten(fields))
	if err != nil {
		return nil, fmt.Errorf("sqlstore: encoding %s: %w", typeName, err)
	}
	id := uuid.NewString()
	stmt := fmt.Sprintf("INSERT INTO %s (id, data) VALUES (?, ?)", s.Table(typeName))
	if _, err := s.db.ExecContext(ctx, stmt, id, data); err != nil {
		return nil, fmt.Errorf("sqlstore: inserting %s: %w", typeName, err)
	}
	return id, nil
}

// Get decodes the stored document of a record.
func (s *Store) Get(ctx context.Context, typeName string, id fabrica.Value) (fabrica.Fields, error) {
	var data []byte
	stmt := fmt.Sprintf("SELECT data FROM %s WHERE id = ?", s.Table(typeName))
	if err := s.db.QueryRowContext(ctx, stmt, id).Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sqlstore: %s %v not found", typeName, id)
		}
		return nil, fmt.Errorf("sqlstore: loading %s: %w", typeName, err)
	}
	var raw map[string]any
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("sqlstore: decoding %s: %w", typeName, err)
	}
	return fabrica.Fields(raw), nil
}

// Count returns how many records of the type are stored.
func (s *Store) Count(ctx context.Context, typeName string) (int, error) {
	var n int
	stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.Table(typeName))
	if err := s.db.QueryRowContext(ctx, stmt).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlstore: counting %s: %w", typeName, err)
	}
	return n, nil
}

// flatten replaces record-valued fields with their identities so the
// document is msgpack-encodable.
func flatten(fields fabrica.Fields) fabrica.Fields {
	out := fields.Clone()
	for k, v := range out {
		if rec, ok := v.(fabrica.Record); ok {
			out[k] = rec.ID()
		}
	}
	return out
}
