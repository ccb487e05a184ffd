// Package memstore provides an in-memory schema.Store, the persistence
// backend of choice for tests: no setup, uuid primary keys, and stored
// field values returned as-is (related records stay record references).
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/syssam/fabrica"
)

// Store is a mutex-guarded in-memory record store.
type Store struct {
	mu      sync.RWMutex
	records map[string]map[string]fabrica.Fields // type name -> id -> fields
}

// New returns an empty store.
func New() *Store {
	return &Store{records: make(map[string]map[string]fabrica.Fields)}
}

// Insert stores a copy of the fields under a fresh uuid identity.
func (s *Store) Insert(_ context.Context, typeName string, fields fabrica.Fields) (fabrica.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tbl, ok := s.records[typeName]
	if !ok {
		tbl = make(map[string]fabrica.Fields)
		s.records[typeName] = tbl
	}
	id := uuid.NewString()
	tbl[id] = fields.Clone()
	return id, nil
}

// Get returns a copy of the stored fields.
func (s *Store) Get(_ context.Context, typeName string, id fabrica.Value) (fabrica.Fields, error) {
	key, ok := id.(string)
	if !ok {
		return nil, fmt.Errorf("memstore: %s identity must be a string, got %T", typeName, id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.records[typeName][key]
	if !ok {
		return nil, fmt.Errorf("memstore: %s %q not found", typeName, key)
	}
	return fields.Clone(), nil
}

// Count returns how many records of the type are stored.
func (s *Store) Count(typeName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[typeName])
}

// All returns copies of all stored records of the type, keyed by identity.
func (s *Store) All(typeName string) map[string]fabrica.Fields {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]fabrica.Fields, len(s.records[typeName]))
	for id, fields := range s.records[typeName] {
		out[id] = fields.Clone()
	}
	return out
}
