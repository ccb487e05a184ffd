// Package schema provides a reference implementation of the fabrica
// type-registry collaborator: record types declared by name with their
// relationship metadata, and map-backed records bound to a persistence
// Store.
//
// Declaring types:
//
//	reg := schema.NewRegistry(store)
//	reg.Define("posts.Post",
//	    schema.HasMany("comments", "post", "posts.Comment"),
//	)
//	reg.Define("posts.Comment")
package schema

import (
	"context"
	"fmt"

	"github.com/syssam/fabrica"
)

// Store is the persistence backend records built by this package save to.
type Store interface {
	// Insert persists a new record and returns its assigned identity.
	Insert(ctx context.Context, typeName string, fields fabrica.Fields) (fabrica.Value, error)

	// Get returns the stored field values of a record.
	Get(ctx context.Context, typeName string, id fabrica.Value) (fabrica.Fields, error)
}

// Notifier receives lifecycle notifications for records built by this
// package. The signal package's Hub implements it.
type Notifier interface {
	Notify(e fabrica.Event, rt fabrica.RecordType, rec fabrica.Record)
}

// relation is the stored metadata of one named relationship.
type relation struct {
	reverseField string
	relatedName  string
}

// Type is one declared record type. It implements fabrica.RecordType.
type Type struct {
	name     string
	registry *Registry
	rels     map[string]relation
}

// Name returns the qualified type name.
func (t *Type) Name() string { return t.name }

// New constructs a new, unsaved record with the given field values,
// firing the pre-init and post-init events.
func (t *Type) New(fields fabrica.Fields) fabrica.Record {
	t.registry.notify(fabrica.EventPreInit, t, nil)
	rec := &Record{typ: t, fields: fields.Clone()}
	t.registry.notify(fabrica.EventPostInit, t, rec)
	return rec
}

// TypeOption configures a type declaration.
type TypeOption func(*Type)

// HasMany declares a to-many relationship: the named collection of related
// records, each carrying reverseField pointing back at this type.
func HasMany(name, reverseField, relatedType string) TypeOption {
	return func(t *Type) {
		t.rels[name] = relation{reverseField: reverseField, relatedName: relatedType}
	}
}

// HasOne declares a to-one relationship. Metadata-wise it is identical to
// HasMany; the distinction is carried by how fixtures use it.
func HasOne(name, reverseField, relatedType string) TypeOption {
	return HasMany(name, reverseField, relatedType)
}

// Registry holds declared record types. It implements fabrica.TypeRegistry.
type Registry struct {
	store    Store
	notifier Notifier
	types    map[string]*Type
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithNotifier attaches a lifecycle notifier; records fire init and save
// events through it.
func WithNotifier(n Notifier) RegistryOption {
	return func(r *Registry) { r.notifier = n }
}

// NewRegistry returns a registry whose records persist to store.
func NewRegistry(store Store, opts ...RegistryOption) *Registry {
	r := &Registry{store: store, types: make(map[string]*Type)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Define declares a record type under the given qualified name.
// Redefining a name replaces the previous declaration.
func (r *Registry) Define(name string, opts ...TypeOption) *Type {
	t := &Type{name: name, registry: r, rels: make(map[string]relation)}
	for _, opt := range opts {
		opt(t)
	}
	r.types[name] = t
	return t
}

// RecordType resolves a qualified type name.
func (r *Registry) RecordType(name string) (fabrica.RecordType, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("schema: record type %q not defined", name)
	}
	return t, nil
}

// Relationship resolves relationship metadata declared on rt.
func (r *Registry) Relationship(rt fabrica.RecordType, name string) (fabrica.Relationship, error) {
	t, ok := rt.(*Type)
	if !ok {
		return fabrica.Relationship{}, fmt.Errorf("schema: record type %s was not declared by this registry", rt.Name())
	}
	rel, ok := t.rels[name]
	if !ok {
		return fabrica.Relationship{}, fmt.Errorf("schema: %s has no relationship %q", t.name, name)
	}
	related, err := r.RecordType(rel.relatedName)
	if err != nil {
		return fabrica.Relationship{}, err
	}
	return fabrica.Relationship{ReverseField: rel.reverseField, Related: related}, nil
}

func (r *Registry) notify(e fabrica.Event, rt fabrica.RecordType, rec fabrica.Record) {
	if r.notifier != nil {
		r.notifier.Notify(e, rt, rec)
	}
}

// Record is a map-backed record instance. It implements fabrica.Record.
type Record struct {
	typ    *Type
	id     fabrica.Value
	fields fabrica.Fields
}

// Type returns the record type.
func (r *Record) Type() fabrica.RecordType { return r.typ }

// ID returns the assigned primary key, or nil before the first Save.
func (r *Record) ID() fabrica.Value { return r.id }

// Get returns the named field value.
func (r *Record) Get(name string) (fabrica.Value, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Fields returns a copy of the field values.
func (r *Record) Fields() fabrica.Fields { return r.fields.Clone() }

// Save persists the record through the registry's store, firing the
// pre-save and post-save events around the insert.
func (r *Record) Save(ctx context.Context) error {
	reg := r.typ.registry
	reg.notify(fabrica.EventPreSave, r.typ, r)
	id, err := reg.store.Insert(ctx, r.typ.name, r.fields)
	if err != nil {
		return err
	}
	r.id = id
	reg.notify(fabrica.EventPostSave, r.typ, r)
	return nil
}

// Refresh reloads the field values from the store.
func (r *Record) Refresh(ctx context.Context) error {
	if r.id == nil {
		return fmt.Errorf("schema: cannot refresh unsaved %s record", r.typ.name)
	}
	fields, err := r.typ.registry.store.Get(ctx, r.typ.name, r.id)
	if err != nil {
		return err
	}
	r.fields = fields
	return nil
}
