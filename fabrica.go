// Package fabrica is a test-fixture generation engine. Given a declarative
// blueprint describing one record type, it synthesizes realistic instances
// (and graphs of related instances) on demand for use in automated tests.
//
// A blueprint is a small user-defined struct that embeds Recipe and
// overrides Record and Definition:
//
//	type PostFactory struct {
//	    fabrica.Recipe
//	}
//
//	func (PostFactory) Record() fabrica.RecordRef {
//	    return fabrica.RefNamed("posts.Post")
//	}
//
//	func (PostFactory) Definition(fake *gofakeit.Faker) (fabrica.Fields, error) {
//	    return fabrica.Fields{
//	        "title":   fake.Sentence(6),
//	        "content": fake.Paragraph(1, 3, 12, " "),
//	    }, nil
//	}
//
// Factories are built against an Env carrying the external collaborators
// (record-type registry, lifecycle signals, blueprint registry):
//
//	f, err := fabrica.New(env, PostFactory{})
//	post, err := f.Create(ctx, fabrica.Fields{"title": "Hello"})
//
// Persistence, record construction and lifecycle notifications are
// delegated to the collaborator interfaces below; the schema, signal and
// store subpackages provide reference implementations.
package fabrica

import (
	"context"

	"github.com/brianvoe/gofakeit/v6"
)

// Value is any field value carried by a record.
type Value = any

// Fields is a field-name to value mapping, as produced by a blueprint
// definition and consumed by record construction.
type Fields map[string]Value

// Clone returns a shallow copy of the mapping. A nil receiver yields an
// empty, non-nil mapping so callers can safely add keys.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Event is a record lifecycle notification kind.
type Event int

// The four lifecycle events consumed by quiet creation.
const (
	EventPreInit Event = iota
	EventPostInit
	EventPreSave
	EventPostSave
)

// Events lists all lifecycle events in firing order.
var Events = [...]Event{EventPreInit, EventPostInit, EventPreSave, EventPostSave}

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventPreInit:
		return "pre_init"
	case EventPostInit:
		return "post_init"
	case EventPreSave:
		return "pre_save"
	case EventPostSave:
		return "post_save"
	default:
		return "unknown"
	}
}

// RecordType is a handle to one record type known to the host application.
type RecordType interface {
	// Name returns the qualified type name (e.g. "posts.Post").
	Name() string

	// New constructs a new, unsaved instance populated with the given
	// field values.
	New(fields Fields) Record
}

// Record is the persistence-side view of a single instance.
type Record interface {
	// Type returns the record type this instance belongs to.
	Type() RecordType

	// ID returns the primary key, or nil if the record was never saved.
	ID() Value

	// Get returns the named field value.
	Get(name string) (Value, bool)

	// Fields returns a copy of all field values.
	Fields() Fields

	// Save persists the record and assigns its identity.
	Save(ctx context.Context) error

	// Refresh reloads the record's fields from the backend.
	Refresh(ctx context.Context) error
}

// Relationship describes a single named relationship on a record type:
// the reverse field to set on the related record, and the related type.
type Relationship struct {
	ReverseField string
	Related      RecordType
}

// TypeRegistry resolves record types and relationship metadata. It is
// implemented by the host application (see the schema package for a
// reference implementation).
type TypeRegistry interface {
	// RecordType resolves a qualified type name to its handle.
	RecordType(name string) (RecordType, error)

	// Relationship resolves a relationship name declared on the given
	// record type. It returns an error if the name does not denote a
	// relationship.
	Relationship(rt RecordType, name string) (Relationship, error)
}

// Signals suspends and resumes lifecycle notifications for a record type.
// It is consumed only by quiet creation.
type Signals interface {
	// HasListeners reports whether any listener is connected for the
	// event on the given record type.
	HasListeners(e Event, rt RecordType) bool

	// Disconnect detaches all listeners for the event on the given
	// record type, keeping them aside for a later Connect.
	Disconnect(e Event, rt RecordType)

	// Connect re-attaches the listeners detached by Disconnect.
	Connect(e Event, rt RecordType)
}

// Env carries the external collaborators a factory operates against.
// It is constructed once at start-up and passed by reference; registries
// are explicit values rather than package-level singletons so tests can
// run against isolated environments.
type Env struct {
	// Types resolves record types and relationship metadata.
	Types TypeRegistry

	// Signals suspends lifecycle notifications for quiet creation.
	// May be nil, in which case CreateQuietly degrades to Create.
	Signals Signals

	// Registry holds the registered blueprints.
	Registry *Registry

	// Seed configures the per-factory fake-data generator. Zero means
	// a random seed.
	Seed int64
}

// RecordRef names the record type a blueprint produces. It is either
// direct (a RecordType handle) or deferred (a qualified name resolved once
// at factory construction against the type registry).
type RecordRef struct {
	rt   RecordType
	name string
}

// RefTo returns a direct record reference.
func RefTo(rt RecordType) RecordRef { return RecordRef{rt: rt} }

// RefNamed returns a deferred record reference resolved lazily by name.
func RefNamed(name string) RecordRef { return RecordRef{name: name} }

// IsZero reports whether the reference names no record type.
func (r RecordRef) IsZero() bool { return r.rt == nil && r.name == "" }

func (r RecordRef) resolve(types TypeRegistry) (RecordType, error) {
	switch {
	case r.rt != nil:
		return r.rt, nil
	case r.name == "":
		return nil, ErrNoRecordType
	case types == nil:
		return nil, ErrNoTypeRegistry
	default:
		return types.RecordType(r.name)
	}
}

// Ref is an indirect reference to a registered blueprint by qualified
// name. Using a distinct string type keeps plain string literals in
// definitions from being mistaken for blueprint references.
type Ref string

// Use returns a blueprint reference for use as a definition value:
//
//	fabrica.Fields{"post": fabrica.Use("posts.PostFactory")}
func Use(qualifiedName string) Ref { return Ref(qualifiedName) }

// Blueprint is the user-written recipe for one record type. Implementations
// embed Recipe and override the methods they need.
type Blueprint interface {
	// Record names the record type this blueprint produces.
	Record() RecordRef

	// Definition returns the base field mapping, before override
	// resolution. The base implementation returns ErrNotImplemented.
	Definition(fake *gofakeit.Faker) (Fields, error)
}

// CreateOverrider is an optional Blueprint capability replacing the default
// construct-save-refresh create path. The callable receives the resolved
// field mapping directly and its return value is used as the created
// instance; no implicit refresh is performed.
type CreateOverrider interface {
	CreateOverride(ctx context.Context, fields Fields) (Record, error)
}

// FakerConfigurator is an optional Blueprint capability customizing the
// per-factory fake-data generator.
type FakerConfigurator interface {
	ConfigureFaker(seed int64) *gofakeit.Faker
}

// Namer is an optional Blueprint capability overriding the derived
// qualified name used for registration.
type Namer interface {
	FactoryName() string
}

// Recipe is the default Blueprint implementation. It should be embedded
// in all blueprint definitions.
type Recipe struct{}

// Record returns the zero reference; blueprints must override it.
func (Recipe) Record() RecordRef { return RecordRef{} }

// Definition returns ErrNotImplemented; blueprints must override it.
func (Recipe) Definition(*gofakeit.Faker) (Fields, error) {
	return nil, ErrNotImplemented
}
