package fabrica

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotImplemented is returned by the base Recipe when a blueprint
	// does not override Definition.
	ErrNotImplemented = errors.New("fabrica: definition not implemented")

	// ErrNotRegistered is returned when a qualified name does not match
	// any registered blueprint.
	ErrNotRegistered = errors.New("fabrica: blueprint not registered")

	// ErrNoRecordType is returned when a blueprint's Record reference
	// names no record type.
	ErrNoRecordType = errors.New("fabrica: blueprint does not name a record type")

	// ErrNoTypeRegistry is returned when a deferred record reference
	// must be resolved but the Env carries no type registry.
	ErrNoTypeRegistry = errors.New("fabrica: no type registry configured")

	// ErrDepthExceeded is returned when resolving a definition graph
	// exceeds the recursion limit. Cyclic blueprint graphs are a caller
	// error; this bound keeps them from hanging.
	ErrDepthExceeded = errors.New("fabrica: definition graph exceeds recursion limit")
)

// NotImplementedError reports a blueprint that did not override Definition.
type NotImplementedError struct {
	Factory string // Qualified blueprint name
}

// Error returns the error string.
func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("fabrica: %s does not implement Definition", e.Factory)
}

// Is reports whether the target error matches NotImplementedError.
// This allows errors.Is(err, ErrNotImplemented) to return true.
func (e *NotImplementedError) Is(err error) bool {
	return err == ErrNotImplemented
}

// NewNotImplementedError returns a new NotImplementedError for the given
// blueprint name.
func NewNotImplementedError(factory string) *NotImplementedError {
	return &NotImplementedError{Factory: factory}
}

// IsNotImplemented returns true if the error reports a missing Definition.
func IsNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var e *NotImplementedError
	return errors.As(err, &e) || errors.Is(err, ErrNotImplemented)
}

// NotRegisteredError reports a registry lookup for an unknown qualified name.
type NotRegisteredError struct {
	Name string // Qualified blueprint name that was looked up
}

// Error returns the error string.
func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("fabrica: blueprint %q not registered", e.Name)
}

// Is reports whether the target error matches NotRegisteredError.
func (e *NotRegisteredError) Is(err error) bool {
	return err == ErrNotRegistered
}

// NewNotRegisteredError returns a new NotRegisteredError for the given name.
func NewNotRegisteredError(name string) *NotRegisteredError {
	return &NotRegisteredError{Name: name}
}

// IsNotRegistered returns true if the error is a NotRegisteredError.
func IsNotRegistered(err error) bool {
	if err == nil {
		return false
	}
	var e *NotRegisteredError
	return errors.As(err, &e) || errors.Is(err, ErrNotRegistered)
}

// DuplicateError reports a qualified-name collision during registration.
// Re-registration is a configuration error surfaced at discovery time,
// never masked by silent overwrite.
type DuplicateError struct {
	Name string // Qualified blueprint name registered twice
}

// Error returns the error string.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("fabrica: blueprint %q already registered", e.Name)
}

// NewDuplicateError returns a new DuplicateError for the given name.
func NewDuplicateError(name string) *DuplicateError {
	return &DuplicateError{Name: name}
}

// IsDuplicate returns true if the error is a DuplicateError.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var e *DuplicateError
	return errors.As(err, &e)
}

// NoFactoryError reports that no registered blueprint targets a record type.
type NoFactoryError struct {
	RecordType string // Qualified record type name
}

// Error returns the error string.
func (e *NoFactoryError) Error() string {
	return fmt.Sprintf("fabrica: no blueprint registered for record type %q", e.RecordType)
}

// NewNoFactoryError returns a new NoFactoryError for the given record type.
func NewNoFactoryError(recordType string) *NoFactoryError {
	return &NoFactoryError{RecordType: recordType}
}

// IsNoFactory returns true if the error is a NoFactoryError.
func IsNoFactory(err error) bool {
	if err == nil {
		return false
	}
	var e *NoFactoryError
	return errors.As(err, &e)
}

// UnresolvedRefError reports a definition value referencing a blueprint
// by qualified name that matches no registered blueprint.
type UnresolvedRefError struct {
	Field string // Field whose definition value is the reference
	Ref   string // Qualified name that failed to resolve
}

// Error returns the error string.
func (e *UnresolvedRefError) Error() string {
	return fmt.Sprintf("fabrica: field %q references unknown blueprint %q", e.Field, e.Ref)
}

// NewUnresolvedRefError returns a new UnresolvedRefError.
func NewUnresolvedRefError(field, ref string) *UnresolvedRefError {
	return &UnresolvedRefError{Field: field, Ref: ref}
}

// IsUnresolvedRef returns true if the error is an UnresolvedRefError.
func IsUnresolvedRef(err error) bool {
	if err == nil {
		return false
	}
	var e *UnresolvedRefError
	return errors.As(err, &e)
}

// UnrelatedFieldError reports a Has call on a name that does not denote a
// relationship on the owning record type.
type UnrelatedFieldError struct {
	RecordType string // Owning record type
	Field      string // Name that was looked up
	Err        error  // Underlying type-registry error
}

// Error returns the error string.
func (e *UnrelatedFieldError) Error() string {
	return fmt.Sprintf("fabrica: %q is not a relationship on %s: %v", e.Field, e.RecordType, e.Err)
}

// Unwrap returns the underlying error.
func (e *UnrelatedFieldError) Unwrap() error {
	return e.Err
}

// NewUnrelatedFieldError returns a new UnrelatedFieldError.
func NewUnrelatedFieldError(recordType, field string, err error) *UnrelatedFieldError {
	return &UnrelatedFieldError{RecordType: recordType, Field: field, Err: err}
}

// IsUnrelatedField returns true if the error is an UnrelatedFieldError.
func IsUnrelatedField(err error) bool {
	if err == nil {
		return false
	}
	var e *UnrelatedFieldError
	return errors.As(err, &e)
}

// PendingRelationshipError reports a Make call on a factory with queued
// pending generations. A non-persisted instance cannot be a parent.
type PendingRelationshipError struct {
	RecordType string // Record type of the factory
	Pending    int    // Number of queued pending generations
}

// Error returns the error string.
func (e *PendingRelationshipError) Error() string {
	return fmt.Sprintf("fabrica: cannot make %s with %d pending relationship(s); use Create", e.RecordType, e.Pending)
}

// NewPendingRelationshipError returns a new PendingRelationshipError.
func NewPendingRelationshipError(recordType string, pending int) *PendingRelationshipError {
	return &PendingRelationshipError{RecordType: recordType, Pending: pending}
}

// IsPendingRelationship returns true if the error is a PendingRelationshipError.
func IsPendingRelationship(err error) bool {
	if err == nil {
		return false
	}
	var e *PendingRelationshipError
	return errors.As(err, &e)
}

// SequenceTypeError reports a sequence item that is not a field mapping.
type SequenceTypeError struct {
	Index int   // Position of the offending item
	Value Value // The item itself
}

// Error returns the error string.
func (e *SequenceTypeError) Error() string {
	return fmt.Sprintf(
		"fabrica: sequence item %d has type %T; sequence items must be field mappings, e.g. WithSequence(fabrica.Fields{\"x\": 1})",
		e.Index, e.Value,
	)
}

// NewSequenceTypeError returns a new SequenceTypeError.
func NewSequenceTypeError(index int, value Value) *SequenceTypeError {
	return &SequenceTypeError{Index: index, Value: value}
}

// IsSequenceType returns true if the error is a SequenceTypeError.
func IsSequenceType(err error) bool {
	if err == nil {
		return false
	}
	var e *SequenceTypeError
	return errors.As(err, &e)
}

// DepthError reports that resolving a definition graph exceeded the
// recursion limit, usually a self-referential blueprint graph.
type DepthError struct {
	RecordType string // Record type at which the limit was hit
	Depth      int    // The limit
}

// Error returns the error string.
func (e *DepthError) Error() string {
	return fmt.Sprintf("fabrica: resolving %s exceeded recursion limit %d (cyclic blueprint graph?)", e.RecordType, e.Depth)
}

// Is reports whether the target error matches DepthError.
func (e *DepthError) Is(err error) bool {
	return err == ErrDepthExceeded
}

// NewDepthError returns a new DepthError.
func NewDepthError(recordType string, depth int) *DepthError {
	return &DepthError{RecordType: recordType, Depth: depth}
}

// IsDepthExceeded returns true if the error reports the recursion limit.
func IsDepthExceeded(err error) bool {
	if err == nil {
		return false
	}
	var e *DepthError
	return errors.As(err, &e) || errors.Is(err, ErrDepthExceeded)
}
