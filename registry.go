package fabrica

import (
	"path"
	"reflect"
	"sync"
)

// Registry is a lookup of blueprints by qualified name
// ("<namespace>.<FactoryName>"). It is an explicit, injectable object with
// a controlled lifecycle: populate it fully at start-up (eagerly via
// Register, or with a discovery pass via Add), then share it read-only
// through the Env. Qualified names are unique; a collision is a
// configuration error surfaced at registration time.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Blueprint
	order   []string // registration order, for LookupByRecordType
}

// NewRegistry returns an empty blueprint registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Blueprint)}
}

// Register adds a blueprint under the given qualified name. It returns a
// DuplicateError if the name is already taken.
func (r *Registry) Register(name string, bp Blueprint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return NewDuplicateError(name)
	}
	r.entries[name] = bp
	r.order = append(r.order, name)
	return nil
}

// Add registers blueprints under their derived qualified names. It is the
// discovery-pass counterpart of Register: record-type modules expose their
// blueprints and a single Add call at start-up registers them all.
func (r *Registry) Add(bps ...Blueprint) error {
	for _, bp := range bps {
		if err := r.Register(QualifiedName(bp), bp); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the blueprint registered under the qualified name.
func (r *Registry) Lookup(name string) (Blueprint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bp, ok := r.entries[name]
	if !ok {
		return nil, NewNotRegisteredError(name)
	}
	return bp, nil
}

// LookupByRecordType returns the first registered blueprint whose resolved
// record type matches rt. "First" means registration order, making this a
// best-effort convenience rather than a uniqueness-guaranteed mapping;
// when several blueprints target the same record type, register the
// preferred one first.
func (r *Registry) LookupByRecordType(types TypeRegistry, rt RecordType) (Blueprint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		bp := r.entries[name]
		brt, err := bp.Record().resolve(types)
		if err != nil {
			continue
		}
		if brt.Name() == rt.Name() {
			return bp, nil
		}
	}
	return nil, NewNoFactoryError(rt.Name())
}

// Names returns the registered qualified names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// QualifiedName derives the registration name of a blueprint. A blueprint
// implementing Namer names itself; otherwise the name is
// "<package>.<TypeName>" of the blueprint's Go type, mirroring how
// record-type modules are laid out.
func QualifiedName(bp Blueprint) string {
	if n, ok := bp.(Namer); ok {
		return n.FactoryName()
	}
	t := reflect.TypeOf(bp)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return path.Base(t.PkgPath()) + "." + t.Name()
}
