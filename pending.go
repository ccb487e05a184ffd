package fabrica

import "context"

// pendingGeneration is one queued child-record request awaiting the
// parent's identity: the reverse-relationship field to set on the child,
// the child factory, and the override mapping for that child.
type pendingGeneration struct {
	reverseField string
	child        *Factory
	overrides    Fields
}

// Has queues the creation of related records for the named relationship,
// to happen after the parent is persisted. It resolves the relationship
// against the owning record type's metadata, finds the registered
// blueprint targeting the related type, and appends one pending generation
// per requested item. Has is chainable and may be called multiple times
// before Create, accumulating entries across relationships; the first
// error is deferred and returned by the terminal Create or Make call.
//
//	parent, err := f.Has("comments", fabrica.WithCount(5)).Create(ctx, nil)
func (f *Factory) Has(relationship string, opts ...Option) *Factory {
	if f.err != nil {
		return f
	}
	if f.env.Types == nil {
		f.err = ErrNoTypeRegistry
		return f
	}
	rel, err := f.env.Types.Relationship(f.record, relationship)
	if err != nil {
		f.err = NewUnrelatedFieldError(f.record.Name(), relationship, err)
		return f
	}
	if f.env.Registry == nil {
		f.err = NewNoFactoryError(rel.Related.Name())
		return f
	}
	bp, err := f.env.Registry.LookupByRecordType(f.env.Types, rel.Related)
	if err != nil {
		f.err = err
		return f
	}
	child, err := New(f.env, bp)
	if err != nil {
		f.err = err
		return f
	}
	cfg := newGenConfig(opts)
	items, err := expandSequence(cfg.count, cfg.sequence, cfg.overrides)
	if err != nil {
		f.err = err
		return f
	}
	for _, item := range items {
		f.pending = append(f.pending, pendingGeneration{
			reverseField: rel.ReverseField,
			child:        child,
			overrides:    item,
		})
	}
	return f
}

// Pending returns the number of queued pending generations.
func (f *Factory) Pending() int { return len(f.pending) }

// drain creates each queued child, in insertion order, with the entry's
// overrides merged with the reverse-field binding to the parent; the
// parent binding always wins over a same-named override. The queue is
// cleared unconditionally, including on partial failure: the first child
// creation error aborts the batch and already-created children remain
// persisted. No rollback is provided by this layer.
func (f *Factory) drain(ctx context.Context, parent Record, depth int) error {
	defer func() { f.pending = nil }()
	for _, pg := range f.pending {
		overrides := pg.overrides.Clone()
		overrides[pg.reverseField] = parent
		if _, err := pg.child.create(ctx, overrides, depth+1); err != nil {
			return err
		}
	}
	return nil
}
