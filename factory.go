package fabrica

import (
	"context"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory is the engine instance for one blueprint: it resolves the
// blueprint definition against caller overrides and produces made or
// created records. A Factory is stateless between invocations except for
// its pending-generation queue, which exists only for the duration of one
// Has(...)...Create() call chain and is cleared after use. A Factory is
// not safe for concurrent use; build one per goroutine.
type Factory struct {
	env     *Env
	bp      Blueprint
	record  RecordType
	fake    *gofakeit.Faker
	pending []pendingGeneration
	err     error // deferred builder error from Has
}

// New builds a factory for the blueprint against the given environment.
// The blueprint's record reference is resolved once, here, never again
// per call.
func New(env *Env, bp Blueprint) (*Factory, error) {
	if env == nil {
		env = &Env{}
	}
	rt, err := bp.Record().resolve(env.Types)
	if err != nil {
		return nil, err
	}
	fake := gofakeit.New(env.Seed)
	if fc, ok := bp.(FakerConfigurator); ok {
		fake = fc.ConfigureFaker(env.Seed)
	}
	return &Factory{env: env, bp: bp, record: rt, fake: fake}, nil
}

// NewNamed looks up a registered blueprint by qualified name and builds a
// factory for it.
func NewNamed(env *Env, qualifiedName string) (*Factory, error) {
	if env == nil || env.Registry == nil {
		return nil, NewNotRegisteredError(qualifiedName)
	}
	bp, err := env.Registry.Lookup(qualifiedName)
	if err != nil {
		return nil, err
	}
	return New(env, bp)
}

// RecordType returns the record type this factory produces.
func (f *Factory) RecordType() RecordType { return f.record }

// Faker returns the factory's fake-data generator.
func (f *Factory) Faker() *gofakeit.Faker { return f.fake }

// Make resolves the definition and constructs an instance without
// persisting it. Related values in the definition are still eagerly
// created. Make fails with a PendingRelationshipError if pending
// generations are queued: a non-persisted instance cannot be a parent.
func (f *Factory) Make(ctx context.Context, overrides Fields) (Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n := len(f.pending); n > 0 {
		return nil, NewPendingRelationshipError(f.record.Name(), n)
	}
	fields, err := f.resolve(ctx, overrides, 0)
	if err != nil {
		return nil, err
	}
	return f.record.New(fields), nil
}

// Create resolves the definition, persists the instance, then drains the
// pending-generation queue against the now-identified parent. The default
// path constructs, saves and refreshes; a blueprint implementing
// CreateOverrider replaces it.
func (f *Factory) Create(ctx context.Context, overrides Fields) (Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.create(ctx, overrides, 0)
}

func (f *Factory) create(ctx context.Context, overrides Fields, depth int) (Record, error) {
	fields, err := f.resolve(ctx, overrides, depth)
	if err != nil {
		return nil, err
	}
	var inst Record
	if ov, ok := f.bp.(CreateOverrider); ok {
		if inst, err = ov.CreateOverride(ctx, fields); err != nil {
			return nil, err
		}
	} else {
		inst = f.record.New(fields)
		if err = inst.Save(ctx); err != nil {
			return nil, err
		}
		if err = inst.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	if len(f.pending) > 0 {
		if err = f.drain(ctx, inst, depth); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// CreateQuietly performs Create with lifecycle notifications suspended for
// this record type. Exactly the listeners connected before the call are
// reconnected afterwards, on all exit paths, including when the inner
// create fails. Suspension is per record type; related records created
// transitively still notify.
func (f *Factory) CreateQuietly(ctx context.Context, overrides Fields) (Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	sig := f.env.Signals
	if sig == nil {
		return f.Create(ctx, overrides)
	}
	var connected [len(Events)]bool
	for i, e := range Events {
		if sig.HasListeners(e, f.record) {
			connected[i] = true
			sig.Disconnect(e, f.record)
		}
	}
	defer func() {
		for i, e := range Events {
			if connected[i] {
				sig.Connect(e, f.record)
			}
		}
	}()
	return f.Create(ctx, overrides)
}

// MakeBatch makes size instances, in call order. With WithSequence, the
// i-th instance's overrides are sequence[i mod len] merged with
// WithOverrides, the flat overrides winning on conflicts.
func (f *Factory) MakeBatch(ctx context.Context, size int, opts ...Option) ([]Record, error) {
	return f.batch(ctx, size, f.Make, opts)
}

// CreateBatch creates size instances, in call order, with the same
// sequence semantics as MakeBatch.
func (f *Factory) CreateBatch(ctx context.Context, size int, opts ...Option) ([]Record, error) {
	return f.batch(ctx, size, f.Create, opts)
}

func (f *Factory) batch(ctx context.Context, size int, one func(context.Context, Fields) (Record, error), opts []Option) ([]Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	cfg := newGenConfig(opts)
	items, err := expandSequence(size, cfg.sequence, cfg.overrides)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, size)
	for _, item := range items {
		rec, err := one(ctx, item)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
