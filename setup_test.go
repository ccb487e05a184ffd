package fabrica_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/syssam/fabrica"
	"github.com/syssam/fabrica/schema"
	"github.com/syssam/fabrica/signal"
	"github.com/syssam/fabrica/store/memstore"
)

// testEnv wires a full fixture environment against an in-memory store.
type testEnv struct {
	env   *fabrica.Env
	store *memstore.Store
	hub   *signal.Hub
	types *schema.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memstore.New()
	hub := signal.NewHub()
	types := schema.NewRegistry(store, schema.WithNotifier(hub))
	types.Define("posts.Post",
		schema.HasMany("comments", "post", "posts.Comment"),
		schema.HasMany("badges", "post", "posts.Badge"),
		schema.HasMany("orphans", "post", "posts.Orphan"),
	)
	types.Define("posts.Comment")
	types.Define("posts.Badge")
	types.Define("posts.Orphan")
	types.Define("posts.Node")

	registry := fabrica.NewRegistry()
	require.NoError(t, registry.Add(
		postFactory{}, commentFactory{}, badgeFactory{}, nodeFactory{},
	))
	return &testEnv{
		env:   &fabrica.Env{Types: types, Signals: hub, Registry: registry, Seed: 7},
		store: store,
		hub:   hub,
		types: types,
	}
}

func (te *testEnv) factory(t *testing.T, bp fabrica.Blueprint) *fabrica.Factory {
	t.Helper()
	f, err := fabrica.New(te.env, bp)
	require.NoError(t, err)
	return f
}

// postFactory is the plain case: literal and generated values only.
type postFactory struct{ fabrica.Recipe }

func (postFactory) FactoryName() string { return "posts.PostFactory" }

func (postFactory) Record() fabrica.RecordRef { return fabrica.RefNamed("posts.Post") }

func (postFactory) Definition(fake *gofakeit.Faker) (fabrica.Fields, error) {
	return fabrica.Fields{
		"title":   fake.Sentence(4),
		"content": fake.Paragraph(1, 2, 8, " "),
	}, nil
}

// commentFactory resolves its post through the blueprint registry.
type commentFactory struct{ fabrica.Recipe }

func (commentFactory) FactoryName() string { return "posts.CommentFactory" }

func (commentFactory) Record() fabrica.RecordRef { return fabrica.RefNamed("posts.Comment") }

func (commentFactory) Definition(fake *gofakeit.Faker) (fabrica.Fields, error) {
	return fabrica.Fields{
		"body": fake.Sentence(8),
		"post": fabrica.Use("posts.PostFactory"),
	}, nil
}

// commentDirectFactory embeds the related blueprint directly.
type commentDirectFactory struct{ fabrica.Recipe }

func (commentDirectFactory) FactoryName() string { return "posts.CommentDirectFactory" }

func (commentDirectFactory) Record() fabrica.RecordRef { return fabrica.RefNamed("posts.Comment") }

func (commentDirectFactory) Definition(fake *gofakeit.Faker) (fabrica.Fields, error) {
	return fabrica.Fields{
		"body": fake.Sentence(8),
		"post": postFactory{},
	}, nil
}

var errBadgeBroken = errors.New("badge definition broken")

// badgeFactory always fails its definition.
type badgeFactory struct{ fabrica.Recipe }

func (badgeFactory) FactoryName() string { return "posts.BadgeFactory" }

func (badgeFactory) Record() fabrica.RecordRef { return fabrica.RefNamed("posts.Badge") }

func (badgeFactory) Definition(*gofakeit.Faker) (fabrica.Fields, error) {
	return nil, errBadgeBroken
}

// nodeFactory is self-referential: resolving it must hit the recursion
// bound instead of hanging.
type nodeFactory struct{ fabrica.Recipe }

func (nodeFactory) FactoryName() string { return "posts.NodeFactory" }

func (nodeFactory) Record() fabrica.RecordRef { return fabrica.RefNamed("posts.Node") }

func (nodeFactory) Definition(fake *gofakeit.Faker) (fabrica.Fields, error) {
	return fabrica.Fields{
		"label":  fake.Word(),
		"parent": fabrica.Use("posts.NodeFactory"),
	}, nil
}

// ghostRefFactory references a blueprint that is never registered.
type ghostRefFactory struct{ fabrica.Recipe }

func (ghostRefFactory) Record() fabrica.RecordRef { return fabrica.RefNamed("posts.Comment") }

func (ghostRefFactory) Definition(fake *gofakeit.Faker) (fabrica.Fields, error) {
	return fabrica.Fields{
		"body": fake.Sentence(8),
		"post": fabrica.Use("posts.GhostFactory"),
	}, nil
}

// notImplementedFactory keeps the base Definition.
type notImplementedFactory struct{ fabrica.Recipe }

func (notImplementedFactory) Record() fabrica.RecordRef { return fabrica.RefNamed("posts.Post") }

// overrideFactory replaces the default create path and counts invocations.
type overrideFactory struct {
	fabrica.Recipe
	rt     fabrica.RecordType
	called *int
}

func (o overrideFactory) Record() fabrica.RecordRef { return fabrica.RefTo(o.rt) }

func (o overrideFactory) Definition(*gofakeit.Faker) (fabrica.Fields, error) {
	return fabrica.Fields{"title": "fixed title"}, nil
}

func (o overrideFactory) CreateOverride(ctx context.Context, fields fabrica.Fields) (fabrica.Record, error) {
	*o.called++
	rec := o.rt.New(fields)
	if err := rec.Save(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}
