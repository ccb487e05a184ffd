package gen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	m, err := LoadManifest(strings.NewReader(validManifest))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, Generate(context.Background(), m, WithOutDir(dir), WithWorkers(2)))

	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		return string(data)
	}

	t.Run("factory file per type", func(t *testing.T) {
		post := read("post_factory.go")
		assert.Contains(t, post, "Code generated by fabrica. DO NOT EDIT.")
		assert.Contains(t, post, "package blogfix")
		assert.Contains(t, post, "type PostFactory struct")
		assert.Contains(t, post, "fabrica.Recipe")
		assert.Contains(t, post, `fabrica.RefNamed("posts.Post")`)
		assert.Contains(t, post, `"title":`)
		assert.Contains(t, post, "fake.Sentence(6)")
	})

	t.Run("ref kinds emit blueprint references", func(t *testing.T) {
		comment := read("comment_factory.go")
		assert.Contains(t, comment, `fabrica.Use("posts.PostFactory")`)
	})

	t.Run("index file", func(t *testing.T) {
		index := read("blueprints.go")
		assert.Contains(t, index, "func Blueprints()")
		assert.Contains(t, index, "PostFactory{}")
		assert.Contains(t, index, "CommentFactory{}")
		assert.Contains(t, index, "func DefineTypes(reg *schema.Registry)")
		assert.Contains(t, index, `schema.HasMany("comments", "post", "posts.Comment")`)
	})
}

func TestGenerateOptions(t *testing.T) {
	t.Parallel()

	m, err := LoadManifest(strings.NewReader(validManifest))
	require.NoError(t, err)

	t.Run("package override", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, Generate(context.Background(), m, WithOutDir(dir), WithPackage("other")))

		data, err := os.ReadFile(filepath.Join(dir, "blueprints.go"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "package other")
	})

	t.Run("header comment", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, Generate(context.Background(), m, WithOutDir(dir), WithHeader("Source: blog.yaml")))

		data, err := os.ReadFile(filepath.Join(dir, "post_factory.go"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "Source: blog.yaml")
	})

	t.Run("empty output directory is rejected", func(t *testing.T) {
		t.Parallel()

		err := Generate(context.Background(), m, WithOutDir(""))
		require.Error(t, err)
	})
}

func TestNaming(t *testing.T) {
	t.Parallel()

	t.Run("factoryName", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "PostFactory", factoryName("posts.Post"))
		assert.Equal(t, "OrderItemFactory", factoryName("posts.OrderItem"))
		assert.Equal(t, "OrderItemFactory", factoryName("posts.order_item"))
		assert.Equal(t, "PostFactory", factoryName("Post"))
	})

	t.Run("fileName", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "post_factory.go", fileName("posts.Post"))
		assert.Equal(t, "order_item_factory.go", fileName("posts.OrderItem"))
	})

	t.Run("fieldValue", func(t *testing.T) {
		t.Parallel()

		for _, kind := range kindNames() {
			_, err := fieldValue(kind)
			assert.NoError(t, err, kind)
		}
		_, err := fieldValue("haiku")
		assert.Error(t, err)
	})
}
