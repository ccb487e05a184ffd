package fabrica_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/fabrica"
)

func TestNotImplementedError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := fabrica.NewNotImplementedError("posts.PostFactory")
		assert.Equal(t, "fabrica: posts.PostFactory does not implement Definition", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := fabrica.NewNotImplementedError("posts.PostFactory")
		assert.True(t, errors.Is(err, fabrica.ErrNotImplemented))
	})

	t.Run("IsNotImplemented", func(t *testing.T) {
		err := fabrica.NewNotImplementedError("posts.PostFactory")
		assert.True(t, fabrica.IsNotImplemented(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, fabrica.IsNotImplemented(wrapped))

		// Sentinel error
		assert.True(t, fabrica.IsNotImplemented(fabrica.ErrNotImplemented))

		// Non-matching error
		assert.False(t, fabrica.IsNotImplemented(errors.New("other error")))
		assert.False(t, fabrica.IsNotImplemented(nil))
	})
}

func TestNotRegisteredError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := fabrica.NewNotRegisteredError("posts.PostFactory")
		assert.Equal(t, `fabrica: blueprint "posts.PostFactory" not registered`, err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := fabrica.NewNotRegisteredError("posts.PostFactory")
		assert.True(t, errors.Is(err, fabrica.ErrNotRegistered))
	})

	t.Run("IsNotRegistered", func(t *testing.T) {
		assert.True(t, fabrica.IsNotRegistered(fabrica.NewNotRegisteredError("x.Y")))
		assert.True(t, fabrica.IsNotRegistered(fabrica.ErrNotRegistered))
		assert.False(t, fabrica.IsNotRegistered(nil))
	})
}

func TestDuplicateError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := fabrica.NewDuplicateError("posts.PostFactory")
		assert.Equal(t, `fabrica: blueprint "posts.PostFactory" already registered`, err.Error())
	})

	t.Run("IsDuplicate", func(t *testing.T) {
		err := fabrica.NewDuplicateError("posts.PostFactory")
		assert.True(t, fabrica.IsDuplicate(err))
		assert.True(t, fabrica.IsDuplicate(fmt.Errorf("wrap: %w", err)))
		assert.False(t, fabrica.IsDuplicate(errors.New("other")))
	})
}

func TestNoFactoryError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := fabrica.NewNoFactoryError("posts.Orphan")
		assert.Equal(t, `fabrica: no blueprint registered for record type "posts.Orphan"`, err.Error())
	})

	t.Run("IsNoFactory", func(t *testing.T) {
		assert.True(t, fabrica.IsNoFactory(fabrica.NewNoFactoryError("posts.Orphan")))
		assert.False(t, fabrica.IsNoFactory(nil))
	})
}

func TestUnresolvedRefError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := fabrica.NewUnresolvedRefError("post", "posts.GhostFactory")
		assert.Equal(t, `fabrica: field "post" references unknown blueprint "posts.GhostFactory"`, err.Error())
	})

	t.Run("IsUnresolvedRef", func(t *testing.T) {
		assert.True(t, fabrica.IsUnresolvedRef(fabrica.NewUnresolvedRefError("post", "x.Y")))
		assert.False(t, fabrica.IsUnresolvedRef(errors.New("other")))
	})
}

func TestUnrelatedFieldError(t *testing.T) {
	t.Run("Error and Unwrap", func(t *testing.T) {
		cause := errors.New("no such relationship")
		err := fabrica.NewUnrelatedFieldError("posts.Post", "likes", cause)
		assert.Contains(t, err.Error(), `"likes" is not a relationship on posts.Post`)
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("IsUnrelatedField", func(t *testing.T) {
		err := fabrica.NewUnrelatedFieldError("posts.Post", "likes", errors.New("x"))
		assert.True(t, fabrica.IsUnrelatedField(err))
		assert.False(t, fabrica.IsUnrelatedField(nil))
	})
}

func TestPendingRelationshipError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := fabrica.NewPendingRelationshipError("posts.Post", 3)
		assert.Equal(t, "fabrica: cannot make posts.Post with 3 pending relationship(s); use Create", err.Error())
	})

	t.Run("IsPendingRelationship", func(t *testing.T) {
		assert.True(t, fabrica.IsPendingRelationship(fabrica.NewPendingRelationshipError("posts.Post", 1)))
		assert.False(t, fabrica.IsPendingRelationship(errors.New("other")))
	})
}

func TestSequenceTypeError(t *testing.T) {
	t.Run("Error includes guidance", func(t *testing.T) {
		err := fabrica.NewSequenceTypeError(2, []int{1})
		assert.Contains(t, err.Error(), "sequence item 2")
		assert.Contains(t, err.Error(), "WithSequence")
	})

	t.Run("IsSequenceType", func(t *testing.T) {
		assert.True(t, fabrica.IsSequenceType(fabrica.NewSequenceTypeError(0, "x")))
		assert.False(t, fabrica.IsSequenceType(nil))
	})
}

func TestDepthError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := fabrica.NewDepthError("posts.Node", 25)
		assert.Contains(t, err.Error(), "posts.Node")
		assert.Contains(t, err.Error(), "recursion limit 25")
	})

	t.Run("Is", func(t *testing.T) {
		err := fabrica.NewDepthError("posts.Node", 25)
		assert.True(t, errors.Is(err, fabrica.ErrDepthExceeded))
		assert.True(t, fabrica.IsDepthExceeded(err))
		assert.True(t, fabrica.IsDepthExceeded(fabrica.ErrDepthExceeded))
		assert.False(t, fabrica.IsDepthExceeded(nil))
	})
}
