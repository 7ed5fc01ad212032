package strata_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := strata.NewNotFoundError("table", "users")
		assert.Equal(t, `strata: table "users" not found`, err.Error())
		assert.Equal(t, "table", err.Label())
		assert.Equal(t, "users", err.Name())
	})

	t.Run("ErrorWithoutName", func(t *testing.T) {
		err := strata.NewNotFoundError("column", "")
		assert.Equal(t, "strata: column not found", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := strata.NewNotFoundError("table", "posts")
		assert.True(t, errors.Is(err, strata.ErrNotFound))
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := strata.NewNotFoundError("column", "email")
		assert.True(t, strata.IsNotFound(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, strata.IsNotFound(wrapped))

		// Sentinel error
		assert.True(t, strata.IsNotFound(strata.ErrNotFound))

		// Non-matching error
		assert.False(t, strata.IsNotFound(errors.New("other error")))
		assert.False(t, strata.IsNotFound(nil))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := strata.NewValidationError("User.age", errors.New("unknown type \"number\""))
		assert.Equal(t, `strata: invalid definition "User.age": unknown type "number"`, err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		inner := errors.New("inner")
		err := strata.NewValidationError("User", inner)
		assert.True(t, errors.Is(err, inner))
		assert.True(t, errors.Is(err, strata.ErrInvalidSchema))
	})

	t.Run("IsValidationError", func(t *testing.T) {
		err := strata.NewValidationError("Post", errors.New("bad"))
		assert.True(t, strata.IsValidationError(fmt.Errorf("load: %w", err)))
		assert.False(t, strata.IsValidationError(errors.New("bad")))
		assert.False(t, strata.IsValidationError(nil))
	})
}

func TestRollbackError(t *testing.T) {
	inner := errors.New("connection reset")
	err := &strata.RollbackError{Err: inner}
	assert.Equal(t, "strata: rollback failed: connection reset", err.Error())
	assert.True(t, errors.Is(err, inner))
}

func TestAggregateError(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, strata.NewAggregateError())
		assert.NoError(t, strata.NewAggregateError(nil, nil))
	})

	t.Run("Single", func(t *testing.T) {
		single := errors.New("single")
		assert.Equal(t, single, strata.NewAggregateError(nil, single))
	})

	t.Run("Multiple", func(t *testing.T) {
		e1, e2 := errors.New("first"), errors.New("second")
		err := strata.NewAggregateError(e1, nil, e2)
		require.Error(t, err)

		var agg *strata.AggregateError
		require.True(t, errors.As(err, &agg))
		assert.Len(t, agg.Errors, 2)
		assert.Equal(t, "strata: multiple errors:\n  [1] first\n  [2] second", err.Error())
		assert.True(t, errors.Is(err, e2))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, "strata: no errors", (&strata.AggregateError{}).Error())
	})
}
