package velq_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/velq"
)

func TestNoResultError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := velq.NewNoResultError("actor")
		assert.Equal(t, "velq: actor: no result", err.Error())
		assert.Equal(t, "actor", err.Label())
	})

	t.Run("Is", func(t *testing.T) {
		err := velq.NewNoResultError("film")
		assert.True(t, errors.Is(err, velq.ErrNoResult))
		assert.False(t, errors.Is(err, velq.ErrTooManyResults))
	})

	t.Run("IsNoResult", func(t *testing.T) {
		err := velq.NewNoResultError("film")
		assert.True(t, velq.IsNoResult(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, velq.IsNoResult(wrapped))

		// Sentinel error
		assert.True(t, velq.IsNoResult(velq.ErrNoResult))

		// Non-matching error
		assert.False(t, velq.IsNoResult(errors.New("other error")))
		assert.False(t, velq.IsNoResult(nil))
	})
}

func TestTooManyResultsError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := velq.NewTooManyResultsError("actor")
		assert.Equal(t, "velq: actor: too many results", err.Error())
		assert.Equal(t, -1, err.Count())
	})

	t.Run("ErrorWithCount", func(t *testing.T) {
		err := velq.NewTooManyResultsErrorWithCount("actor", 3)
		assert.Equal(t, "velq: actor: too many results (got 3, expected at most 1)", err.Error())
		assert.Equal(t, 3, err.Count())
	})

	t.Run("IsTooManyResults", func(t *testing.T) {
		err := velq.NewTooManyResultsError("category")
		assert.True(t, errors.Is(err, velq.ErrTooManyResults))
		assert.True(t, velq.IsTooManyResults(fmt.Errorf("wrapper: %w", err)))
		assert.False(t, velq.IsTooManyResults(velq.NewNoResultError("category")))
		assert.False(t, velq.IsTooManyResults(nil))
	})
}

func TestBuildTimeErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		msg   string
		check func(error) bool
	}{
		{
			name:  "SchemaError",
			err:   &velq.SchemaError{Table: "actor", Column: "first_name", Msg: "duplicate column"},
			msg:   "velq: schema: actor.first_name: duplicate column",
			check: velq.IsSchemaError,
		},
		{
			name:  "SchemaErrorTableOnly",
			err:   &velq.SchemaError{Table: "actor", Msg: "table already registered"},
			msg:   "velq: schema: actor: table already registered",
			check: velq.IsSchemaError,
		},
		{
			name:  "UnknownRelationshipError",
			err:   &velq.UnknownRelationshipError{Table: "film_actor", Relationship: "director"},
			msg:   `velq: table "film_actor" has no relationship "director"`,
			check: velq.IsUnknownRelationship,
		},
		{
			name:  "TypeMismatchError",
			err:   &velq.TypeMismatchError{Column: "film.film_id", Expected: "int", Got: "string"},
			msg:   "velq: type mismatch for film.film_id: expected int, got string",
			check: velq.IsTypeMismatch,
		},
		{
			name:  "MissingColumnError",
			err:   &velq.MissingColumnError{Table: "film", Columns: []string{"title", "language_id"}},
			msg:   "velq: insert into film: missing required columns: title, language_id",
			check: velq.IsMissingColumn,
		},
		{
			name:  "UnboundColumnError",
			err:   &velq.UnboundColumnError{Column: "category.name", Source: "category"},
			msg:   `velq: column category.name references "category", which is not a source of the statement`,
			check: velq.IsUnboundColumn,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.msg, tt.err.Error())
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("wrapped: %w", tt.err)))
			assert.False(t, tt.check(errors.New("other")))
			assert.False(t, tt.check(nil))
		})
	}
}

func TestBuildError(t *testing.T) {
	err := velq.NewBuildError("select", "missing FROM clause")
	assert.Equal(t, "velq: build select: missing FROM clause", err.Error())
	assert.NotNil(t, errors.Unwrap(err))
}

func TestMappingError(t *testing.T) {
	inner := errors.New("cannot assign string to int")
	err := &velq.MappingError{Type: "Actor", Field: "ID", Err: inner}
	assert.Equal(t, "velq: mapping into Actor.ID: cannot assign string to int", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.True(t, velq.IsMappingError(err))

	noField := &velq.MappingError{Type: "Actor", Err: inner}
	assert.Equal(t, "velq: mapping into Actor: cannot assign string to int", noField.Error())
}

func TestDatabaseError(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("Plain", func(t *testing.T) {
		err := &velq.DatabaseError{Op: "query", Query: "SELECT 1", Err: cause}
		assert.Equal(t, "velq: query: connection refused", err.Error())
		assert.ErrorIs(t, err, cause)
		assert.True(t, velq.IsDatabaseError(err))
		assert.False(t, velq.IsConstraintError(err))
	})

	t.Run("Constraint", func(t *testing.T) {
		err := &velq.DatabaseError{Op: "exec", Constraint: "unique", Err: cause}
		assert.Equal(t, "velq: exec: unique constraint failed: connection refused", err.Error())
		assert.True(t, velq.IsConstraintError(fmt.Errorf("wrapped: %w", err)))
	})

	t.Run("Nil", func(t *testing.T) {
		assert.False(t, velq.IsDatabaseError(nil))
		assert.False(t, velq.IsConstraintError(nil))
	})
}

func TestRollbackError(t *testing.T) {
	cause := errors.New("tx closed")
	err := &velq.RollbackError{Err: cause}
	assert.Equal(t, "velq: rollback failed: tx closed", err.Error())
	assert.ErrorIs(t, err, cause)
}
