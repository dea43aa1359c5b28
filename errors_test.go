package cheetah

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cybermals/Cheetah-ORM/filter"
	"github.com/Cybermals/Cheetah-ORM/schema/field"
)

// TestNotFoundError tests sentinel and helper matching.
func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("User", int64(7))

	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "User", err.Label())
	assert.Equal(t, int64(7), err.ID())
	assert.Contains(t, err.Error(), "User")
	assert.Contains(t, err.Error(), "7")

	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(errors.New("other")))
}

// TestNotFoundErrorWrapped tests matching through wrapping.
func TestNotFoundErrorWrapped(t *testing.T) {
	err := fmt.Errorf("loading profile: %w", NewNotFoundError("User", int64(7)))
	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, ErrNotFound))

	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "User", nfe.Label())
}

// TestValidationError tests the re-exported validation error type.
func TestValidationError(t *testing.T) {
	_, err := field.String("name").Length(4).Descriptor().Validate("too long")
	require.Error(t, err)

	assert.True(t, IsValidation(err))
	assert.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

// TestFilterSyntaxError tests the re-exported filter error type.
func TestFilterSyntaxError(t *testing.T) {
	err := error(&filter.SyntaxError{Keyword: "name", Reason: "missing comparison operator suffix"})

	assert.True(t, IsFilterSyntax(err))
	assert.True(t, errors.Is(err, ErrFilterSyntax))

	var serr *FilterSyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "name", serr.Keyword)
}

// TestUnresolvedReferenceError tests declaration-time reference errors.
func TestUnresolvedReferenceError(t *testing.T) {
	err := error(&UnresolvedReferenceError{Model: "Post", Field: "author", Ref: "User"})

	assert.True(t, IsUnresolvedReference(err))
	assert.True(t, errors.Is(err, ErrUnresolvedReference))
	assert.Contains(t, err.Error(), "Post")
	assert.Contains(t, err.Error(), "User")
	assert.False(t, IsUnresolvedReference(nil))
}

// TestPersistenceError tests wrapping of backend errors.
func TestPersistenceError(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: users.name")
	err := error(&PersistenceError{Op: "insert", Table: "users", Err: cause})

	assert.True(t, IsPersistence(err))
	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "insert")
	assert.Contains(t, err.Error(), "users")
}

// TestErrorSentinelsDistinct tests that the sentinel classes do not
// cross-match.
func TestErrorSentinelsDistinct(t *testing.T) {
	notFound := error(NewNotFoundError("User", nil))
	persistence := error(&PersistenceError{Op: "insert", Table: "users", Err: errors.New("boom")})

	assert.False(t, IsPersistence(notFound))
	assert.False(t, IsNotFound(persistence))
	assert.False(t, IsValidation(notFound))
	assert.False(t, IsFilterSyntax(persistence))
}
