package cheetah

import (
	"errors"
	"fmt"

	"github.com/Cybermals/Cheetah-ORM/filter"
	"github.com/Cybermals/Cheetah-ORM/schema/field"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("cheetah: record not found")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = field.ErrValidation

	// ErrFilterSyntax is matched by every *FilterSyntaxError.
	ErrFilterSyntax = filter.ErrSyntax

	// ErrUnresolvedReference is matched by every *UnresolvedReferenceError.
	ErrUnresolvedReference = errors.New("cheetah: unresolved model reference")

	// ErrPersistence is matched by every *PersistenceError.
	ErrPersistence = errors.New("cheetah: statement failed")
)

// ValidationError reports a bad field value. It is raised at assignment
// time by Instance.Set and Model.Create, never deferred to Save.
type ValidationError = field.ValidationError

// IsValidation returns true if the error is a ValidationError.
func IsValidation(err error) bool { return field.IsValidation(err) }

// FilterSyntaxError reports a malformed or unknown filter keyword. It is
// raised when Filter compiles its keywords, before any SQL executes.
type FilterSyntaxError = filter.SyntaxError

// IsFilterSyntax returns true if the error is a FilterSyntaxError.
func IsFilterSyntax(err error) bool { return filter.IsSyntax(err) }

// NotFoundError reports a fetch by primary key that matched no row.
type NotFoundError struct {
	label string
	id    any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("cheetah: %s not found (key=%v)", e.label, e.id)
	}
	return fmt.Sprintf("cheetah: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the model name.
func (e *NotFoundError) Label() string { return e.label }

// ID returns the key that was searched for, if available.
func (e *NotFoundError) ID() any { return e.id }

// NewNotFoundError returns a new NotFoundError for the given model.
func NewNotFoundError(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// UnresolvedReferenceError reports a foreign-key field whose referenced
// model is not registered. It is raised at model-declaration time.
type UnresolvedReferenceError struct {
	Model string // the model being declared
	Field string // the foreign-key field
	Ref   string // the referenced model name
}

// Error returns the error string.
func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("cheetah: model %s: foreign key %q references unknown model %q", e.Model, e.Field, e.Ref)
}

// Is reports whether the target error matches ErrUnresolvedReference.
func (e *UnresolvedReferenceError) Is(err error) bool {
	return err == ErrUnresolvedReference
}

// IsUnresolvedReference returns true if the error is an UnresolvedReferenceError.
func IsUnresolvedReference(err error) bool {
	if err == nil {
		return false
	}
	var e *UnresolvedReferenceError
	return errors.As(err, &e) || errors.Is(err, ErrUnresolvedReference)
}

// PersistenceError reports a statement the backend rejected: a constraint
// violation, a locked table or a lost connection. The backend's error is
// wrapped and available through Unwrap.
type PersistenceError struct {
	Op    string // "insert", "update", "delete", "create table", ...
	Table string
	Err   error
}

// Error returns the error string.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cheetah: %s on %q failed: %v", e.Op, e.Table, e.Err)
}

// Unwrap returns the backend error.
func (e *PersistenceError) Unwrap() error { return e.Err }

// Is reports whether the target error matches ErrPersistence.
func (e *PersistenceError) Is(err error) bool {
	return err == ErrPersistence
}

// IsPersistence returns true if the error is a PersistenceError.
func IsPersistence(err error) bool {
	if err == nil {
		return false
	}
	var e *PersistenceError
	return errors.As(err, &e) || errors.Is(err, ErrPersistence)
}
