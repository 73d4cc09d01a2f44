package bootstrap

import (
	"errors"
	"fmt"
)

// Kind classifies a bootstrap failure.
type Kind string

const (
	// KindSchemaConflict means a table already exists with an incompatible
	// definition.
	KindSchemaConflict Kind = "SchemaConflict"
	// KindReferentialViolation means a row references a parent key that does
	// not exist.
	KindReferentialViolation Kind = "ReferentialViolation"
	// KindStorageUnavailable means the storage target could not be opened,
	// written or committed.
	KindStorageUnavailable Kind = "StorageUnavailable"
)

var (
	// ErrSchemaConflict matches every *Error of kind KindSchemaConflict.
	ErrSchemaConflict = errors.New("schema conflict")

	// ErrReferentialViolation matches every *Error of kind KindReferentialViolation.
	ErrReferentialViolation = errors.New("referential violation")

	// ErrStorageUnavailable matches every *Error of kind KindStorageUnavailable.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrClosed is returned by operations on a loader that was already
	// committed or closed.
	ErrClosed = errors.New("loader is closed")
)

// Error is the error type returned by loader operations.
type Error struct {
	Kind   Kind
	Table  string // offending table, empty when not table specific
	Detail string
	Err    error // underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Table != "" {
		msg += " on " + e.Table
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k Kind) sentinel() error {
	switch k {
	case KindSchemaConflict:
		return ErrSchemaConflict
	case KindReferentialViolation:
		return ErrReferentialViolation
	case KindStorageUnavailable:
		return ErrStorageUnavailable
	}
	return nil
}

func schemaConflict(table, detail string, err error) *Error {
	return &Error{Kind: KindSchemaConflict, Table: table, Detail: detail, Err: err}
}

func referentialViolation(table, detail string, err error) *Error {
	return &Error{Kind: KindReferentialViolation, Table: table, Detail: detail, Err: err}
}

func storageUnavailable(table, detail string, err error) *Error {
	return &Error{Kind: KindStorageUnavailable, Table: table, Detail: detail, Err: err}
}

// KindOf returns the kind of a bootstrap error anywhere in err's chain, or
// the empty kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
