package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// The error taxonomy shared by every transport. REST maps these to status
// codes, the MCP tools map them to isError content blocks; both see the same
// message for the same failure.

// ValidationError reports malformed or missing caller input. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an id that resolved to zero rows.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// StoreBusyError reports a lock acquisition that exceeded the configured
// timeout. Safe for the caller to retry.
type StoreBusyError struct {
	Err error
}

func (e *StoreBusyError) Error() string { return "store busy: " + e.Err.Error() }
func (e *StoreBusyError) Unwrap() error { return e.Err }

// ConstraintError reports a referential or uniqueness violation.
type ConstraintError struct {
	Err error
}

func (e *ConstraintError) Error() string { return "constraint violation: " + e.Err.Error() }
func (e *ConstraintError) Unwrap() error { return e.Err }

func isSQLiteBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

func isSQLiteConstraint(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return false
}

// classify wraps driver errors into the taxonomy. Errors already classified
// pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var nf *NotFoundError
	var be *StoreBusyError
	var ce *ConstraintError
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &be) || errors.As(err, &ce) {
		return err
	}
	if isSQLiteBusy(err) {
		return &StoreBusyError{Err: err}
	}
	if isSQLiteConstraint(err) {
		return &ConstraintError{Err: err}
	}
	return err
}
