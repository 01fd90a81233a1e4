// Package service holds the parking business rules: lot and spot
// inventory, the booking and release flow, and admin reporting.  All
// compound operations run inside a single database transaction and
// report failures as *Error values that unwrap to one of the sentinel
// kinds below.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Error kinds.  Use errors.Is against these to classify a failure.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

// Error is a business-rule failure with a caller-facing message.
// Details optionally carries structured data such as the spot numbers
// that blocked a bulk delete.
type Error struct {
	Kind    error
	Message string
	Details interface{}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validationError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func conflictError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// withTx runs fn inside a transaction and commits when it returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
