// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInvalidTradeRecord = errors.New("invalid trade record")
	ErrTradeNotFound      = errors.New("trade not found")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrSessionExpired     = errors.New("session expired")
	ErrConnectionFailed   = errors.New("connection failed")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrDatabaseError      = errors.New("database error")
)

// ValidationError describes why a trade record was rejected. It unwraps to
// ErrInvalidTradeRecord so callers can classify it without inspecting fields.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid trade record: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidTradeRecord
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// BrokerError represents an error from the broker API.
type BrokerError struct {
	Code    string
	Message string
	Err     error
}

func (e *BrokerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("broker error [%s]: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("broker error [%s]: %s", e.Code, e.Message)
}

func (e *BrokerError) Unwrap() error {
	return e.Err
}

// NewBrokerError creates a new BrokerError.
func NewBrokerError(code, message string, err error) *BrokerError {
	return &BrokerError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// StoreError represents a persistence error.
type StoreError struct {
	Op      string
	TradeID string
	Err     error
}

func (e *StoreError) Error() string {
	if e.TradeID != "" {
		return fmt.Sprintf("store error [%s] trade %s: %v", e.Op, e.TradeID, e.Err)
	}
	return fmt.Sprintf("store error [%s]: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, tradeID string, err error) *StoreError {
	return &StoreError{
		Op:      op,
		TradeID: tradeID,
		Err:     err,
	}
}

// ImportError represents an error while importing trades from an external source.
type ImportError struct {
	Source string
	Row    int
	Err    error
}

func (e *ImportError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("import error [%s] row %d: %v", e.Source, e.Row, e.Err)
	}
	return fmt.Sprintf("import error [%s]: %v", e.Source, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// NewImportError creates a new ImportError.
func NewImportError(source string, row int, err error) *ImportError {
	return &ImportError{
		Source: source,
		Row:    row,
		Err:    err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
