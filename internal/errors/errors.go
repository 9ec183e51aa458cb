// Package errors provides the structured error builder used across the
// service layer. Errors carry a human-readable hint, optional reportable
// details, and a sentinel mark that the HTTP layer maps to a status code.
package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel marks. Business code never matches on messages, only on these.
var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrDatabase            = errors.New("database error")
	ErrInternal            = errors.New("internal error")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrInvalidTransition   = errors.New("invalid lesson transition")
	ErrScheduleConflict    = errors.New("schedule conflict")
	ErrInconsistentPayment = errors.New("inconsistent payment")
)

// ErrorBuilder accumulates context before the error is marked and returned.
type ErrorBuilder struct {
	err     error
	hint    string
	details map[string]interface{}
}

// NewError starts a builder from a fresh error message.
func NewError(message string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.NewWithDepth(1, message)}
}

// NewErrorf starts a builder from a formatted error message.
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return &ErrorBuilder{err: errors.NewWithDepthf(1, format, args...)}
}

// WithError starts a builder wrapping an existing error.
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// WithHint attaches a hint safe to surface to API consumers.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.hint = hint
	return b
}

// WithHintf attaches a formatted hint.
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.hint = errors.Newf(format, args...).Error()
	return b
}

// WithReportableDetails attaches structured details surfaced in API error
// payloads.
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	b.details = details
	return b
}

// Mark finalizes the builder, tagging the error with the given sentinel.
func (b *ErrorBuilder) Mark(mark error) error {
	err := b.err
	if b.hint != "" {
		err = errors.WithHint(err, b.hint)
	}
	if len(b.details) > 0 {
		err = &detailedError{cause: err, details: b.details}
	}
	return errors.Mark(err, mark)
}

// detailedError carries reportable details through wrapping.
type detailedError struct {
	cause   error
	details map[string]interface{}
}

func (e *detailedError) Error() string { return e.cause.Error() }
func (e *detailedError) Cause() error  { return e.cause }
func (e *detailedError) Unwrap() error { return e.cause }

// Hint extracts the first hint attached to err nearest the call site.
func Hint(err error) string {
	hints := errors.GetAllHints(err)
	if len(hints) == 0 {
		return ""
	}
	return hints[0]
}

// Details extracts reportable details attached anywhere in the chain.
func Details(err error) map[string]interface{} {
	for err != nil {
		if de, ok := err.(*detailedError); ok {
			return de.details
		}
		err = errors.UnwrapOnce(err)
	}
	return nil
}

func IsValidation(err error) bool          { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool            { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool       { return errors.Is(err, ErrAlreadyExists) }
func IsDatabase(err error) bool            { return errors.Is(err, ErrDatabase) }
func IsInvalidOperation(err error) bool    { return errors.Is(err, ErrInvalidOperation) }
func IsInvalidTransition(err error) bool   { return errors.Is(err, ErrInvalidTransition) }
func IsScheduleConflict(err error) bool    { return errors.Is(err, ErrScheduleConflict) }
func IsInconsistentPayment(err error) bool { return errors.Is(err, ErrInconsistentPayment) }

// Is re-exports errors.Is so callers need a single import.
func Is(err, target error) bool { return errors.Is(err, target) }
