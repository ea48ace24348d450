package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrState indicates an operation that is illegal for the current lifecycle state of a resource.
var ErrState = errors.New("invalid state")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// ValidationCode names the rule a ValidationError violated.
type ValidationCode string

const (
	CodeDuplicateCode      ValidationCode = "DuplicateCode"
	CodeRequiredField      ValidationCode = "RequiredField"
	CodeInvalidCode        ValidationCode = "InvalidCode"
	CodeInvalidParent      ValidationCode = "InvalidParent"
	CodeTypeMismatch       ValidationCode = "TypeMismatch"
	CodeTypeLocked         ValidationCode = "TypeLocked"
	CodeHasChildren        ValidationCode = "HasChildren"
	CodeHasJournalEntries  ValidationCode = "HasJournalEntries"
	CodeDepthExceeded      ValidationCode = "DepthExceeded"
	CodeTooFewLines        ValidationCode = "TooFewLines"
	CodeInvalidLine        ValidationCode = "InvalidLine"
	CodeUnknownAccount     ValidationCode = "UnknownAccount"
	CodeUnbalanced         ValidationCode = "Unbalanced"
	CodeNonPostableAccount ValidationCode = "NonPostableAccount"
	CodeVoidReasonRequired ValidationCode = "VoidReasonRequired"
	CodeInvalidPeriod      ValidationCode = "InvalidPeriod"
)

// StateCode names the lifecycle rule a StateError violated.
type StateCode string

const (
	CodeNotEditable   StateCode = "NotEditable"
	CodeNotDraft      StateCode = "NotDraft"
	CodeNotPosted     StateCode = "NotPosted"
	CodeAlreadyClosed StateCode = "AlreadyClosed"
	CodeNotClosed     StateCode = "NotClosed"
)

// ValidationError is a structural problem with caller input. It is always raised
// before any mutation happens.
type ValidationError struct {
	Code    ValidationCode
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s): %s", ErrValidation.Error(), e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Code, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(code ValidationCode, field, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

// StateError is an illegal lifecycle transition, detected against the freshly read status.
type StateError struct {
	Code    StateCode
	Current string
	Message string
}

func (e *StateError) Error() string {
	if e.Current != "" {
		return fmt.Sprintf("%s: %s (current %s): %s", ErrState.Error(), e.Code, e.Current, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrState.Error(), e.Code, e.Message)
}

func (e *StateError) Unwrap() error { return ErrState }

// NewStateError builds a StateError.
func NewStateError(code StateCode, current, format string, args ...any) *StateError {
	return &StateError{Code: code, Current: current, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown resource by kind and key.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

// AppError wraps an infrastructure failure with an HTTP-ish code and a message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the cause; without one the error reads as ErrInternal.
func (e *AppError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInternal
}

// NewAppError wraps err with a code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsValidation reports whether err is a ValidationError with the given code.
func IsValidation(err error, code ValidationCode) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Code == code
}

// IsState reports whether err is a StateError with the given code.
func IsState(err error, code StateCode) bool {
	var se *StateError
	return errors.As(err, &se) && se.Code == code
}
