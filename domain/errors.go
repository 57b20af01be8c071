package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared by the attendance and insights layers.
var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrCooldown      = errors.New("cooldown active")
	ErrStore         = errors.New("store failure")
	ErrConfiguration = errors.New("configuration error")
	ErrGeneration    = errors.New("generation failure")
)

// Kind is the stable error category reported to callers.
type Kind string

const (
	KindValidation    Kind = "Validation"
	KindNotFound      Kind = "NotFound"
	KindCooldown      Kind = "Cooldown"
	KindRateLimited   Kind = "RateLimited"
	KindStoreFailure  Kind = "StoreFailure"
	KindConfiguration Kind = "Configuration"
	KindGeneration    Kind = "Generation"
	KindUnexpected    Kind = "Unexpected"
)

// ValidationError describes user-correctable bad input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// CooldownError is returned when a member checks in again too soon.
type CooldownError struct {
	MemberID  string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("member %s must wait %ds before checking in again", e.MemberID, e.RetryAfterSeconds())
}

func (e *CooldownError) Unwrap() error { return ErrCooldown }

// RetryAfterSeconds is the remaining wait in whole seconds.
func (e *CooldownError) RetryAfterSeconds() int64 {
	return int64(e.Remaining / time.Second)
}

// StoreError wraps a backend failure with the operation that failed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStore, e.Err} }

// NewStoreError wraps err; nil stays nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// GenerationError wraps a failed or unusable text generation call.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation: %s: %v", e.Reason, e.Err)
	}
	return "generation: " + e.Reason
}

func (e *GenerationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrGeneration, e.Err}
	}
	return []error{ErrGeneration}
}

// KindOf classifies err into one of the reported kinds.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrCooldown):
		return KindCooldown
	case errors.Is(err, ErrStore):
		return KindStoreFailure
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrGeneration):
		return KindGeneration
	default:
		return KindUnexpected
	}
}
