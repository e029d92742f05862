package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failure categories the service can produce.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindDuplicate
	KindNotFound
	KindPersistence
)

// HTTPStatus maps a failure kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindDuplicate:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPersistence, KindUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable error code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_FAILED"
	case KindDuplicate:
		return "DUPLICATE_IDENTIFIER"
	case KindNotFound:
		return "NOT_FOUND"
	case KindPersistence:
		return "PERSISTENCE_FAILED"
	default:
		return "INTERNAL_ERROR"
	}
}

// DomainError standardizes application errors.
type DomainError struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// New constructs a DomainError of the given kind.
func New(kind Kind, message string, details map[string]any) *DomainError {
	return &DomainError{Kind: kind, Message: message, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return New(KindValidation, message, details)
}

func NewDuplicate(message string, details map[string]any) error {
	return New(KindDuplicate, message, details)
}

func NewNotFound(resource string, details map[string]any) error {
	return New(KindNotFound, fmt.Sprintf("%s not found!", resource), details)
}

func NewPersistenceFailure(message string) error {
	return New(KindPersistence, message, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Kind:    KindUnknown,
		Message: "Something went wrong!",
		Err:     err,
	}
}

// ToDomainError converts generic errors to DomainError, collapsing anything
// unrecognized into an internal error so no detail leaks to the client.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Kind:    KindUnknown,
		Message: "Something went wrong!",
		Err:     err,
	}
}

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind Kind) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind == kind
	}
	return false
}
