package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodePersistence   = "PERSISTENCE_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuestion  = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrEmptyUserEmail = NewDomainError(ErrCodeValidation, "user email cannot be empty")
	ErrEmptyDocument  = NewDomainError(ErrCodeValidation, "source document is empty")
	ErrUnknownDomain  = NewDomainError(ErrCodeValidation, "unknown knowledge domain")
)

// Not found errors
var (
	ErrConversationNotFound = NewDomainError(ErrCodeNotFound, "conversation not found")
	ErrSourceFileNotFound   = NewDomainError(ErrCodeNotFound, "source document not found")
)

// ErrIndexNotInitialized reports a domain whose indices have not been built.
// Retrieval never builds on miss; ingestion is an explicit operator step.
func ErrIndexNotInitialized(domain DomainKey) *DomainError {
	return NewDomainError(ErrCodeNotFound, fmt.Sprintf("index not initialized for domain %s", domain))
}

// NewUpstreamError wraps a provider failure (classification, embedding,
// reranking, synthesis, speech). Fatal to the request it occurred in.
func NewUpstreamError(provider string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeUpstream, fmt.Sprintf("%s request failed", provider), err)
}

// NewPersistenceError wraps a memory-store failure. Never fatal to a request.
func NewPersistenceError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodePersistence, "failed to persist conversation", err)
}
