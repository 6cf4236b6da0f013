package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Handlers map these to HTTP
// status codes; services never import net/http.
var (
	// ErrNotFound is returned when the requested entity does not exist.
	// It is also returned before any permission check so that callers
	// cannot probe for the existence of records they cannot access.
	ErrNotFound = errors.New("registro não encontrado")

	// ErrForbidden is returned when the actor is authenticated but not
	// allowed to perform the operation.
	ErrForbidden = errors.New("sem permissão para esta operação")

	// ErrInvalidCredentials is returned on bad email/password or when
	// the account is deactivated.
	ErrInvalidCredentials = errors.New("credenciais inválidas")

	// ErrDuplicate is returned on unique constraint conflicts.
	ErrDuplicate = errors.New("registro duplicado")
)

// ValidationError carries a user-facing message for rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps a failure of the underlying file store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("falha de armazenamento em %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// AuditWriteError signals that the audit entry could not be persisted.
// The surrounding transaction is rolled back, so the mutation it would
// have described never happened.
type AuditWriteError struct {
	Err error
}

func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("falha ao registrar auditoria: %v", e.Err)
}

func (e *AuditWriteError) Unwrap() error { return e.Err }
