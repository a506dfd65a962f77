package repository

import (
	"errors"
	"fmt"
)

// Error constants for the repository layer. ErrNotAuthenticated and ErrInvalidArgument
// are returned before the store is touched.
var (
	ErrNotAuthenticated = RepositoryError("not authenticated")
	ErrInvalidArgument  = RepositoryError("invalid argument")
	// ErrNoDocument is returned by Store implementations when a document does not exist.
	ErrNoDocument       = RepositoryError("no such document")

	// Returned by UserRepository.
	ErrNotFound       = RepositoryError("not found")
	ErrDuplicateEmail = RepositoryError("user with this email already exists")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// FaultCode is the store's native classification of a failure.
type FaultCode string

const (
	CodePermissionDenied  FaultCode = "permission-denied"
	CodeNotFound          FaultCode = "not-found"
	CodeAlreadyExists     FaultCode = "already-exists"
	CodeResourceExhausted FaultCode = "resource-exhausted"
	CodeUnavailable       FaultCode = "unavailable"
	CodeDeadlineExceeded  FaultCode = "deadline-exceeded"
	CodeInvalidDocument   FaultCode = "invalid-document"
	CodeUnknown           FaultCode = "unknown"
)

// StoreFault is any failure surfaced by the backing store. It carries the store's code
// and message so callers can translate it for users.
type StoreFault struct {
	Code    FaultCode
	Message string
	Err     error
}

func (f *StoreFault) Error() string {
	return fmt.Sprintf("store fault (%s): %s", f.Code, f.Message)
}

func (f *StoreFault) Unwrap() error {
	return f.Err
}

// NewFault builds a StoreFault wrapping err; the message defaults to err's text.
func NewFault(code FaultCode, err error) *StoreFault {
	msg := string(code)
	if err != nil {
		msg = err.Error()
	}
	return &StoreFault{Code: code, Message: msg, Err: err}
}

// invalidArgument wraps ErrInvalidArgument with detail.
func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// FaultCodeOf returns the code of the StoreFault in err's chain, if any.
func FaultCodeOf(err error) (FaultCode, bool) {
	var fault *StoreFault
	if errors.As(err, &fault) {
		return fault.Code, true
	}
	return "", false
}
