package errors

import (
	"fmt"
)

// AppError is a structured application error with a stable code. Only
// structural failures travel as AppErrors; arithmetic domain failures are
// absorbed at the likelihood boundary and never reach this package.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError.
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an error with additional context, preserving the code of an
// existing AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	code := CodeInternal
	if appErr, ok := err.(*AppError); ok {
		code = appErr.Code
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if err is an AppError in its chain,
// otherwise "UNKNOWN".
func GetCode(err error) string {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return "UNKNOWN"
}

// Error codes.
const (
	CodeConfigInvalid = "CONFIG_INVALID" // bad CLI/config values, fails before sampling
	CodeInvalidInput  = "INVALID_INPUT"  // malformed observation data
	CodeInitFailed    = "INIT_FAILED"    // no valid initial walker within the retry budget
	CodeIOError       = "IO_ERROR"       // missing data file, unwritable output
	CodeStoreError    = "STORE_ERROR"    // chain persistence failure
	CodeInternal      = "INTERNAL_ERROR"
)

// ConfigInvalid reports a configuration error; these fail fast before any
// sampling starts.
func ConfigInvalid(format string, args ...interface{}) *AppError {
	return New(CodeConfigInvalid, fmt.Sprintf(format, args...))
}

// InvalidInput reports malformed observation data.
func InvalidInput(format string, args ...interface{}) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf(format, args...))
}

// InitFailed reports walker-initialization failure.
func InitFailed(cause error) error {
	return &AppError{Code: CodeInitFailed, Message: "walker initialization failed", Cause: cause}
}

// IOError reports a filesystem failure including the offending path.
func IOError(path string, cause error) error {
	return &AppError{Code: CodeIOError, Message: fmt.Sprintf("i/o failure on %s", path), Cause: cause}
}

// StoreError reports a chain-store failure.
func StoreError(op string, cause error) error {
	return &AppError{Code: CodeStoreError, Message: fmt.Sprintf("chain store %s failed", op), Cause: cause}
}
