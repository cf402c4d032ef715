package license

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized reason a verification could not complete.
type ErrorCategory string

const (
	ErrorTimeout     ErrorCategory = "timeout"
	ErrorOutage      ErrorCategory = "outage"
	ErrorBadResponse ErrorCategory = "bad_response"
)

// VerificationError means the verdict is unknown, not that the code is bad.
// Retrying with the same code may succeed.
type VerificationError struct {
	Category ErrorCategory
	City     string
	Message  string
	Err      error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("licence check %s [%s]: %s: %v", e.City, e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("licence check %s [%s]: %s", e.City, e.Category, e.Message)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// Retryable is always true; it exists so callers can test for it without
// importing this package's concrete type.
func (e *VerificationError) Retryable() bool { return true }

// IsVerificationError reports whether err is a *VerificationError.
func IsVerificationError(err error) bool {
	var ve *VerificationError
	return errors.As(err, &ve)
}
