package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	// ErrDuplicate indicates a unique constraint conflict (e.g. DNI already registered).
	ErrDuplicate = errors.New("duplicate record")
)

// BusinessError carries a rule-violation message safe to render to the user.
type BusinessError struct {
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// NewBusinessError builds a user-facing rule violation.
func NewBusinessError(message string) error {
	return &BusinessError{Message: message}
}

// UserSafeMessage maps an error to a message suitable for rendering.
// Storage-layer details are never exposed.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	var be *BusinessError
	switch {
	case errors.As(err, &be):
		return be.Message
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found."
	case errors.Is(err, ErrDuplicate):
		return "A record with the same identifier already exists."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password."
	default:
		return "The operation could not be completed. Please try again."
	}
}
