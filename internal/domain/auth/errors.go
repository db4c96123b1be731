package auth

import "errors"

var (
	// ErrValidation marks a missing or malformed username or password
	ErrValidation = errors.New("invalid auth request")
	// ErrUserExists is returned by Signup for a taken username
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned by Login for any mismatch
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionExpired is returned for unknown, revoked or expired tokens
	ErrSessionExpired = errors.New("session expired")
)

// requestError carries the message shown to the caller while matching a
// sentinel through errors.Is.
type requestError struct {
	kind error
	msg  string
}

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return e.kind }

var (
	errMissingFields = &requestError{kind: ErrValidation, msg: "Username and password are required"}
	errUserExists    = &requestError{kind: ErrUserExists, msg: "User already exists"}
	errBadLogin      = &requestError{kind: ErrInvalidCredentials, msg: "Invalid username or password"}
	errNoSession     = &requestError{kind: ErrSessionExpired, msg: "Session expired or invalid"}
)

func validationError(err error) error {
	return &requestError{kind: ErrValidation, msg: err.Error()}
}
