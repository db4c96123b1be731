package relay

import "errors"

var (
	// ErrValidation marks a malformed chat request. No upstream call is made.
	ErrValidation = errors.New("invalid chat request")
	// ErrConfiguration marks a request for which no provider credential resolves.
	ErrConfiguration = errors.New("relay not configured")
	// ErrStreamInterrupted marks a failure after the response was committed.
	// The client sees a truncated body and nothing else.
	ErrStreamInterrupted = errors.New("stream interrupted")
)

// requestError carries a caller-facing message while still matching a
// sentinel through errors.Is.
type requestError struct {
	kind error
	msg  string
}

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return e.kind }

func validationError(msg string) error {
	return &requestError{kind: ErrValidation, msg: msg}
}

func configurationError(msg string) error {
	return &requestError{kind: ErrConfiguration, msg: msg}
}
