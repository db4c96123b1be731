package search

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrValidation marks a research request without a usable query
	ErrValidation = errors.New("invalid research request")
	// ErrConfiguration marks a request for which no search credential resolves
	ErrConfiguration = errors.New("research not configured")
	// ErrResearchFailed marks any provider failure. No partial context is returned.
	ErrResearchFailed = errors.New("research failed")
)

type requestError struct {
	kind error
	msg  string
}

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return e.kind }

// stripURL drops the request URL from a transport error. Search URLs carry
// the API key as a query parameter.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
