package types

import "fmt"

// UpstreamError is a non-2xx response from a third-party API received
// before any of its body was relayed.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}
