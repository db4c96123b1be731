// Package server wires the relay together and runs it.
//
// NewServer builds every component from a config.Config: storage drivers,
// the OpenRouter and search clients, the relay, auth and settings services,
// and a gin router with recovery, tracing, metrics, CORS and rate limiting.
// Run serves until its context ends and then drains for up to ten seconds.
package server
