// Package client talks to the relay server the way the desktop UI does.
//
// APIClient wraps the HTTP endpoints. Session tracks the signed-in user and
// persists it through a SessionStore. Assistant submits chat messages,
// optionally researching first, and renders the streamed answer into an
// append-only list of blocks observed by a View.
package client
