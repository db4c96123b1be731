// Package types holds the request, response and wire structures shared by
// the relay server, its providers and the client.
//
// Chat:
//   - ChatRequest: one user submission forwarded to the relay
//   - CompletionRequest, CompletionChunk: upstream completions wire format
//
// Research:
//   - ResearchRequest, ResearchContext, WebResult, VideoResult
//
// Accounts:
//   - User, Credentials, Session, AuthRequest, AuthResponse, SettingsRequest
//
// Errors:
//   - UpstreamError: a non-2xx answer from a third-party API
package types
