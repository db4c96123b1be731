// Package http provides the gin handlers and routing for the relay API.
//
// Endpoints under the API prefix:
//   - Research: POST /research
//   - Chat: POST /chat (plain-text chunked body)
//   - Auth: POST /auth/signup, /auth/login, /auth/logout
//   - Settings: GET and POST /user/settings (bearer token)
//
// Operational endpoints at the root: /, /health, /metrics, /metrics/json.
//
// Any failure before a chat stream starts is answered with a status code and
// {"error": "..."}. Once streaming has begun the body can only end early.
//
// Example Usage:
//
//	handlers := http.NewHandlers(http.Deps{Relay: r, Research: search, Auth: authSvc, Settings: settingsSvc})
//	handlers.Register(router, "/api")
package http
