// Package middleware holds the gin middleware shared by the HTTP routes:
// CORS, per-IP rate limiting and bearer-token authentication.
package middleware
