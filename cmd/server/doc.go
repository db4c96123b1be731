// Package main is the entry point for the Reze relay server.
//
// The relay sits between the desktop client and two third-party services:
//
//	Client → Relay → Google Custom Search + YouTube Data API (research)
//	               → OpenRouter chat completions (streamed)
//
// The server provides:
//   - POST /api/research and POST /api/chat
//   - Account signup, login and per-user provider settings
//   - Prometheus metrics and a JSON health endpoint
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Production mode
//	OPENROUTER_API_KEY=sk-or-... ./server -port 5001
//
//	# Development mode (console logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
