// Package main is the entry point for the panelfs file gateway.
//
// The server exposes a permission-scoped view of one storage root plus any
// mounted external volumes to authenticated users over HTTP.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Production mode
//	JWT_SECRET=... ./server -port 8000 -root /srv/files
//
//	# Development mode (colored logs, debug level)
//	AUTH_TRUST_HEADER=true ./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
