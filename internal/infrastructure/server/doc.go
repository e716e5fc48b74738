// Package server assembles the file gateway into a runnable HTTP server.
//
// Server Lifecycle:
//  1. Build the logger from configuration
//  2. Open the user registry and prepare the storage layout
//  3. Open the protected folder registry
//  4. Wire resolver, engine, drive discovery and the operation tracker into a gateway
//  5. Install middleware (recovery, tracing, metrics, CORS, rate limiting)
//  6. Register routes and /metrics
//  7. Serve until Close drains in-flight requests
//
// Example Usage:
//
//	cfg, err := config.Load()
//	srv, err := server.NewServer(cfg)
//	go srv.Run()
//	defer srv.Close()
package server
