// Package http exposes the file gateway as a JSON REST API using the Gin framework.
//
// Endpoints:
//   - Health: /health
//   - Auth: POST /api/auth/login
//   - Files: /api/files (GET list|download|view|details|search, POST actions and uploads, DELETE)
//   - Bulk: /api/files/delete, /api/files/copy, /api/files/move
//   - Folders: /api/folders, /api/folders/config, /api/folders/check
//   - System: /api/drives, /api/operations, /api/operations/:id
//
// Gateway failures map onto statuses by kind: unauthorized and protected 403,
// invalid path 400, not found 404, already exists 409, everything else 500.
// A request without an identity never reaches a handler; the identity
// middleware answers 401.
//
// Example Usage:
//
//	handlers := http.NewHandlers(gw, userStore, http.Options{Identity: idCfg}, logger)
//	handlers.Register(router, middleware.Identity(idCfg, logger))
package http
