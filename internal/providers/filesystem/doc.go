// Package filesystem executes file operations against resolved locations.
//
// This package is organized into specialized modules:
//   - basic: stat, stream, read, write, upload, delete
//   - directory: list, create, ensure
//   - metadata: details panel (sniffed MIME, recursive size)
//   - operations: rename, move, copy
//   - archives: zip create and extract
//
// All operations:
//   - Take locations already authorized by the caller
//   - Re-check containment of any path they derive from user input
//   - Return *vfserr.Error failures
//
// Example Usage:
//
//	engine := filesystem.New(resolver, logger)
//	entries, err := engine.List(resolver.Resolve("/shared"))
package filesystem
