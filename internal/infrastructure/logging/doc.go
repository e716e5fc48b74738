// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output
//
// Components receive a plain *zap.Logger named after themselves:
//
//	logger := logging.NewDefault()
//	engine := filesystem.New(res, logger.Component("filesystem"))
//	logger.Info("Server starting", zap.String("port", "8000"))
package logging
