// Package logging provides structured logging for the SMS bridge gateway.
//
// It wraps the standard library's log/slog with:
//   - Configuration-driven format (JSON or text) and level selection
//   - Default service/version attributes on every record
//   - A Default() logger for early startup before config is loaded
//
// Usage:
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("gateway started", "port", cfg.API.Port)
package logging
