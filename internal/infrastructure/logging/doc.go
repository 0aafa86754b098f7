// Package logging builds the slog pipeline shared by every padlink
// subsystem.
//
// New constructs a logger from the logging section of config.yaml:
// level picks the filter threshold (debug, info, warn, error), format
// selects the JSON or text handler, and output chooses stdout or
// stderr. Every record carries service and version fields, and each
// subsystem tags its records with a component field:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 8080)
//	logger.Component("bridge").Info("port opened", "port", "/dev/ttyUSB0")
//
// Secrets, tokens and passwords stay out of log records; log a short
// prefix when a key must be identified:
//
//	logger.Info("API key used", "key_prefix", key[:6]+"...")
package logging
