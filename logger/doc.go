// Package logger provides structured logging on top of zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped child loggers. A process-wide logger is available through
// GetGlobalLogger and is safe for concurrent use.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("translate")
//	log.Error("unhandled failure", logger.Fields("source", "database"))
package logger
