// Package logger provides structured logging for widgetkit using zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers. Every engine package logs through a named
// logger obtained with Get:
//
//	log := logger.Get("dispatch")
//	log.Debug("dispatched", logger.Fields(logger.FieldInstanceID, id, logger.FieldOperation, "open"))
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
package logger
