// Package logger provides structured logging for foldkit using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers. The engine logs only at debug level and only
// off the synchronous fast path: pool runs, flattening iterator lifecycle,
// and entry-point configuration.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("pool").WithContext(ctx)
//	log.Debug("pool run finished", logger.Fields(logger.FieldLimit, 4))
package logger
