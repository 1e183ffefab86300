// Package logger builds the zap loggers used across entity-sync.
//
// Level "debug" selects zap's development preset; other levels use the
// production preset. Format chooses json or console encoding. CLI returns the
// console logger commands fall back to when a run fails before configuration
// is available.
//
// WithRayID attaches the request ray id stored by the rayid middleware, so
// every line logged while serving a request can be correlated:
//
//	l := logger.WithRayID(log, c)
//	l.Error("Plan failed", zap.Error(err))
package logger
