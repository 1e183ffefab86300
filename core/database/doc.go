// Package database opens the optional MySQL database holding the schema change history.
//
// Config.DSN renders the driver DSN; Connect opens it through GORM's MySQL
// dialector. Open takes any dialector, which is how tests run against sqlmock.
// The pool is small since the only writer is the reconciliation audit trail.
// When the database is disabled or unreachable, reconciliation still runs and
// only the history is lost.
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logg.Warn("History disabled", zap.Error(err))
//	}
package database
