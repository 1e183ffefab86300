// Package history keeps an audit trail of the schema statements applied by the
// reconciliation engine.
//
// Entries are stored through gorm in the schema_changes table. Keys are version 1
// UUIDs carrying the application time, but their text form does not sort by it;
// List orders by applied_at.
package history
