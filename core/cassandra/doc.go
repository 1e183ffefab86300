// Package cassandra connects to the cluster and exposes its schema catalog to
// the reconciliation engine.
//
// Live schema is read from system_schema.columns for tables and from
// system_schema.types for user defined types. Statements are executed as-is
// on a session bound to the configured keyspace.
package cassandra
