// Package config assembles the entity-sync configuration.
//
// Every field declares its key and default through `mapstructure` and `default`
// struct tags. Values are layered with Viper: tag defaults, then an optional
// entity-sync.yaml in the config directory, then an optional .env file, then the
// process environment. Nested keys map to upper-cased variables joined by
// underscores, so schema.drop_removed_columns is SCHEMA_DROP_REMOVED_COLUMNS.
//
// # Sections
//
//   - Server: HTTP port, API key
//   - Log: level and format
//   - Cassandra: contact points, keyspace, consistency, timeouts
//   - Database: optional MySQL store for the schema change history
//   - Storage: optional S3/MinIO bucket for remediation scripts
//   - Schema: entity file, startup policy, drop and logging switches
//
// Validate catches settings that cannot work before any connection is made.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err == nil {
//	    err = cfg.Validate()
//	}
package config
