package cassandra

// Config holds configuration for the cluster connection.
type Config struct {
	// Hosts is a comma separated list of contact points.
	Hosts string `mapstructure:"hosts" default:"localhost:9042"`
	// Keyspace is the keyspace whose schema is reconciled.
	Keyspace string `mapstructure:"keyspace" default:"app"`
	// Consistency is the consistency level used for every query.
	Consistency string `mapstructure:"consistency" default:"quorum"`
	// TimeoutSeconds bounds connection setup and single queries.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
	// Retries is how many times a failed query is retried.
	Retries int `mapstructure:"retries" default:"3"`
}
