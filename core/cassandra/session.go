package cassandra

import (
	"fmt"
	"strings"
	"time"

	gocql "github.com/apache/cassandra-gocql-driver/v2"
)

// Connect opens a session bound to the configured keyspace.
func Connect(cfg Config) (*gocql.Session, error) {
	cluster, err := NewCluster(cfg)
	if err != nil {
		return nil, err
	}
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cluster: %w", err)
	}
	return session, nil
}

// NewCluster builds the cluster configuration without dialing.
func NewCluster(cfg Config) (*gocql.ClusterConfig, error) {
	hosts := splitHosts(cfg.Hosts)
	if len(hosts) == 0 {
		return nil, fmt.Errorf("no cassandra hosts configured")
	}
	if cfg.Keyspace == "" {
		return nil, fmt.Errorf("no cassandra keyspace configured")
	}

	var consistency gocql.Consistency
	if err := consistency.UnmarshalText([]byte(strings.ToUpper(cfg.Consistency))); err != nil {
		return nil, fmt.Errorf("invalid consistency %q: %w", cfg.Consistency, err)
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}

	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = consistency
	cluster.Timeout = time.Duration(timeout) * time.Second
	cluster.ConnectTimeout = time.Duration(timeout) * time.Second
	if cfg.Retries > 0 {
		cluster.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: cfg.Retries}
	}
	return cluster, nil
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
