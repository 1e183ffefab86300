//go:build integration

package cassandra

import (
	"context"
	"os"
	"testing"

	"entity-sync/core/mapping"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportAgainstCluster(t *testing.T) {
	hosts := os.Getenv("CASSANDRA_HOSTS")
	if hosts == "" {
		t.Skip("CASSANDRA_HOSTS not set")
	}
	cfg := Config{Hosts: hosts, Keyspace: "system_schema", Consistency: "one", TimeoutSeconds: 10}
	session, err := Connect(cfg)
	require.NoError(t, err)
	defer session.Close()

	tr := NewTransport(session, cfg.Keyspace)
	snap, err := tr.FetchCatalog(context.Background(), mapping.Table, "columns")
	require.NoError(t, err)
	require.NotNil(t, snap)
	col, ok := snap.Column("column_name")
	require.True(t, ok)
	assert.Equal(t, "text", col.Type)

	missing, err := tr.FetchCatalog(context.Background(), mapping.UserDefinedType, "no_such_type")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTransportHonoursContext(t *testing.T) {
	hosts := os.Getenv("CASSANDRA_HOSTS")
	if hosts == "" {
		t.Skip("CASSANDRA_HOSTS not set")
	}
	cfg := Config{Hosts: hosts, Keyspace: "system_schema", Consistency: "one", TimeoutSeconds: 10}
	session, err := Connect(cfg)
	require.NoError(t, err)
	defer session.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := NewTransport(session, cfg.Keyspace)
	t.Run("Table Catalog", func(t *testing.T) {
		_, err := tr.FetchCatalog(ctx, mapping.Table, "columns")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Type Catalog", func(t *testing.T) {
		_, err := tr.FetchCatalog(ctx, mapping.UserDefinedType, "no_such_type")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Apply", func(t *testing.T) {
		err := tr.Apply(ctx, "DROP TABLE IF EXISTS entity_sync_missing")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
