package cassandra

import (
	"context"
	"errors"
	"fmt"

	"entity-sync/core/mapping"
	"entity-sync/core/reconcile"

	gocql "github.com/apache/cassandra-gocql-driver/v2"
)

// Transport implements reconcile.Transport on a gocql session.
type Transport struct {
	session  *gocql.Session
	keyspace string
}

// NewTransport creates a transport reading the catalog of keyspace.
func NewTransport(session *gocql.Session, keyspace string) *Transport {
	return &Transport{session: session, keyspace: keyspace}
}

// FetchCatalog returns the live schema of a table or user type, or nil when it does not exist.
// Cancelling ctx aborts the catalog query.
func (t *Transport) FetchCatalog(ctx context.Context, kind mapping.Kind, name string) (*reconcile.CatalogSnapshot, error) {
	switch kind {
	case mapping.Table:
		return t.tableColumns(ctx, name)
	case mapping.UserDefinedType:
		return t.typeFields(ctx, name)
	default:
		return nil, fmt.Errorf("%s %s has no catalog entry", kind, name)
	}
}

func (t *Transport) tableColumns(ctx context.Context, table string) (*reconcile.CatalogSnapshot, error) {
	iter := t.session.Query(`SELECT column_name, type, kind
		FROM system_schema.columns WHERE keyspace_name = ? AND table_name = ?`, t.keyspace, table).IterContext(ctx)

	var (
		cols             []reconcile.CatalogColumn
		colName, colType string
		colKind          string
	)
	for iter.Scan(&colName, &colType, &colKind) {
		cols = append(cols, reconcile.CatalogColumn{Name: colName, Type: colType, Kind: colKind})
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to fetch columns of %s.%s: %w", t.keyspace, table, err)
	}
	return tableSnapshot(table, cols), nil
}

func (t *Transport) typeFields(ctx context.Context, name string) (*reconcile.CatalogSnapshot, error) {
	var fields, types []string
	err := t.session.Query(`SELECT field_names, field_types
		FROM system_schema.types WHERE keyspace_name = ? AND type_name = ?`, t.keyspace, name).
		ScanContext(ctx, &fields, &types)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch type %s.%s: %w", t.keyspace, name, err)
	}
	return typeSnapshot(name, fields, types)
}

// Apply executes a single schema statement, bounded by ctx.
func (t *Transport) Apply(ctx context.Context, statement string) error {
	return t.session.Query(statement).ExecContext(ctx)
}

// tableSnapshot returns nil for a table without columns; the catalog has no rows for missing tables.
func tableSnapshot(table string, cols []reconcile.CatalogColumn) *reconcile.CatalogSnapshot {
	if len(cols) == 0 {
		return nil
	}
	return reconcile.NewCatalogSnapshot(mapping.Table, table, cols...)
}

func typeSnapshot(name string, fields, types []string) (*reconcile.CatalogSnapshot, error) {
	if len(fields) != len(types) {
		return nil, fmt.Errorf("type %s lists %d fields but %d field types", name, len(fields), len(types))
	}
	cols := make([]reconcile.CatalogColumn, len(fields))
	for i := range fields {
		cols[i] = reconcile.CatalogColumn{Name: fields[i], Type: types[i]}
	}
	return reconcile.NewCatalogSnapshot(mapping.UserDefinedType, name, cols...), nil
}
