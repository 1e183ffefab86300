package reconcile

import (
	"fmt"
	"strings"

	"entity-sync/core/datatype"
	"entity-sync/core/mapping"
)

// CreateStatement renders the CREATE statement for a table or user type.
func CreateStatement(m *mapping.EntityModel) (string, error) {
	switch m.Kind() {
	case mapping.Table:
		return createTable(m), nil
	case mapping.UserDefinedType:
		return createType(m), nil
	default:
		return "", fmt.Errorf("%s %s has no schema of its own", m.Kind(), m.Name())
	}
}

func createTable(m *mapping.EntityModel) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(datatype.Identifier(m.Name()))
	b.WriteString(" (")
	for _, p := range m.Properties() {
		b.WriteString(columnDefinition(p))
		b.WriteString(", ")
	}

	pks := columnNames(m.PartitionKeys())
	cks := columnNames(m.ClusteringColumns())
	b.WriteString("PRIMARY KEY (")
	if len(pks) == 1 {
		b.WriteString(pks[0])
	} else {
		b.WriteString("(" + strings.Join(pks, ", ") + ")")
	}
	for _, ck := range cks {
		b.WriteString(", " + ck)
	}
	b.WriteString("))")

	if clustering := m.ClusteringColumns(); len(clustering) > 0 {
		order := make([]string, len(clustering))
		for i, p := range clustering {
			order[i] = datatype.Identifier(p.ColumnName()) + " " + p.Ordering().String()
		}
		b.WriteString(" WITH CLUSTERING ORDER BY (" + strings.Join(order, ", ") + ")")
	}
	b.WriteString(";")
	return b.String()
}

func createType(m *mapping.EntityModel) string {
	fields := make([]string, 0, m.Len())
	for _, p := range m.Properties() {
		fields = append(fields, datatype.Identifier(p.ColumnName())+" "+p.StorageType().String())
	}
	return fmt.Sprintf("CREATE TYPE %s (%s);", datatype.Identifier(m.Name()), strings.Join(fields, ", "))
}

func columnDefinition(p *mapping.PropertyModel) string {
	def := datatype.Identifier(p.ColumnName()) + " " + p.StorageType().String()
	if p.Role() == mapping.Static {
		def += " static"
	}
	return def
}

func columnNames(props []*mapping.PropertyModel) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = datatype.Identifier(p.ColumnName())
	}
	return out
}

// AddStatement renders the ALTER statement adding p.
func AddStatement(m *mapping.EntityModel, p *mapping.PropertyModel) string {
	if m.Kind() == mapping.UserDefinedType {
		return fmt.Sprintf("ALTER TYPE %s ADD %s %s;", datatype.Identifier(m.Name()), datatype.Identifier(p.ColumnName()), p.StorageType())
	}
	return fmt.Sprintf("ALTER TABLE %s ADD %s;", datatype.Identifier(m.Name()), columnDefinition(p))
}

// DropColumnStatement renders the ALTER statement dropping a table column.
func DropColumnStatement(m *mapping.EntityModel, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP %s;", datatype.Identifier(m.Name()), datatype.Identifier(column))
}

// DropStatement renders the statement removing a table or user type.
func DropStatement(m *mapping.EntityModel) (string, error) {
	switch m.Kind() {
	case mapping.Table:
		return fmt.Sprintf("DROP TABLE IF EXISTS %s;", datatype.Identifier(m.Name())), nil
	case mapping.UserDefinedType:
		return fmt.Sprintf("DROP TYPE IF EXISTS %s;", datatype.Identifier(m.Name())), nil
	default:
		return "", fmt.Errorf("%s %s has no schema of its own", m.Kind(), m.Name())
	}
}

// AlterStatements renders the statements applying the adds and, when enabled,
// the drops of diff. Adds follow model order; drops follow column name order.
// User type fields cannot be dropped and are left out.
func AlterStatements(m *mapping.EntityModel, diff SchemaDiff, opts Options) []string {
	var out []string
	for _, c := range diff.Adds() {
		out = append(out, AddStatement(m, c.Property))
	}
	if opts.DropRemovedColumns && m.Kind() == mapping.Table {
		for _, c := range diff.Drops() {
			out = append(out, DropColumnStatement(m, c.Column))
		}
	}
	return out
}
