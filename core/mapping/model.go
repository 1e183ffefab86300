package mapping

import (
	"strings"

	"entity-sync/core/datatype"
)

// Record is the host-side value of a user type or tuple, keyed by property name.
type Record map[string]any

// Converter maps a single value between its host and storage forms.
// Converters are pure and safe for concurrent use. A nil input yields nil.
type Converter func(any) (any, error)

// EntityModel is the compiled, immutable form of a Descriptor.
type EntityModel struct {
	descriptor *Descriptor
	kind       Kind
	name       string
	properties []*PropertyModel
	byName     map[string]*PropertyModel
}

// Descriptor returns the descriptor the model was compiled from.
func (m *EntityModel) Descriptor() *Descriptor { return m.descriptor }

// Kind returns the kind of schema object.
func (m *EntityModel) Kind() Kind { return m.kind }

// Name returns the lower-cased table or type name.
func (m *EntityModel) Name() string { return m.name }

// Len returns the number of properties.
func (m *EntityModel) Len() int { return len(m.properties) }

// Properties returns the properties in model order: partition keys, clustering
// columns, then regular and static columns.
func (m *EntityModel) Properties() []*PropertyModel {
	return append([]*PropertyModel(nil), m.properties...)
}

// PropertyAt returns the property at index i of the model order.
func (m *EntityModel) PropertyAt(i int) *PropertyModel { return m.properties[i] }

// Property finds a property by name, ignoring case.
func (m *EntityModel) Property(name string) (*PropertyModel, bool) {
	p, ok := m.byName[strings.ToLower(name)]
	return p, ok
}

// PartitionKeys returns the partition key properties by ordinal.
func (m *EntityModel) PartitionKeys() []*PropertyModel { return m.withRole(PartitionKey) }

// ClusteringColumns returns the clustering properties by ordinal.
func (m *EntityModel) ClusteringColumns() []*PropertyModel { return m.withRole(ClusteringColumn) }

func (m *EntityModel) withRole(role ColumnRole) []*PropertyModel {
	var out []*PropertyModel
	for _, p := range m.properties {
		if p.role == role {
			out = append(out, p)
		}
	}
	return out
}

// Dependencies returns the nested models referenced by any property, in model order.
func (m *EntityModel) Dependencies() []*EntityModel {
	seen := make(map[*EntityModel]struct{})
	var out []*EntityModel
	for _, p := range m.properties {
		for _, dep := range p.refs {
			if _, ok := seen[dep]; ok {
				continue
			}
			seen[dep] = struct{}{}
			out = append(out, dep)
		}
	}
	return out
}

// PropertyModel is one compiled property.
type PropertyModel struct {
	name     string
	column   string
	index    int
	role     ColumnRole
	ordinal  int
	ordering Ordering
	declared HostType
	storage  datatype.DataType
	read     Converter
	write    Converter
	nested   *EntityModel
	refs     []*EntityModel
}

// Name returns the declared property name.
func (p *PropertyModel) Name() string { return p.name }

// ColumnName returns the lower-cased column or field name.
func (p *PropertyModel) ColumnName() string { return p.column }

// Index returns the position of the property in its model.
func (p *PropertyModel) Index() int { return p.index }

// Role returns the column role.
func (p *PropertyModel) Role() ColumnRole { return p.role }

// Ordinal returns the declared ordinal.
func (p *PropertyModel) Ordinal() int { return p.ordinal }

// Ordering returns the clustering order.
func (p *PropertyModel) Ordering() Ordering { return p.ordering }

// DeclaredType returns the host type.
func (p *PropertyModel) DeclaredType() HostType { return p.declared }

// StorageType returns the resolved column type.
func (p *PropertyModel) StorageType() datatype.DataType { return p.storage }

// ReadConverter returns the storage to host converter, or nil when values pass through.
func (p *PropertyModel) ReadConverter() Converter { return p.read }

// WriteConverter returns the host to storage converter, or nil when values pass through.
func (p *PropertyModel) WriteConverter() Converter { return p.write }

// Nested returns the model of a directly referenced user type or tuple.
func (p *PropertyModel) Nested() *EntityModel { return p.nested }

// Read converts a storage value to its host form.
func (p *PropertyModel) Read(v any) (any, error) {
	if p.read == nil || v == nil {
		return v, nil
	}
	return p.read(v)
}

// Write converts a host value to its storage form.
func (p *PropertyModel) Write(v any) (any, error) {
	if p.write == nil || v == nil {
		return v, nil
	}
	return p.write(v)
}
