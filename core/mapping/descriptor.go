package mapping

import (
	"entity-sync/core/datatype"

	"github.com/google/uuid"
)

// Kind is the kind of schema object an entity maps to.
type Kind int

const (
	Table Kind = iota + 1
	UserDefinedType
	Tuple
)

func (k Kind) String() string {
	switch k {
	case Table:
		return "table"
	case UserDefinedType:
		return "type"
	case Tuple:
		return "tuple"
	default:
		return "unknown"
	}
}

// ColumnRole classifies a property within its table.
type ColumnRole int

const (
	Regular ColumnRole = iota
	PartitionKey
	ClusteringColumn
	Static
)

func (r ColumnRole) String() string {
	switch r {
	case PartitionKey:
		return "partition_key"
	case ClusteringColumn:
		return "clustering"
	case Static:
		return "static"
	default:
		return "regular"
	}
}

// rank orders roles: partition keys, then clustering columns, then the rest.
func (r ColumnRole) rank() int {
	switch r {
	case PartitionKey:
		return 0
	case ClusteringColumn:
		return 1
	default:
		return 2
	}
}

// Ordering is the clustering order of a clustering column.
type Ordering int

const (
	Ascending Ordering = iota
	Descending
)

func (o Ordering) String() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

// Annotations adjust how a property's host type is stored.
type Annotations struct {
	// CustomType names a server-side custom type class used verbatim as the storage type.
	CustomType string
	// Blob stores a byte sequence as a plain blob without conversion.
	Blob bool
	// StorageType selects an alternative native type for the host type,
	// e.g. timeuuid for a time.Time or ascii for a string.
	StorageType datatype.Name
}

// PropertyDescriptor declares one property of an entity.
type PropertyDescriptor struct {
	Name        string
	Type        HostType
	Role        ColumnRole
	Ordinal     int
	Ordering    Ordering
	Annotations Annotations
}

// Descriptor is the declared shape of a table, user type or tuple.
// It is immutable once built; its identity keys the compiled model cache.
type Descriptor struct {
	id    uuid.UUID
	kind  Kind
	name  string
	props []PropertyDescriptor
}

// ID returns the descriptor identity.
func (d *Descriptor) ID() uuid.UUID { return d.id }

// Kind returns the kind of schema object described.
func (d *Descriptor) Kind() Kind { return d.kind }

// Name returns the declared name.
func (d *Descriptor) Name() string { return d.name }

// Properties returns a copy of the declared properties in declaration order.
func (d *Descriptor) Properties() []PropertyDescriptor {
	return append([]PropertyDescriptor(nil), d.props...)
}

// PropertyOption customises a property declared through a Builder.
type PropertyOption func(*PropertyDescriptor)

// WithOrdinal sets the property ordinal. Tuple elements are positioned by it.
func WithOrdinal(n int) PropertyOption {
	return func(p *PropertyDescriptor) { p.Ordinal = n }
}

// WithCustomType stores the property as the given custom type class.
func WithCustomType(class string) PropertyOption {
	return func(p *PropertyDescriptor) { p.Annotations.CustomType = class }
}

// AsBlob stores a byte sequence as a blob without conversion.
func AsBlob() PropertyOption {
	return func(p *PropertyDescriptor) { p.Annotations.Blob = true }
}

// WithStorageType selects an alternative native storage type.
func WithStorageType(n datatype.Name) PropertyOption {
	return func(p *PropertyDescriptor) { p.Annotations.StorageType = n }
}

// Builder declares an entity descriptor.
//
//	users := mapping.NewTable("users").
//	    PartitionKey("id", mapping.UUID, 0).
//	    ClusteringColumn("created", mapping.Time, 0, mapping.Descending, mapping.WithStorageType(datatype.Timeuuid)).
//	    Column("email", mapping.String).
//	    Build()
type Builder struct {
	kind  Kind
	name  string
	props []PropertyDescriptor
}

// NewTable starts a table descriptor.
func NewTable(name string) *Builder { return &Builder{kind: Table, name: name} }

// NewUserType starts a user-defined type descriptor.
func NewUserType(name string) *Builder { return &Builder{kind: UserDefinedType, name: name} }

// NewTuple starts a tuple descriptor. Elements are ordered by ordinal.
func NewTuple(name string) *Builder { return &Builder{kind: Tuple, name: name} }

// PartitionKey declares a partition key column at the given ordinal.
func (b *Builder) PartitionKey(name string, t HostType, ordinal int, opts ...PropertyOption) *Builder {
	return b.add(PropertyDescriptor{Name: name, Type: t, Role: PartitionKey, Ordinal: ordinal}, opts)
}

// ClusteringColumn declares a clustering column at the given ordinal.
func (b *Builder) ClusteringColumn(name string, t HostType, ordinal int, ordering Ordering, opts ...PropertyOption) *Builder {
	return b.add(PropertyDescriptor{Name: name, Type: t, Role: ClusteringColumn, Ordinal: ordinal, Ordering: ordering}, opts)
}

// Column declares a regular column, user type field or tuple element.
func (b *Builder) Column(name string, t HostType, opts ...PropertyOption) *Builder {
	return b.add(PropertyDescriptor{Name: name, Type: t, Role: Regular}, opts)
}

// Static declares a static column.
func (b *Builder) Static(name string, t HostType, opts ...PropertyOption) *Builder {
	return b.add(PropertyDescriptor{Name: name, Type: t, Role: Static}, opts)
}

// Property declares a fully specified property.
func (b *Builder) Property(p PropertyDescriptor) *Builder {
	b.props = append(b.props, p)
	return b
}

func (b *Builder) add(p PropertyDescriptor, opts []PropertyOption) *Builder {
	for _, opt := range opts {
		opt(&p)
	}
	b.props = append(b.props, p)
	return b
}

// Build returns an immutable descriptor with a fresh identity.
// Validation happens when the descriptor is compiled.
func (b *Builder) Build() *Descriptor {
	return &Descriptor{
		id:    uuid.New(),
		kind:  b.kind,
		name:  b.name,
		props: append([]PropertyDescriptor(nil), b.props...),
	}
}
