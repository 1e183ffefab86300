package mapping

import (
	"fmt"
	"slices"

	"entity-sync/core/datatype"
)

// Resolution is the outcome of resolving one host type.
type Resolution struct {
	// Storage is the column type.
	Storage datatype.DataType
	// Read and Write convert between storage and host forms. Both are nil when
	// values pass through unchanged.
	Read  Converter
	Write Converter
	// Models lists nested user type and tuple models the type references.
	Models []*EntityModel
}

// TypeResolver maps one family of host types to storage types.
type TypeResolver interface {
	// Supports reports whether the resolver handles h.
	Supports(h HostType) bool
	// Resolve maps h, honouring the property annotations.
	Resolve(rc *ResolveContext, h HostType, ann Annotations) (Resolution, error)
}

// ResolveContext carries the property being resolved and gives resolvers access
// to element resolution and nested compilation.
type ResolveContext struct {
	registry *Registry
	entity   string
	property string
}

// Entity returns the name of the entity being compiled.
func (rc *ResolveContext) Entity() string { return rc.entity }

// Property returns the name of the property being resolved.
func (rc *ResolveContext) Property() string { return rc.property }

// Resolve maps an element type without annotations.
func (rc *ResolveContext) Resolve(h HostType) (Resolution, error) {
	return rc.registry.resolve(rc, h, Annotations{})
}

// Compile compiles a nested descriptor through the owning registry.
func (rc *ResolveContext) Compile(d *Descriptor) (*EntityModel, error) {
	return rc.registry.Compile(d)
}

// Unresolved builds an UnresolvedTypeError for the current property.
func (rc *ResolveContext) Unresolved(h HostType, format string, args ...any) error {
	return &UnresolvedTypeError{Entity: rc.entity, Property: rc.property, Type: h, Reason: fmt.Sprintf(format, args...)}
}

func (r *Registry) resolve(rc *ResolveContext, h HostType, ann Annotations) (Resolution, error) {
	if ann.CustomType != "" {
		return Resolution{Storage: datatype.CustomType(ann.CustomType)}, nil
	}
	for _, res := range r.resolvers {
		if res.Supports(h) {
			return res.Resolve(rc, h, ann)
		}
	}
	return Resolution{}, rc.Unresolved(h, "no resolver registered")
}

// DefaultResolvers returns the built-in resolvers in the order they are consulted.
func DefaultResolvers() []TypeResolver {
	return []TypeResolver{
		ScalarResolver{},
		BytesResolver{},
		CollectionResolver{},
		UserTypeResolver{},
		TupleResolver{},
	}
}

// scalarStorage lists the native types allowed per host kind; the first is the default.
var scalarStorage = map[HostKind][]datatype.Name{
	HostString:   {datatype.Text, datatype.Ascii, datatype.Varchar},
	HostInt8:     {datatype.Tinyint},
	HostInt16:    {datatype.Smallint},
	HostInt32:    {datatype.Int},
	HostInt64:    {datatype.Bigint, datatype.Counter},
	HostFloat32:  {datatype.Float},
	HostFloat64:  {datatype.Double},
	HostBool:     {datatype.Boolean},
	HostUUID:     {datatype.UUID, datatype.Timeuuid},
	HostTime:     {datatype.Timestamp, datatype.Timeuuid, datatype.Date},
	HostDuration: {datatype.Bigint},
	HostDecimal:  {datatype.Decimal},
	HostBigInt:   {datatype.Varint},
	HostIP:       {datatype.Inet},
}

// ScalarResolver maps single-valued host types to native column types.
type ScalarResolver struct{}

func (ScalarResolver) Supports(h HostType) bool {
	_, ok := scalarStorage[h.Kind()]
	return ok
}

func (ScalarResolver) Resolve(rc *ResolveContext, h HostType, ann Annotations) (Resolution, error) {
	if ann.Blob {
		return Resolution{}, rc.Unresolved(h, "blob storage only applies to byte sequences")
	}
	allowed := scalarStorage[h.Kind()]
	name := allowed[0]
	if ann.StorageType != "" {
		if !slices.Contains(allowed, ann.StorageType) {
			return Resolution{}, rc.Unresolved(h, "cannot be stored as %s", ann.StorageType)
		}
		name = ann.StorageType
	}

	res := Resolution{Storage: datatype.Scalar(name)}
	switch {
	case h.Kind() == HostTime && name == datatype.Timeuuid:
		res.Write, res.Read = writeTimeUUID, readTimeUUID
	case h.Kind() == HostDuration:
		res.Write, res.Read = writeDuration, readDuration
	case h.Kind() == HostDecimal:
		res.Write, res.Read = writeDecimal, readDecimal
	}
	return res, nil
}

// BytesResolver maps byte sequences to blobs.
type BytesResolver struct{}

func (BytesResolver) Supports(h HostType) bool { return h.Kind() == HostBytes }

func (BytesResolver) Resolve(rc *ResolveContext, h HostType, ann Annotations) (Resolution, error) {
	if ann.StorageType != "" && ann.StorageType != datatype.Blob {
		return Resolution{}, rc.Unresolved(h, "cannot be stored as %s", ann.StorageType)
	}
	if ann.Blob {
		return Resolution{Storage: datatype.Scalar(datatype.Blob)}, nil
	}
	return Resolution{Storage: datatype.Scalar(datatype.Blob), Write: writeBytes, Read: readBytes}, nil
}

// CollectionResolver maps lists, sets and maps, resolving their elements recursively.
type CollectionResolver struct{}

func (CollectionResolver) Supports(h HostType) bool { return h.IsCollection() }

func (CollectionResolver) Resolve(rc *ResolveContext, h HostType, ann Annotations) (Resolution, error) {
	if ann.Blob || ann.StorageType != "" {
		return Resolution{}, rc.Unresolved(h, "collections do not accept storage overrides")
	}
	elemType, ok := h.Elem()
	if !ok {
		return Resolution{}, rc.Unresolved(h, "missing element type")
	}
	elem, err := rc.Resolve(elemType)
	if err != nil {
		return Resolution{}, err
	}

	switch h.Kind() {
	case HostList, HostSet:
		res := Resolution{Models: elem.Models}
		if h.Kind() == HostList {
			res.Storage = datatype.ListOf(elem.Storage)
		} else {
			res.Storage = datatype.SetOf(elem.Storage)
		}
		if elem.Write != nil || elem.Read != nil {
			res.Write = sliceConverter(elem.Write)
			res.Read = sliceConverter(elem.Read)
		}
		return res, nil
	}

	keyType, ok := h.Key()
	if !ok {
		return Resolution{}, rc.Unresolved(h, "missing key type")
	}
	key, err := rc.Resolve(keyType)
	if err != nil {
		return Resolution{}, err
	}
	if keyType.Kind() == HostBytes && key.Write != nil {
		// []byte is not a valid Go map key; blob keys travel as strings
		key.Write, key.Read = writeBlobKey, readBlobKey
	}
	res := Resolution{
		Storage: datatype.MapOf(key.Storage, elem.Storage),
		Models:  append(append([]*EntityModel(nil), key.Models...), elem.Models...),
	}
	switch {
	case keyType.IsStructured():
		res.Write = entriesConverter(key.Write, elem.Write)
		res.Read = entriesConverter(key.Read, elem.Read)
	case key.Write != nil || key.Read != nil || elem.Write != nil || elem.Read != nil:
		res.Write = mapConverter(key.Write, elem.Write)
		res.Read = mapConverter(key.Read, elem.Read)
	}
	return res, nil
}

// UserTypeResolver maps references to user-defined types.
type UserTypeResolver struct{}

func (UserTypeResolver) Supports(h HostType) bool {
	return h.IsStructured() && h.Descriptor().Kind() == UserDefinedType
}

func (UserTypeResolver) Resolve(rc *ResolveContext, h HostType, ann Annotations) (Resolution, error) {
	if ann.Blob || ann.StorageType != "" {
		return Resolution{}, rc.Unresolved(h, "user types do not accept storage overrides")
	}
	m, err := rc.Compile(h.Descriptor())
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{
		Storage: datatype.UserType(m.Name()),
		Write:   udtWriter(m),
		Read:    udtReader(m),
		Models:  []*EntityModel{m},
	}, nil
}

// TupleResolver maps references to tuples.
type TupleResolver struct{}

func (TupleResolver) Supports(h HostType) bool {
	return h.IsStructured() && h.Descriptor().Kind() == Tuple
}

func (TupleResolver) Resolve(rc *ResolveContext, h HostType, ann Annotations) (Resolution, error) {
	if ann.Blob || ann.StorageType != "" {
		return Resolution{}, rc.Unresolved(h, "tuples do not accept storage overrides")
	}
	m, err := rc.Compile(h.Descriptor())
	if err != nil {
		return Resolution{}, err
	}
	elems := make([]datatype.DataType, m.Len())
	for i, p := range m.properties {
		elems[i] = p.storage
	}
	return Resolution{
		Storage: datatype.TupleOf(elems...),
		Write:   tupleWriter(m),
		Read:    tupleReader(m),
		Models:  []*EntityModel{m},
	}, nil
}
