package mapping

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"entity-sync/core/datatype"

	"gopkg.in/yaml.v3"
)

type descriptorFile struct {
	Entities []entityDoc `yaml:"entities"`
}

type entityDoc struct {
	Name       string        `yaml:"name"`
	Kind       string        `yaml:"kind"`
	Properties []propertyDoc `yaml:"properties"`
}

type propertyDoc struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Role    string `yaml:"role"`
	Ordinal int    `yaml:"ordinal"`
	Order   string `yaml:"order"`
	Storage string `yaml:"storage"`
	Custom  string `yaml:"custom"`
	Blob    bool   `yaml:"blob"`
}

var hostScalars = map[string]HostType{
	"string":   String,
	"text":     String,
	"int8":     Int8,
	"int16":    Int16,
	"int32":    Int32,
	"int":      Int32,
	"int64":    Int64,
	"long":     Int64,
	"float32":  Float32,
	"float64":  Float64,
	"double":   Float64,
	"bool":     Bool,
	"boolean":  Bool,
	"bytes":    Bytes,
	"uuid":     UUID,
	"time":     Time,
	"duration": Duration,
	"decimal":  Decimal,
	"bigint":   BigInt,
	"ip":       IP,
}

// LoadDescriptorFile reads entity descriptors from a YAML file.
func LoadDescriptorFile(path string) ([]*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open entities file: %w", err)
	}
	defer f.Close()
	return LoadDescriptors(f)
}

// LoadDescriptors reads entity descriptors from YAML:
//
//	entities:
//	  - name: address
//	    kind: type
//	    properties:
//	      - {name: street, type: string}
//	  - name: users
//	    kind: table
//	    properties:
//	      - {name: id, type: uuid, role: partition_key}
//	      - {name: addresses, type: "map<string, address>"}
//
// Property types may name other entities of the same file. Descriptors are
// returned in file order.
func LoadDescriptors(r io.Reader) ([]*Descriptor, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file descriptorFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode entities: %w", err)
	}

	docs := make(map[string]*entityDoc, len(file.Entities))
	for i := range file.Entities {
		e := &file.Entities[i]
		key := strings.ToLower(e.Name)
		if key == "" {
			return nil, &MappingError{Entity: "<unnamed>", Reason: fmt.Sprintf("entity %d has no name", i)}
		}
		if _, dup := docs[key]; dup {
			return nil, mappingErrorf(key, "", "declared more than once")
		}
		docs[key] = e
	}

	l := &loader{docs: docs, built: make(map[string]*Descriptor), visiting: make(map[string]bool)}
	out := make([]*Descriptor, 0, len(file.Entities))
	for _, e := range file.Entities {
		d, err := l.descriptor(strings.ToLower(e.Name))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

type loader struct {
	docs     map[string]*entityDoc
	built    map[string]*Descriptor
	visiting map[string]bool
}

func (l *loader) descriptor(name string) (*Descriptor, error) {
	if d, ok := l.built[name]; ok {
		return d, nil
	}
	if l.visiting[name] {
		return nil, mappingErrorf(name, "", "cyclic type reference")
	}
	l.visiting[name] = true
	defer delete(l.visiting, name)

	doc := l.docs[name]
	var b *Builder
	switch strings.ToLower(doc.Kind) {
	case "", "table":
		b = NewTable(doc.Name)
	case "type", "udt":
		b = NewUserType(doc.Name)
	case "tuple":
		b = NewTuple(doc.Name)
	default:
		return nil, mappingErrorf(name, "", "unknown kind %q", doc.Kind)
	}

	for _, pd := range doc.Properties {
		p, err := l.property(name, pd)
		if err != nil {
			return nil, err
		}
		b.Property(p)
	}

	d := b.Build()
	l.built[name] = d
	return d, nil
}

func (l *loader) property(entity string, pd propertyDoc) (PropertyDescriptor, error) {
	expr, err := datatype.ParseExpr(pd.Type)
	if err != nil {
		return PropertyDescriptor{}, mappingErrorf(entity, pd.Name, "%v", err)
	}
	host, err := l.hostType(entity, pd.Name, expr)
	if err != nil {
		return PropertyDescriptor{}, err
	}

	p := PropertyDescriptor{
		Name:    pd.Name,
		Type:    host,
		Ordinal: pd.Ordinal,
		Annotations: Annotations{
			CustomType:  pd.Custom,
			Blob:        pd.Blob,
			StorageType: datatype.Name(strings.ToLower(pd.Storage)),
		},
	}

	switch strings.ToLower(pd.Role) {
	case "", "regular", "column":
		p.Role = Regular
	case "partition_key", "partition":
		p.Role = PartitionKey
	case "clustering", "clustering_column":
		p.Role = ClusteringColumn
	case "static":
		p.Role = Static
	default:
		return PropertyDescriptor{}, mappingErrorf(entity, pd.Name, "unknown role %q", pd.Role)
	}

	switch strings.ToLower(pd.Order) {
	case "", "asc":
		p.Ordering = Ascending
	case "desc":
		p.Ordering = Descending
	default:
		return PropertyDescriptor{}, mappingErrorf(entity, pd.Name, "unknown order %q", pd.Order)
	}
	return p, nil
}

func (l *loader) hostType(entity, property string, e *datatype.Expr) (HostType, error) {
	name := strings.ToLower(e.Name)
	args := make([]HostType, len(e.Args))
	for i, a := range e.Args {
		h, err := l.hostType(entity, property, a)
		if err != nil {
			return HostType{}, err
		}
		args[i] = h
	}

	switch name {
	case "list", "set":
		if len(args) != 1 {
			return HostType{}, mappingErrorf(entity, property, "%s takes one type argument", name)
		}
		if name == "list" {
			return ListOf(args[0]), nil
		}
		return SetOf(args[0]), nil
	case "map":
		if len(args) != 2 {
			return HostType{}, mappingErrorf(entity, property, "map takes two type arguments")
		}
		return MapOf(args[0], args[1]), nil
	}

	if len(args) > 0 {
		return HostType{}, mappingErrorf(entity, property, "type %s does not take arguments", name)
	}
	if h, ok := hostScalars[name]; ok {
		return h, nil
	}
	if _, ok := l.docs[name]; ok {
		d, err := l.descriptor(name)
		if err != nil {
			return HostType{}, err
		}
		return Ref(d), nil
	}
	return HostType{}, mappingErrorf(entity, property, "unknown type %q", e.Name)
}
