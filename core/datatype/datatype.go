package datatype

import (
	"regexp"
	"strings"
)

// Name identifies a storage column type.
type Name string

const (
	Ascii     Name = "ascii"
	Bigint    Name = "bigint"
	Blob      Name = "blob"
	Boolean   Name = "boolean"
	Counter   Name = "counter"
	Date      Name = "date"
	Decimal   Name = "decimal"
	Double    Name = "double"
	Duration  Name = "duration"
	Float     Name = "float"
	Inet      Name = "inet"
	Int       Name = "int"
	Smallint  Name = "smallint"
	Text      Name = "text"
	Time      Name = "time"
	Timestamp Name = "timestamp"
	Timeuuid  Name = "timeuuid"
	Tinyint   Name = "tinyint"
	UUID      Name = "uuid"
	Varchar   Name = "varchar"
	Varint    Name = "varint"

	List  Name = "list"
	Set   Name = "set"
	Map   Name = "map"
	Tuple Name = "tuple"

	// UserDefined marks a reference to a user-defined type by name.
	UserDefined Name = "udt"
	// Custom marks a server-side custom type identified by its class name.
	Custom Name = "custom"
)

var scalars = map[Name]struct{}{
	Ascii: {}, Bigint: {}, Blob: {}, Boolean: {}, Counter: {}, Date: {}, Decimal: {},
	Double: {}, Duration: {}, Float: {}, Inet: {}, Int: {}, Smallint: {}, Text: {},
	Time: {}, Timestamp: {}, Timeuuid: {}, Tinyint: {}, UUID: {}, Varchar: {}, Varint: {},
}

// IsScalar reports whether n names a non-parameterised native type.
func IsScalar(n Name) bool {
	_, ok := scalars[n]
	return ok
}

// DataType is a storage column type as understood by the database.
type DataType struct {
	// Name is the type family.
	Name Name
	// Args holds element types for collections and tuples.
	Args []DataType
	// TypeName is the user type name or the custom class name.
	TypeName string
}

// Scalar returns the native type n.
func Scalar(n Name) DataType { return DataType{Name: n} }

// ListOf returns list<elem>.
func ListOf(elem DataType) DataType { return DataType{Name: List, Args: []DataType{elem}} }

// SetOf returns set<elem>.
func SetOf(elem DataType) DataType { return DataType{Name: Set, Args: []DataType{elem}} }

// MapOf returns map<key, value>.
func MapOf(key, value DataType) DataType {
	return DataType{Name: Map, Args: []DataType{key, value}}
}

// TupleOf returns tuple<elems...>.
func TupleOf(elems ...DataType) DataType {
	return DataType{Name: Tuple, Args: append([]DataType(nil), elems...)}
}

// UserType returns a reference to the user-defined type name.
func UserType(name string) DataType {
	return DataType{Name: UserDefined, TypeName: strings.ToLower(name)}
}

// CustomType returns the custom type implemented by class. The class name is kept verbatim.
func CustomType(class string) DataType {
	return DataType{Name: Custom, TypeName: class}
}

// IsCollection reports whether t is a list, set or map.
func (t DataType) IsCollection() bool {
	return t.Name == List || t.Name == Set || t.Name == Map
}

// IsZero reports whether t is unset.
func (t DataType) IsZero() bool { return t.Name == "" }

// String renders t as a CQL type. User types are always frozen; tuples and
// collections are frozen when nested inside another type.
func (t DataType) String() string {
	return t.render(true)
}

func (t DataType) render(top bool) string {
	switch t.Name {
	case UserDefined:
		return "frozen<" + Identifier(t.TypeName) + ">"
	case Custom:
		return "'" + strings.ReplaceAll(t.TypeName, "'", "''") + "'"
	case List, Set, Map, Tuple:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.render(false)
		}
		s := string(t.Name) + "<" + strings.Join(parts, ", ") + ">"
		if !top {
			return "frozen<" + s + ">"
		}
		return s
	default:
		return string(t.Name)
	}
}

// Equal compares two types structurally. Freezing is ignored and varchar is
// treated as text.
func (t DataType) Equal(o DataType) bool {
	if canonical(t.Name) != canonical(o.Name) {
		return false
	}
	switch t.Name {
	case UserDefined:
		if !strings.EqualFold(t.TypeName, o.TypeName) {
			return false
		}
	case Custom:
		if t.TypeName != o.TypeName {
			return false
		}
	}
	if len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// References returns the user type names t depends on, in order of appearance.
func (t DataType) References() []string {
	var out []string
	var walk func(DataType)
	walk = func(d DataType) {
		if d.Name == UserDefined {
			out = append(out, d.TypeName)
		}
		for _, a := range d.Args {
			walk(a)
		}
	}
	walk(t)
	return out
}

func canonical(n Name) Name {
	if n == Varchar {
		return Text
	}
	return n
}

var plainIdent = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// reserved holds the CQL keywords that cannot appear unquoted as a name.
var reserved = map[string]struct{}{
	"add": {}, "allow": {}, "alter": {}, "and": {}, "apply": {}, "asc": {}, "authorize": {},
	"batch": {}, "begin": {}, "by": {}, "columnfamily": {}, "create": {}, "default": {},
	"delete": {}, "desc": {}, "describe": {}, "drop": {}, "entries": {}, "execute": {},
	"from": {}, "full": {}, "grant": {}, "if": {}, "in": {}, "index": {}, "infinity": {},
	"insert": {}, "into": {}, "is": {}, "keyspace": {}, "limit": {}, "materialized": {},
	"mbean": {}, "mbeans": {}, "modify": {}, "nan": {}, "norecursive": {}, "not": {},
	"null": {}, "of": {}, "on": {}, "or": {}, "order": {}, "primary": {}, "rename": {},
	"replace": {}, "revoke": {}, "schema": {}, "select": {}, "set": {}, "table": {}, "to": {},
	"token": {}, "truncate": {}, "unlogged": {}, "unset": {}, "update": {}, "use": {},
	"using": {}, "view": {}, "where": {}, "with": {},
}

// Identifier renders a lower-case name, quoting it when it is not a plain
// identifier or is a reserved keyword.
func Identifier(name string) string {
	name = strings.ToLower(name)
	if _, kw := reserved[name]; !kw && plainIdent.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
