package mapping

import (
	"math/big"
	"net"
	"reflect"
	"time"

	"entity-sync/core/datatype"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HostKind classifies the Go-side type of a property.
type HostKind int

const (
	HostString HostKind = iota + 1
	HostInt8
	HostInt16
	HostInt32
	HostInt64
	HostFloat32
	HostFloat64
	HostBool
	HostBytes
	HostUUID
	HostTime
	HostDuration
	HostDecimal
	HostBigInt
	HostIP
	HostList
	HostSet
	HostMap
	HostRef
)

var hostKindNames = map[HostKind]string{
	HostString:   "string",
	HostInt8:     "int8",
	HostInt16:    "int16",
	HostInt32:    "int32",
	HostInt64:    "int64",
	HostFloat32:  "float32",
	HostFloat64:  "float64",
	HostBool:     "bool",
	HostBytes:    "bytes",
	HostUUID:     "uuid",
	HostTime:     "time",
	HostDuration: "duration",
	HostDecimal:  "decimal",
	HostBigInt:   "bigint",
	HostIP:       "ip",
	HostList:     "list",
	HostSet:      "set",
	HostMap:      "map",
	HostRef:      "ref",
}

func (k HostKind) String() string {
	if n, ok := hostKindNames[k]; ok {
		return n
	}
	return "unknown"
}

// HostType is the declared Go-side type of a property.
type HostType struct {
	kind HostKind
	key  *HostType
	elem *HostType
	ref  *Descriptor
}

// Scalar host types.
var (
	String   = HostType{kind: HostString}
	Int8     = HostType{kind: HostInt8}
	Int16    = HostType{kind: HostInt16}
	Int32    = HostType{kind: HostInt32}
	Int64    = HostType{kind: HostInt64}
	Float32  = HostType{kind: HostFloat32}
	Float64  = HostType{kind: HostFloat64}
	Bool     = HostType{kind: HostBool}
	Bytes    = HostType{kind: HostBytes}
	UUID     = HostType{kind: HostUUID}
	Time     = HostType{kind: HostTime}
	Duration = HostType{kind: HostDuration}
	Decimal  = HostType{kind: HostDecimal}
	BigInt   = HostType{kind: HostBigInt}
	IP       = HostType{kind: HostIP}
)

// ListOf declares a list of elem.
func ListOf(elem HostType) HostType { return HostType{kind: HostList, elem: &elem} }

// SetOf declares a set of elem.
func SetOf(elem HostType) HostType { return HostType{kind: HostSet, elem: &elem} }

// MapOf declares a map from key to value.
func MapOf(key, value HostType) HostType {
	return HostType{kind: HostMap, key: &key, elem: &value}
}

// Ref declares a nested user type or tuple described by d.
func Ref(d *Descriptor) HostType { return HostType{kind: HostRef, ref: d} }

// Kind returns the host type family.
func (h HostType) Kind() HostKind { return h.kind }

// Elem returns the element type of a list or set, or the value type of a map.
func (h HostType) Elem() (HostType, bool) {
	if h.elem == nil {
		return HostType{}, false
	}
	return *h.elem, true
}

// Key returns the key type of a map.
func (h HostType) Key() (HostType, bool) {
	if h.key == nil {
		return HostType{}, false
	}
	return *h.key, true
}

// Descriptor returns the referenced descriptor of a Ref type.
func (h HostType) Descriptor() *Descriptor { return h.ref }

// IsCollection reports whether h is a list, set or map.
func (h HostType) IsCollection() bool {
	return h.kind == HostList || h.kind == HostSet || h.kind == HostMap
}

// IsStructured reports whether h references a user type or tuple.
func (h HostType) IsStructured() bool { return h.kind == HostRef && h.ref != nil }

func (h HostType) String() string {
	switch h.kind {
	case HostList, HostSet:
		return h.kind.String() + "<" + h.elem.String() + ">"
	case HostMap:
		return "map<" + h.key.String() + ", " + h.elem.String() + ">"
	case HostRef:
		if h.ref == nil {
			return "ref<nil>"
		}
		return h.ref.Name()
	default:
		return h.kind.String()
	}
}

var (
	recordType  = reflect.TypeOf(Record{})
	entriesType = reflect.TypeOf([]datatype.Entry{})
)

// GoType returns the Go type values of h take on the host side.
func (h HostType) GoType() reflect.Type {
	switch h.kind {
	case HostString:
		return reflect.TypeOf("")
	case HostInt8:
		return reflect.TypeOf(int8(0))
	case HostInt16:
		return reflect.TypeOf(int16(0))
	case HostInt32:
		return reflect.TypeOf(int32(0))
	case HostInt64:
		return reflect.TypeOf(int64(0))
	case HostFloat32:
		return reflect.TypeOf(float32(0))
	case HostFloat64:
		return reflect.TypeOf(float64(0))
	case HostBool:
		return reflect.TypeOf(false)
	case HostBytes:
		return reflect.TypeOf([]byte(nil))
	case HostUUID:
		return reflect.TypeOf(uuid.UUID{})
	case HostTime:
		return reflect.TypeOf(time.Time{})
	case HostDuration:
		return reflect.TypeOf(time.Duration(0))
	case HostDecimal:
		return reflect.TypeOf(decimal.Decimal{})
	case HostBigInt:
		return reflect.TypeOf((*big.Int)(nil))
	case HostIP:
		return reflect.TypeOf(net.IP(nil))
	case HostList, HostSet:
		return reflect.TypeOf([]any(nil))
	case HostMap:
		if h.key != nil && h.key.IsStructured() {
			return entriesType
		}
		return reflect.TypeOf(map[any]any(nil))
	case HostRef:
		return recordType
	default:
		return nil
	}
}
