// Package datatype models the column types of the column-family store.
//
// A DataType is either a native scalar (text, int, timeuuid, ...), a parameterised
// collection or tuple, a reference to a user-defined type, or a custom server-side
// type. String renders the CQL form used in DDL; Parse reads the form reported by
// the system_schema catalog so live and declared types can be compared with Equal.
//
// The package also defines the storage-side value shapes produced by converters:
// UDTValue, TupleValue and Entry, and the slice/map transformers that collection
// converters are built from.
package datatype
