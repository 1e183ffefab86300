// Package mapping turns declared entity descriptors into immutable models.
//
// # Descriptors
//
// Entities are declared explicitly, either with the Builder API or from a YAML
// file via LoadDescriptors. A descriptor names a table, user-defined type or
// tuple and lists its properties with their host types and column roles.
//
// # Compilation
//
// Registry.Compile validates a descriptor, resolves every property's storage type
// and returns an EntityModel. Models are cached per descriptor identity: compiling
// the same descriptor twice returns the same instance, and concurrent first use
// compiles it once. Table, type and column names are lower-cased.
//
// Compilation fails with a *MappingError when the declared shape is invalid (no
// partition key, gapped or duplicated ordinals, duplicate names, misplaced roles)
// and with an *UnresolvedTypeError when no resolver maps a host type.
//
// # Type resolution
//
// A custom type annotation is honoured verbatim. Otherwise the first registered
// TypeResolver supporting the host type decides the storage type and, where the
// host and storage forms differ, a pair of converters. Nested user types and
// tuples convert between Record and datatype.UDTValue or datatype.TupleValue;
// collections of them convert element by element.
package mapping
