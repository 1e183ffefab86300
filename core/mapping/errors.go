package mapping

import "fmt"

// MappingError reports a descriptor that cannot be compiled.
type MappingError struct {
	Entity   string
	Property string
	Reason   string
}

func (e *MappingError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("mapping %s.%s: %s", e.Entity, e.Property, e.Reason)
	}
	return fmt.Sprintf("mapping %s: %s", e.Entity, e.Reason)
}

func mappingErrorf(entity, property, format string, args ...any) *MappingError {
	return &MappingError{Entity: entity, Property: property, Reason: fmt.Sprintf(format, args...)}
}

// UnresolvedTypeError reports a host type no resolver can map to a storage type.
type UnresolvedTypeError struct {
	Entity   string
	Property string
	Type     HostType
	Reason   string
}

func (e *UnresolvedTypeError) Error() string {
	msg := fmt.Sprintf("mapping %s.%s: no storage type for %s", e.Entity, e.Property, e.Type)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
