package reconcile

import (
	"context"

	"entity-sync/core/mapping"
)

// Transport is the database collaborator the engine reads the catalog from and
// applies DDL through. Retries, timeouts and connectivity belong to the
// implementation; the engine returns its errors unchanged.
type Transport interface {
	// FetchCatalog returns the live definition of the named table or user type.
	// It returns nil and no error when the object does not exist.
	// Implementations must read the catalog on every call.
	FetchCatalog(ctx context.Context, kind mapping.Kind, name string) (*CatalogSnapshot, error)

	// Apply executes one complete DDL statement.
	Apply(ctx context.Context, statement string) error
}

// AppliedStatement describes a statement the engine executed.
type AppliedStatement struct {
	Entity    string
	Kind      mapping.Kind
	Policy    Policy
	Statement string
}

// Recorder receives every statement after it has been applied.
type Recorder interface {
	Record(ctx context.Context, s AppliedStatement) error
}

// DropTracker registers entities to be dropped when their owning session ends.
type DropTracker interface {
	Track(m *mapping.EntityModel)
}
