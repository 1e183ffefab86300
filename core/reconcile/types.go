package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"entity-sync/core/mapping"
)

// Policy selects how a model is reconciled against the live schema.
type Policy int

const (
	// Validate compares the model with the live schema and fails on any drift.
	Validate Policy = iota + 1
	// Update creates missing schema and applies additive (and, if enabled, drop) changes.
	Update
	// Create always emits a creation statement.
	Create
	// CreateAndTrackForDrop creates like Create and registers the entity for teardown.
	CreateAndTrackForDrop
)

func (p Policy) String() string {
	switch p {
	case Validate:
		return "validate"
	case Update:
		return "update"
	case Create:
		return "create"
	case CreateAndTrackForDrop:
		return "create_and_track_for_drop"
	default:
		return "unknown"
	}
}

// ParsePolicy reads a policy name as used in configuration and on the command line.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "validate":
		return Validate, nil
	case "update":
		return Update, nil
	case "create":
		return Create, nil
	case "create_and_track_for_drop", "create_drop":
		return CreateAndTrackForDrop, nil
	default:
		return 0, fmt.Errorf("unknown reconciliation policy %q", s)
	}
}

// Options controls reconciliation behaviour.
type Options struct {
	// DropRemovedColumns makes live columns absent from the model actionable.
	// When false they are left untouched and never block a policy.
	DropRemovedColumns bool

	// ShowStatements logs every statement before it is applied.
	ShowStatements bool
}

// ChangeType is the kind of difference between model and live schema.
type ChangeType string

const (
	// ChangeAdd is a property present only in the model.
	ChangeAdd ChangeType = "add"
	// ChangeDrop is a live column absent from the model.
	ChangeDrop ChangeType = "drop"
	// ChangeConflict is a column whose live definition cannot be migrated by ALTER.
	ChangeConflict ChangeType = "conflict"
)

// Change is one entry of a SchemaDiff.
type Change struct {
	// Type is the kind of change.
	Type ChangeType `json:"type"`

	// Column is the lower-cased column or field name.
	Column string `json:"column"`

	// ModelType is the storage type the model declares, empty for drops.
	ModelType string `json:"model_type,omitempty"`

	// LiveType is the type reported by the catalog, empty for adds.
	LiveType string `json:"live_type,omitempty"`

	// Reason describes a conflict.
	Reason string `json:"reason,omitempty"`

	// Property is the model property, nil for drops.
	Property *mapping.PropertyModel `json:"-"`
}

// SchemaDiff lists the differences between a model and its live schema.
type SchemaDiff struct {
	// Entity is the lower-cased table or type name.
	Entity string `json:"entity"`

	// Changes holds adds in model order, then conflicts in model order, then drops by name.
	Changes []Change `json:"changes"`
}

// IsEmpty reports whether model and live schema agree.
func (d SchemaDiff) IsEmpty() bool { return len(d.Changes) == 0 }

// Adds returns the ADD changes.
func (d SchemaDiff) Adds() []Change { return d.filter(ChangeAdd) }

// Drops returns the DROP changes.
func (d SchemaDiff) Drops() []Change { return d.filter(ChangeDrop) }

// Conflicts returns the CONFLICT changes.
func (d SchemaDiff) Conflicts() []Change { return d.filter(ChangeConflict) }

func (d SchemaDiff) filter(t ChangeType) []Change {
	var out []Change
	for _, c := range d.Changes {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// CatalogColumn is one live column or user type field.
type CatalogColumn struct {
	// Name is the column name.
	Name string

	// Type is the CQL type as reported by the catalog, e.g. "frozen<address>".
	Type string

	// Kind is partition_key, clustering, regular or static. Empty for type fields.
	Kind string
}

// CatalogSnapshot is the live definition of one table or user type.
// Column lookups ignore case.
type CatalogSnapshot struct {
	Kind    mapping.Kind
	Name    string
	columns map[string]CatalogColumn
}

// NewCatalogSnapshot indexes cols by lower-cased name.
func NewCatalogSnapshot(kind mapping.Kind, name string, cols ...CatalogColumn) *CatalogSnapshot {
	s := &CatalogSnapshot{Kind: kind, Name: strings.ToLower(name), columns: make(map[string]CatalogColumn, len(cols))}
	for _, c := range cols {
		s.columns[strings.ToLower(c.Name)] = c
	}
	return s
}

// Column finds a live column by name, ignoring case.
func (s *CatalogSnapshot) Column(name string) (CatalogColumn, bool) {
	c, ok := s.columns[strings.ToLower(name)]
	return c, ok
}

// ColumnNames returns the lower-cased live column names, sorted.
func (s *CatalogSnapshot) ColumnNames() []string {
	out := make([]string, 0, len(s.columns))
	for name := range s.columns {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Result is the outcome of reconciling one entity.
type Result struct {
	// Entity is the lower-cased table or type name.
	Entity string `json:"entity"`

	// Kind is table, type or tuple.
	Kind string `json:"kind"`

	// Policy is the policy applied.
	Policy string `json:"policy"`

	// Missing reports that no live schema existed.
	Missing bool `json:"missing"`

	// Created reports that a creation statement was issued.
	Created bool `json:"created"`

	// Skipped reports entities that have no schema of their own (tuples).
	Skipped bool `json:"skipped"`

	// Diff is the computed difference, empty when the schema was created.
	Diff SchemaDiff `json:"diff"`

	// Statements are the DDL statements generated, in execution order.
	Statements []string `json:"statements"`

	// Applied is the number of statements executed.
	Applied int `json:"applied"`

	// Conflicts are the changes that require manual intervention.
	Conflicts []Change `json:"conflicts,omitempty"`
}

// Summary provides aggregate counts over a reconciliation run.
type Summary struct {
	// Entities is the number of entities processed.
	Entities int `json:"entities"`

	// Created counts entities whose schema was created.
	Created int `json:"created"`

	// Altered counts entities that received ALTER statements.
	Altered int `json:"altered"`

	// Drifted counts entities with a non-empty plan that was not applied.
	Drifted int `json:"drifted"`

	// Conflicts counts conflicting columns across all entities.
	Conflicts int `json:"conflicts"`

	// Skipped counts entities without schema of their own.
	Skipped int `json:"skipped"`

	// Statements counts statements generated.
	Statements int `json:"statements"`
}

// Summarize aggregates results.
func Summarize(results []*Result) Summary {
	var s Summary
	for _, r := range results {
		s.Entities++
		s.Statements += len(r.Statements)
		s.Conflicts += len(r.Conflicts)
		switch {
		case r.Skipped:
			s.Skipped++
		case r.Created:
			s.Created++
		case r.Applied > 0:
			s.Altered++
		case len(r.Statements) > 0:
			s.Drifted++
		}
	}
	return s
}
