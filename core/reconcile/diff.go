package reconcile

import (
	"fmt"

	"entity-sync/core/datatype"
	"entity-sync/core/mapping"
)

// Diff compares a model with its live schema. Names match case-insensitively.
// Every live column absent from the model is reported as a drop; whether drops
// are acted on is decided by the caller.
func Diff(m *mapping.EntityModel, live *CatalogSnapshot) SchemaDiff {
	diff := SchemaDiff{Entity: m.Name()}
	var adds, conflicts []Change

	declared := make(map[string]struct{}, m.Len())
	for _, p := range m.Properties() {
		declared[p.ColumnName()] = struct{}{}
		modelType := p.StorageType().String()

		col, ok := live.Column(p.ColumnName())
		if !ok {
			if p.Role() == mapping.PartitionKey || p.Role() == mapping.ClusteringColumn {
				conflicts = append(conflicts, Change{
					Type:      ChangeConflict,
					Column:    p.ColumnName(),
					ModelType: modelType,
					Reason:    fmt.Sprintf("%s column missing from live schema", p.Role()),
					Property:  p,
				})
				continue
			}
			adds = append(adds, Change{Type: ChangeAdd, Column: p.ColumnName(), ModelType: modelType, Property: p})
			continue
		}

		if reason := compareColumn(p, col); reason != "" {
			conflicts = append(conflicts, Change{
				Type:      ChangeConflict,
				Column:    p.ColumnName(),
				ModelType: modelType,
				LiveType:  col.Type,
				Reason:    reason,
				Property:  p,
			})
		}
	}

	var drops []Change
	for _, name := range live.ColumnNames() {
		if _, ok := declared[name]; ok {
			continue
		}
		col, _ := live.Column(name)
		drops = append(drops, Change{Type: ChangeDrop, Column: name, LiveType: col.Type})
	}

	diff.Changes = append(diff.Changes, adds...)
	diff.Changes = append(diff.Changes, conflicts...)
	diff.Changes = append(diff.Changes, drops...)
	return diff
}

// compareColumn returns why a live column does not match its property, or "".
func compareColumn(p *mapping.PropertyModel, col CatalogColumn) string {
	liveType, err := datatype.Parse(col.Type)
	if err != nil {
		return fmt.Sprintf("unreadable live type: %v", err)
	}
	if !p.StorageType().Equal(liveType) {
		return "type mismatch"
	}
	if col.Kind != "" && col.Kind != p.Role().String() {
		return fmt.Sprintf("declared as %s but live column is %s", p.Role(), col.Kind)
	}
	return ""
}

// actionable removes drops unless they are enabled and expressible. User type
// fields cannot be dropped.
func actionable(d SchemaDiff, kind mapping.Kind, opts Options) SchemaDiff {
	if opts.DropRemovedColumns && kind == mapping.Table {
		return d
	}
	out := SchemaDiff{Entity: d.Entity}
	for _, c := range d.Changes {
		if c.Type != ChangeDrop {
			out.Changes = append(out.Changes, c)
		}
	}
	return out
}

// orderForCreation expands models with the user types they depend on and orders
// them so every type precedes its dependents, user types before tables.
// Tuples are kept in place; they carry no schema.
func orderForCreation(models []*mapping.EntityModel) []*mapping.EntityModel {
	var (
		types, tables, tuples []*mapping.EntityModel
		visited               = make(map[*mapping.EntityModel]bool)
	)

	var visit func(m *mapping.EntityModel)
	visit = func(m *mapping.EntityModel) {
		if visited[m] {
			return
		}
		visited[m] = true
		for _, dep := range m.Dependencies() {
			visit(dep)
		}
		switch m.Kind() {
		case mapping.UserDefinedType:
			types = append(types, m)
		case mapping.Table:
			tables = append(tables, m)
		default:
			tuples = append(tuples, m)
		}
	}
	for _, m := range models {
		visit(m)
	}

	out := make([]*mapping.EntityModel, 0, len(types)+len(tables)+len(tuples))
	out = append(out, types...)
	out = append(out, tables...)
	return append(out, tuples...)
}

// orderForTeardown reverses creation order: tables first, then types, dependents first.
func orderForTeardown(models []*mapping.EntityModel) []*mapping.EntityModel {
	ordered := orderForCreation(models)
	inSet := make(map[*mapping.EntityModel]bool, len(models))
	for _, m := range models {
		inSet[m] = true
	}

	var tables, types []*mapping.EntityModel
	for i := len(ordered) - 1; i >= 0; i-- {
		m := ordered[i]
		if !inSet[m] {
			continue
		}
		switch m.Kind() {
		case mapping.Table:
			tables = append(tables, m)
		case mapping.UserDefinedType:
			types = append(types, m)
		}
	}
	return append(tables, types...)
}
