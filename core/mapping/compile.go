package mapping

import (
	"sort"
	"strings"
)

func (r *Registry) build(d *Descriptor) (*EntityModel, error) {
	if err := validate(d); err != nil {
		return nil, err
	}

	m := &EntityModel{
		descriptor: d,
		kind:       d.kind,
		name:       strings.ToLower(d.name),
		byName:     make(map[string]*PropertyModel, len(d.props)),
	}

	props := append([]PropertyDescriptor(nil), d.props...)
	sort.SliceStable(props, func(i, j int) bool {
		a, b := props[i], props[j]
		if a.Role.rank() != b.Role.rank() {
			return a.Role.rank() < b.Role.rank()
		}
		if a.Ordinal != b.Ordinal {
			return a.Ordinal < b.Ordinal
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})

	for i, pd := range props {
		rc := &ResolveContext{registry: r, entity: m.name, property: pd.Name}
		res, err := r.resolve(rc, pd.Type, pd.Annotations)
		if err != nil {
			return nil, err
		}
		p := &PropertyModel{
			name:     pd.Name,
			column:   strings.ToLower(pd.Name),
			index:    i,
			role:     pd.Role,
			ordinal:  pd.Ordinal,
			ordering: pd.Ordering,
			declared: pd.Type,
			storage:  res.Storage,
			read:     nilSafe(res.Read),
			write:    nilSafe(res.Write),
			refs:     res.Models,
		}
		if pd.Type.IsStructured() && len(res.Models) == 1 {
			p.nested = res.Models[0]
		}
		m.properties = append(m.properties, p)
		m.byName[p.column] = p
	}
	return m, nil
}

func validate(d *Descriptor) error {
	if strings.TrimSpace(d.name) == "" {
		return &MappingError{Entity: "<unnamed>", Reason: "entity name is empty"}
	}
	entity := strings.ToLower(d.name)
	if len(d.props) == 0 {
		return mappingErrorf(entity, "", "no properties declared")
	}

	seen := make(map[string]struct{}, len(d.props))
	var partition, clustering, elements []int
	hasStatic := false
	for _, p := range d.props {
		col := strings.ToLower(p.Name)
		if strings.TrimSpace(col) == "" {
			return mappingErrorf(entity, "", "property name is empty")
		}
		if _, dup := seen[col]; dup {
			return mappingErrorf(entity, p.Name, "duplicate column name %q", col)
		}
		seen[col] = struct{}{}

		if d.kind != Table && p.Role != Regular {
			return mappingErrorf(entity, p.Name, "%s column not allowed in a %s", p.Role, d.kind)
		}
		switch p.Role {
		case PartitionKey:
			partition = append(partition, p.Ordinal)
		case ClusteringColumn:
			clustering = append(clustering, p.Ordinal)
		case Static:
			hasStatic = true
		}
		if d.kind == Tuple {
			elements = append(elements, p.Ordinal)
		}
	}

	switch d.kind {
	case Table:
		if len(partition) == 0 {
			return mappingErrorf(entity, "", "no partition key declared")
		}
		if err := checkOrdinals(entity, "partition key", partition); err != nil {
			return err
		}
		if err := checkOrdinals(entity, "clustering column", clustering); err != nil {
			return err
		}
		if hasStatic && len(clustering) == 0 {
			return mappingErrorf(entity, "", "static columns require at least one clustering column")
		}
	case Tuple:
		if err := checkOrdinals(entity, "tuple element", elements); err != nil {
			return err
		}
	case UserDefinedType:
	default:
		return mappingErrorf(entity, "", "unknown entity kind %d", d.kind)
	}
	return nil
}

// checkOrdinals requires ordinals to form the sequence 0..n-1.
func checkOrdinals(entity, what string, ordinals []int) error {
	sorted := append([]int(nil), ordinals...)
	sort.Ints(sorted)
	for i, o := range sorted {
		if i > 0 && o == sorted[i-1] {
			return mappingErrorf(entity, "", "duplicate %s ordinal %d", what, o)
		}
		if o != i {
			return mappingErrorf(entity, "", "%s ordinals must be contiguous from 0, missing %d", what, i)
		}
	}
	return nil
}
