package reconcile

import (
	"context"

	"entity-sync/core/mapping"
)

// Plan computes what reconciling m would do without changing the database.
// A missing schema yields its creation statement; otherwise the statements
// cover the actionable adds and drops, and conflicts are listed separately.
func (e *Engine) Plan(ctx context.Context, m *mapping.EntityModel) (*Result, error) {
	res := newResult(m, 0)
	if m.Kind() == mapping.Tuple {
		res.Skipped = true
		return res, nil
	}

	live, err := e.transport.FetchCatalog(ctx, m.Kind(), m.Name())
	if err != nil {
		return nil, err
	}
	if live == nil {
		stmt, err := CreateStatement(m)
		if err != nil {
			return nil, err
		}
		res.Missing = true
		res.Statements = []string{stmt}
		return res, nil
	}

	res.Diff = actionable(Diff(m, live), m.Kind(), e.opts)
	res.Statements = AlterStatements(m, res.Diff, e.opts)
	res.Conflicts = res.Diff.Conflicts()
	return res, nil
}

// PlanAll plans every model in creation order, including user types they depend on.
func (e *Engine) PlanAll(ctx context.Context, models ...*mapping.EntityModel) ([]*Result, error) {
	ordered := orderForCreation(models)
	results := make([]*Result, 0, len(ordered))
	for _, m := range ordered {
		res, err := e.Plan(ctx, m)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func newResult(m *mapping.EntityModel, policy Policy) *Result {
	res := &Result{
		Entity: m.Name(),
		Kind:   m.Kind().String(),
		Diff:   SchemaDiff{Entity: m.Name()},
	}
	if policy != 0 {
		res.Policy = policy.String()
	}
	return res
}
