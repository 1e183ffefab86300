// Package selector builds property paths from compiled entity models.
//
// A Selector hands out Ref values naming properties; Ref.Field continues into
// nested user types and tuples. Refs are immutable values, so concurrent callers
// never share capture state. Typed binds a path to its Go value type for
// query builders that marshal rows.
//
//	sel := selector.New(users)
//	path, err := sel.Field("address").Field("city").Path()
//	// path.String() == "address.city"
//
//	email, err := selector.Typed[string](sel, "email")
package selector
