package selector

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"entity-sync/core/mapping"
)

// UnknownPropertyError reports a reference to a property the entity does not declare.
type UnknownPropertyError struct {
	Entity   string
	Property string
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("unknown property %q on %s", e.Property, e.Entity)
}

// Selector hands out field references for one compiled model. It holds no
// capture state and may be shared freely.
type Selector struct {
	model *mapping.EntityModel
}

// New returns a selector for m.
func New(m *mapping.EntityModel) *Selector {
	return &Selector{model: m}
}

// Model returns the root model.
func (s *Selector) Model() *mapping.EntityModel { return s.model }

// Field references a top-level property by name.
func (s *Selector) Field(name string) Ref {
	p, ok := s.model.Property(name)
	if !ok {
		return Ref{err: &UnknownPropertyError{Entity: s.model.Name(), Property: name}}
	}
	return Ref{props: []*mapping.PropertyModel{p}}
}

// FieldAt references a top-level property by its index in the model.
func (s *Selector) FieldAt(i int) Ref {
	if i < 0 || i >= s.model.Len() {
		return Ref{err: &UnknownPropertyError{Entity: s.model.Name(), Property: fmt.Sprintf("#%d", i)}}
	}
	return Ref{props: []*mapping.PropertyModel{s.model.PropertyAt(i)}}
}

// ErrEmptyRef is returned for a Ref that was not obtained from a Selector.
var ErrEmptyRef = errors.New("reference does not start at an entity property")

// Ref is an immutable reference to a property, possibly nested. Each call to
// Field returns a new Ref, so refs can be shared across goroutines.
type Ref struct {
	props []*mapping.PropertyModel
	err   error
}

// Field continues the path into the user type or tuple held by this property.
func (r Ref) Field(name string) Ref {
	if r.err != nil {
		return r
	}
	if len(r.props) == 0 {
		return Ref{err: ErrEmptyRef}
	}
	leaf := r.props[len(r.props)-1]
	nested := leaf.Nested()
	if nested == nil {
		return Ref{err: &UnknownPropertyError{Entity: leaf.ColumnName(), Property: name}}
	}
	p, ok := nested.Property(name)
	if !ok {
		return Ref{err: &UnknownPropertyError{Entity: nested.Name(), Property: name}}
	}
	props := make([]*mapping.PropertyModel, len(r.props), len(r.props)+1)
	copy(props, r.props)
	return Ref{props: append(props, p)}
}

// Path returns the captured path, or the first error met while building it.
func (r Ref) Path() (PropertyPath, error) {
	if r.err != nil {
		return PropertyPath{}, r.err
	}
	if len(r.props) == 0 {
		return PropertyPath{}, ErrEmptyRef
	}
	return PropertyPath{props: r.props}, nil
}

// Capture runs fn against s and returns the path of the reference it builds.
//
//	path, err := selector.Capture(sel, func(u *selector.Selector) selector.Ref {
//	    return u.Field("address").Field("city")
//	})
func Capture(s *Selector, fn func(*Selector) Ref) (PropertyPath, error) {
	return fn(s).Path()
}

// PropertyPath is the chain of properties from a root entity to a leaf.
type PropertyPath struct {
	props []*mapping.PropertyModel
}

// Properties returns the chain, root first.
func (p PropertyPath) Properties() []*mapping.PropertyModel {
	return append([]*mapping.PropertyModel(nil), p.props...)
}

// Len returns the number of properties in the chain.
func (p PropertyPath) Len() int { return len(p.props) }

// Root returns the top-level property.
func (p PropertyPath) Root() *mapping.PropertyModel {
	if len(p.props) == 0 {
		return nil
	}
	return p.props[0]
}

// Leaf returns the last property.
func (p PropertyPath) Leaf() *mapping.PropertyModel {
	if len(p.props) == 0 {
		return nil
	}
	return p.props[len(p.props)-1]
}

// ColumnNames returns the lower-cased names along the chain.
func (p PropertyPath) ColumnNames() []string {
	out := make([]string, len(p.props))
	for i, prop := range p.props {
		out[i] = prop.ColumnName()
	}
	return out
}

// String renders the path in dotted form, e.g. address.city.
func (p PropertyPath) String() string {
	return strings.Join(p.ColumnNames(), ".")
}

// Cache keeps one selector per model.
type Cache struct {
	selectors sync.Map
}

// For returns the cached selector for m, creating it on first use.
func (c *Cache) For(m *mapping.EntityModel) *Selector {
	if s, ok := c.selectors.Load(m); ok {
		return s.(*Selector)
	}
	s, _ := c.selectors.LoadOrStore(m, New(m))
	return s.(*Selector)
}
