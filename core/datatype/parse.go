package datatype

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// Expr is a parsed type expression such as map<text, frozen<address>>.
// The same grammar serves catalog type strings and host type declarations.
type Expr struct {
	Name string  `parser:"@(Ident | String)"`
	Args []*Expr `parser:"( '<' @@ ( ',' @@ )* '>' )?"`
}

var exprParser = participle.MustBuild[Expr](participle.Unquote("String"))

// ParseExpr parses s into an expression tree without interpreting names.
func ParseExpr(s string) (*Expr, error) {
	e, err := exprParser.ParseString("", strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid type expression %q: %w", s, err)
	}
	return e, nil
}

// String renders the expression back in its source form.
func (e *Expr) String() string {
	if len(e.Args) == 0 {
		return e.Name
	}
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return e.Name + "<" + strings.Join(parts, ", ") + ">"
}

// Parse reads a storage type as reported by the database catalog.
// Names are lower-cased and frozen<> wrappers are dropped.
func Parse(s string) (DataType, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return CustomType(strings.ReplaceAll(s[1:len(s)-1], "''", "'")), nil
	}
	e, err := ParseExpr(s)
	if err != nil {
		return DataType{}, err
	}
	return e.dataType()
}

func (e *Expr) dataType() (DataType, error) {
	name := Name(strings.ToLower(e.Name))

	args := make([]DataType, len(e.Args))
	for i, a := range e.Args {
		t, err := a.dataType()
		if err != nil {
			return DataType{}, err
		}
		args[i] = t
	}

	switch name {
	case "frozen":
		if len(args) != 1 {
			return DataType{}, fmt.Errorf("frozen takes exactly one argument, got %d", len(args))
		}
		return args[0], nil
	case List, Set:
		if len(args) != 1 {
			return DataType{}, fmt.Errorf("%s takes exactly one argument, got %d", name, len(args))
		}
		return DataType{Name: name, Args: args}, nil
	case Map:
		if len(args) != 2 {
			return DataType{}, fmt.Errorf("map takes exactly two arguments, got %d", len(args))
		}
		return MapOf(args[0], args[1]), nil
	case Tuple:
		if len(args) == 0 {
			return DataType{}, fmt.Errorf("tuple needs at least one element")
		}
		return TupleOf(args...), nil
	}

	if len(args) > 0 {
		return DataType{}, fmt.Errorf("type %s does not take arguments", name)
	}
	if IsScalar(name) {
		return Scalar(name), nil
	}
	return UserType(string(name)), nil
}
