package schema

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every route handler carries swag annotations naming its route.
func TestHandlersAreAnnotated(t *testing.T) {
	file, err := parser.ParseFile(token.NewFileSet(), "handler.go", nil, parser.ParseComments)
	require.NoError(t, err)

	handlers := 0
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || !strings.HasPrefix(fn.Name.Name, "Handle") {
			continue
		}
		handlers++
		t.Run(fn.Name.Name, func(t *testing.T) {
			require.NotNil(t, fn.Doc)
			doc := fn.Doc.Text()
			assert.Contains(t, doc, "@Summary ")
			assert.Contains(t, doc, "@Tags schema")
			assert.Contains(t, doc, "@Router /schema/")
		})
	}
	assert.Equal(t, 8, handlers)
}
