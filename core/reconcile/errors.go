package reconcile

import (
	"fmt"
	"strings"

	"entity-sync/core/mapping"
)

// SchemaMissingError reports that validation found no live schema for an entity.
type SchemaMissingError struct {
	Entity string
	Kind   mapping.Kind
}

func (e *SchemaMissingError) Error() string {
	return fmt.Sprintf("schema missing: %s %s does not exist", e.Kind, e.Entity)
}

// SchemaDriftError reports that validation found the live schema differs from the model.
// Statements holds the remediation an operator can apply manually.
type SchemaDriftError struct {
	Entity     string
	Diff       SchemaDiff
	Statements []string
}

// Remediation returns the statements joined one per line.
func (e *SchemaDriftError) Remediation() string {
	return strings.Join(e.Statements, "\n")
}

func (e *SchemaDriftError) Error() string {
	msg := fmt.Sprintf("schema changed for %s", e.Entity)
	if len(e.Statements) > 0 {
		msg += ", apply this command: " + strings.Join(e.Statements, " ")
	}
	if conflicts := e.Diff.Conflicts(); len(conflicts) > 0 {
		cols := make([]string, len(conflicts))
		for i, c := range conflicts {
			cols[i] = c.Column
		}
		msg += fmt.Sprintf("; conflicting columns need manual intervention: %s", strings.Join(cols, ", "))
	}
	return msg
}
