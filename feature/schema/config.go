package schema

import (
	"strings"

	"entity-sync/core/reconcile"
)

// Config holds configuration for schema synchronization.
type Config struct {
	// EntitiesFile is the YAML file declaring the entities.
	EntitiesFile string `mapstructure:"entities_file" default:"entities.yaml"`
	// Policy is applied at startup: validate, update, create or create_and_track_for_drop.
	// An empty policy or "none" skips reconciliation.
	Policy string `mapstructure:"policy" default:"validate"`
	// DropRemovedColumns drops live table columns that are no longer declared.
	DropRemovedColumns bool `mapstructure:"drop_removed_columns" default:"false"`
	// ShowStatements logs every statement before it is applied.
	ShowStatements bool `mapstructure:"show_statements" default:"false"`
	// ArtifactPrefix is the object key prefix for published remediation scripts.
	ArtifactPrefix string `mapstructure:"artifact_prefix" default:"schema/"`
}

// StartupPolicy parses Policy. It reports false when Policy is empty or "none".
func (c Config) StartupPolicy() (reconcile.Policy, bool, error) {
	switch strings.ToLower(strings.TrimSpace(c.Policy)) {
	case "", "none":
		return 0, false, nil
	}
	p, err := reconcile.ParsePolicy(c.Policy)
	if err != nil {
		return 0, false, err
	}
	return p, true, nil
}
