package cmd

import (
	"errors"
	"fmt"
	"os"

	"entity-sync/core/logger"
	"entity-sync/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Exit statuses. Drift gets its own status so CI can tell it from a broken run.
const (
	exitFailure = 1
	exitDrift   = 2
)

// configDir holds entity-sync.yaml and .env.
var configDir string

// RootCmd is the entity-sync command tree.
var RootCmd = &cobra.Command{
	Use:   "entity-sync",
	Short: "Entity Schema Synchronization Service",
	Long: `entity-sync compiles declared entities into models and keeps the tables and
user defined types of a Cassandra keyspace in line with them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}
	if l, logErr := logger.CLI(); logErr == nil {
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	var drift *reconcile.SchemaDriftError
	var missing *reconcile.SchemaMissingError
	if errors.As(err, &drift) || errors.As(err, &missing) {
		return exitDrift
	}
	return exitFailure
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory containing entity-sync.yaml and .env")
}
