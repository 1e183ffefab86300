package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"entity-sync/core/config"
	"entity-sync/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dropRemoved    bool
	showStatements bool
	yesConfirm     bool
	publishPlan    bool
	jsonOutput     bool
	historyEntity  string
	historyLimit   int
)

// schemaCmd is the parent command for schema operations.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Reconcile the keyspace with the declared entities",
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Fail if any table or type differs from its declaration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPolicy(cmd, reconcile.Validate)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Create missing schema and add new columns",
	Long: `Creates missing tables and types and adds declared columns that do not exist yet.
Columns whose type changed are reported and left untouched.

When dropping is enabled, by --drop-removed-columns or schema.drop_removed_columns,
live table columns that are no longer declared are dropped after confirmation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPolicy(cmd, reconcile.Update)
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create every declared table and type",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPolicy(cmd, reconcile.Create)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the statements update would apply",
	RunE:  runPlan,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List applied schema changes",
	RunE:  runHistory,
}

func init() {
	for _, c := range []*cobra.Command{validateCmd, updateCmd, createCmd, planCmd} {
		c.Flags().BoolVar(&showStatements, "show-statements", false, "Log every statement before it is applied")
	}
	for _, c := range []*cobra.Command{validateCmd, updateCmd, planCmd} {
		c.Flags().BoolVar(&dropRemoved, "drop-removed-columns", false, "Drop live table columns that are no longer declared")
	}
	updateCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	planCmd.Flags().BoolVar(&publishPlan, "publish", false, "Replace the published remediation scripts with this plan")
	planCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the plan as JSON")
	historyCmd.Flags().StringVar(&historyEntity, "entity", "", "Only list changes of this entity")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of changes")

	schemaCmd.AddCommand(validateCmd, updateCmd, createCmd, planCmd, historyCmd)
	RootCmd.AddCommand(schemaCmd)
}

// applyFlags overrides configuration with the command line.
func applyFlags(cfg *config.Config) {
	if dropRemoved {
		cfg.Schema.DropRemovedColumns = true
	}
	if showStatements {
		cfg.Schema.ShowStatements = true
	}
}

func runPolicy(cmd *cobra.Command, policy reconcile.Policy) error {
	rt, err := bootstrap(applyFlags)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !dropsConfirmed(rt.cfg, policy, func() bool { return confirmDestructiveAction(os.Stdin) }) {
		return errCancelled
	}

	results, err := rt.service.Apply(cmd.Context(), policy, rt.descriptors...)
	if err != nil {
		var drift *reconcile.SchemaDriftError
		if errors.As(err, &drift) && len(drift.Statements) > 0 {
			fmt.Println(drift.Remediation())
		}
		return err
	}

	s := reconcile.Summarize(results)
	rt.logger.Info("Schema is in sync",
		zap.Stringer("policy", policy),
		zap.Int("entities", s.Entities),
		zap.Int("statements", s.Statements),
	)
	return nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap(applyFlags)
	if err != nil {
		return err
	}
	defer rt.Close()

	results, err := rt.service.Plan(cmd.Context(), rt.descriptors...)
	if err != nil {
		return fmt.Errorf("failed to plan: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		printPlan(results)
	}

	if publishPlan {
		n, err := rt.service.PublishPlan(cmd.Context(), results)
		if err != nil {
			return err
		}
		rt.logger.Info("Published remediation scripts", zap.Int("count", n))
	}
	return nil
}

func printPlan(results []*reconcile.Result) {
	for _, r := range results {
		if len(r.Statements) == 0 && len(r.Conflicts) == 0 {
			continue
		}
		fmt.Printf("-- %s %s\n", r.Kind, r.Entity)
		for _, c := range r.Conflicts {
			fmt.Printf("-- conflict on %s: %s\n", c.Column, c.Reason)
		}
		for _, s := range r.Statements {
			fmt.Println(s)
		}
	}
	s := reconcile.Summarize(results)
	fmt.Printf("-- %d entities, %d statements, %d conflicts\n", s.Entities, s.Statements, s.Conflicts)
}

func runHistory(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap(nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	changes, err := rt.service.History(cmd.Context(), historyEntity, historyLimit)
	if err != nil {
		return err
	}
	for _, c := range changes {
		fmt.Printf("%s  %-8s %-10s %s\n", c.AppliedAt.Format("2006-01-02 15:04:05"), c.Policy, c.Entity, c.Statement)
	}
	return nil
}

// errCancelled is returned when the operator declines a destructive run.
var errCancelled = errors.New("operation cancelled by user, no changes were made")

// dropsConfirmed asks before an update that may drop columns, whichever way
// dropping was enabled.
func dropsConfirmed(cfg *config.Config, policy reconcile.Policy, confirm func() bool) bool {
	if policy != reconcile.Update || !cfg.Schema.DropRemovedColumns {
		return true
	}
	return confirm()
}

// confirmDestructiveAction reads a 'yes' from in unless --yes was given.
func confirmDestructiveAction(in io.Reader) bool {
	if yesConfirm {
		return true
	}

	fmt.Print("Type 'yes' to drop undeclared columns: ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
