package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/pebble-retail/cmd/retailseed/output"
	"github.com/marshallshelly/pebble-retail/pkg/bootstrap"
)

// initCmd creates the schema without seeding
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the schema without loading sample data",
	Long: `Create every missing table in dependency order and commit. Running it again
on an initialized target is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(ctx context.Context) error {
	l, err := bootstrap.Open(ctx, cfg, bootstrap.WithLogger(newLogger()))
	if err != nil {
		return err
	}
	defer l.Close()

	if err := l.InitializeSchema(ctx); err != nil {
		return err
	}
	if err := l.CommitAndClose(); err != nil {
		return err
	}

	report := l.Report()
	if jsonOutput {
		return output.JSON(report)
	}

	if len(report.Created) == 0 {
		output.Info("Schema already present on %s", report.Target)
		return nil
	}
	for _, name := range report.Created {
		output.Muted("  created %s", name)
	}
	output.Success("Created %d tables on %s", len(report.Created), report.Target)
	return nil
}
