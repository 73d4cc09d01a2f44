package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/marshallshelly/pebble-retail/cmd/retailseed/output"
	"github.com/marshallshelly/pebble-retail/cmd/retailseed/tui"
	"github.com/marshallshelly/pebble-retail/pkg/bootstrap"
)

var (
	// Bootstrap flags
	interactive bool
)

// bootstrapCmd creates the schema and seeds the sample data
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the schema and load the sample data",
	Long: `Create every missing table in dependency order, insert the sample rows and
commit. Existing compatible tables are reused; an incompatible table aborts
the run with a schema conflict and nothing is written.

Examples:
  retailseed bootstrap                         # SQLite file retail.sqlite
  retailseed bootstrap --db /tmp/shop.sqlite   # Another SQLite file
  retailseed bootstrap --url postgres://...    # PostgreSQL
  retailseed bootstrap --interactive           # Progress UI`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBootstrap(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)

	bootstrapCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run in interactive mode with TUI")
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runBootstrap(ctx context.Context) error {
	if interactive {
		if jsonOutput {
			return fmt.Errorf("--interactive and --json cannot be combined")
		}
		if !isTerminal(os.Stdout) {
			return fmt.Errorf("--interactive needs a terminal")
		}
		return tui.RunBootstrapUI(ctx, cfg)
	}

	if !jsonOutput {
		output.Info("Bootstrapping %s", cfg.Target())
	}

	report, err := bootstrap.Run(ctx, cfg, bootstrap.WithLogger(newLogger()))
	if err != nil {
		if !jsonOutput {
			output.Error("Bootstrap failed, nothing was committed")
		}
		return err
	}

	if jsonOutput {
		return output.JSON(report)
	}

	printReport(report)
	return nil
}

func printReport(report *bootstrap.Report) {
	output.Section("Tables")
	for _, name := range report.Created {
		fmt.Fprintf(output.Out, "  %s %s\n", output.StatusIcon("created"), name)
	}
	for _, name := range report.Existing {
		fmt.Fprintf(output.Out, "  %s %s (existing)\n", output.StatusIcon("existing"), name)
	}

	output.Section("Rows inserted")
	w := tabwriter.NewWriter(output.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  TABLE\tROWS")
	for _, c := range report.Inserted {
		fmt.Fprintf(w, "  %s\t%d\n", c.Table, c.Rows)
	}
	_ = w.Flush()

	fmt.Fprintln(output.Out)
	output.Success("Committed %d rows into %d tables in %s",
		report.TotalRows(), len(report.Inserted), report.Duration.Round(time.Millisecond))
}
