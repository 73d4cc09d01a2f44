package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/pebble-retail/cmd/retailseed/output"
	"github.com/marshallshelly/pebble-retail/pkg/bootstrap"
)

// statusCmd shows what exists on the target
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which tables exist and how many rows they hold",
	Long: `Inspect the storage target without writing to it.

Examples:
  retailseed status                # Table per line
  retailseed status --json         # Output in JSON format`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(ctx context.Context) error {
	statuses, err := bootstrap.Inspect(ctx, cfg)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(statuses)
	}

	output.Section(cfg.Target())
	w := tabwriter.NewWriter(output.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  \tTABLE\tROWS\tNOTE")

	var missing, conflicts int
	for _, s := range statuses {
		state, note := "ok", ""
		switch {
		case s.Conflict != "":
			state, note = "conflict", s.Conflict
			conflicts++
		case !s.Exists:
			state, note = "missing", "run retailseed init"
			missing++
		}
		rows := "-"
		if s.Exists {
			rows = fmt.Sprint(s.Rows)
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", output.StatusIcon(state), s.Table, rows, note)
	}
	_ = w.Flush()
	fmt.Fprintln(output.Out)

	switch {
	case conflicts > 0:
		output.Error("%d table(s) conflict with the declared schema", conflicts)
	case missing > 0:
		output.Warning("%d table(s) missing", missing)
	default:
		output.Success("Schema complete")
	}
	return nil
}
