package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/pebble-retail/cmd/retailseed/output"
	"github.com/marshallshelly/pebble-retail/pkg/migration"
	"github.com/marshallshelly/pebble-retail/pkg/models"
	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

var (
	// Schema flags
	schemaFormat  string
	schemaDialect string
	schemaOut     string
	schemaName    string
)

// schemaCmd prints the declared schema
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the declared schema as DBML or DDL",
	Long: `Print the declared retail schema without touching any database.

Examples:
  retailseed schema                               # DBML diagram
  retailseed schema --format sql --dialect postgres
  retailseed schema --format sql --out ./migrations   # Write up/down migration files`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchema()
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().StringVarP(&schemaFormat, "format", "f", "dbml", "Output format: dbml or sql")
	schemaCmd.Flags().StringVar(&schemaDialect, "dialect", "", "SQL dialect for --format sql (defaults to the configured driver)")
	schemaCmd.Flags().StringVarP(&schemaOut, "out", "o", "", "Write a migration pair into this directory instead of printing")
	schemaCmd.Flags().StringVar(&schemaName, "name", "init_retail", "Migration name used with --out")
}

func runSchema() error {
	reg, err := models.NewRegistry()
	if err != nil {
		return err
	}

	switch strings.ToLower(schemaFormat) {
	case "dbml":
		if schemaOut != "" {
			return fmt.Errorf("--out requires --format sql")
		}
		fmt.Fprint(output.Out, schema.RenderDBML(reg.All()))
		return nil
	case "sql":
	default:
		return fmt.Errorf("unknown format %q (want dbml or sql)", schemaFormat)
	}

	name := schemaDialect
	if name == "" {
		name = cfg.Driver
	}
	dialect, err := schema.ParseDialect(name)
	if err != nil {
		return err
	}

	ordered, err := reg.Ordered()
	if err != nil {
		return err
	}
	planner := migration.NewPlanner(dialect)

	if schemaOut == "" {
		fmt.Fprintln(output.Out, strings.Join(planner.CreateStatements(ordered), "\n\n"))
		return nil
	}

	file, err := migration.NewGenerator(schemaOut, planner).Generate(schemaName, &migration.SchemaDiff{TablesAdded: ordered})
	if err != nil {
		return err
	}
	if jsonOutput {
		return output.JSON(file)
	}
	output.Success("Wrote %s", file.UpPath)
	output.Success("Wrote %s", file.DownPath)
	return nil
}
