// Package commands implements the retailseed command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/marshallshelly/pebble-retail/pkg/bootstrap"
)

var (
	// Global flags
	envFile    string
	driver     string
	dbPath     string
	dbURL      string
	verbose    bool
	jsonOutput bool

	// cfg is resolved once per invocation from env, .env and flags.
	cfg bootstrap.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "retailseed",
	Short: "Create the retail schema and load sample data",
	Long: `retailseed creates the retail order-management schema (customers, products,
orders, inventory, shipments, payments and friends) on SQLite or PostgreSQL
and fills it with a small sample data set.

Everything runs in one transaction: on any error nothing is committed.

Configuration is read from RETAIL_DB_DRIVER, RETAIL_DB_PATH and RETAIL_DB_URL,
optionally through a .env file, and can be overridden with flags.`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command
func Execute() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	addGlobalFlags(rootCmd)
}

// addGlobalFlags binds the persistent flags shared by every subcommand.
func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&driver, "driver", "", "Storage driver: sqlite or postgres (env RETAIL_DB_DRIVER)")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database file (env RETAIL_DB_PATH)")
	cmd.PersistentFlags().StringVar(&dbURL, "url", "", "PostgreSQL connection URL (env RETAIL_DB_URL)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if envFile != "" {
		err := godotenv.Load(envFile)
		// A missing default .env is normal
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
			err = nil
		}
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	loaded, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("driver") {
		loaded.Driver = driver
	}
	if cmd.Flags().Changed("db") {
		loaded.Path = dbPath
	}
	if cmd.Flags().Changed("url") {
		loaded.URL = dbURL
		// --url alone implies postgres
		if !cmd.Flags().Changed("driver") && os.Getenv("RETAIL_DB_DRIVER") == "" {
			loaded.Driver = "postgres"
		}
	}
	cfg = loaded
	return nil
}

// newLogger returns the diagnostic logger. Diagnostics go to stderr so
// that --json output stays parseable.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// exitCode maps bootstrap failures to distinct process exit codes.
func exitCode(err error) int {
	switch bootstrap.KindOf(err) {
	case bootstrap.KindSchemaConflict:
		return 3
	case bootstrap.KindReferentialViolation:
		return 4
	case bootstrap.KindStorageUnavailable:
		return 5
	}
	return 1
}
