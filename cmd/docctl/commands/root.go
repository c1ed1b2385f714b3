package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"docarchive/internal/bootstrap"
	"docarchive/internal/shared/config"
)

var (
	logLevel string
	app      *bootstrap.App
)

var rootCmd = &cobra.Command{
	Use:   "docctl",
	Short: "Ingest and inspect archived documents",
	Long: `docctl runs the ingestion pipeline against local files and reads back
stored documents, using the same configuration as the API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		built, err := bootstrap.Build(cfg)
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		app = built
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return app.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
