// Command ideaforge validates product ideas: it researches the market,
// generates a sectioned report and refines it through follow-up messages.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ideaforge/internal/config"
	"ideaforge/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded by PersistentPreRunE
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ideaforge",
	Short: "ideaforge - research-backed product idea validation",
	Long: `ideaforge turns a one-line product idea into a validation report.

A tool-calling research loop gathers competitors, market data, complaints,
regulation and case studies from the web. Five report sections are then
generated from that research: vision, market and battlefield in parallel,
followed by verdict and advisors which build on them.

Reports are stored locally and can be refined with follow-up messages.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		opts := cfg.Logging.Options()
		if verbose {
			opts.Level = "debug"
			opts.Format = "console"
		}
		if err := logging.Initialize(opts); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "ideaforge.yaml", "Path to the YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(tracesCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// background returns the command context, or a fresh one when the command
// was invoked directly.
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
