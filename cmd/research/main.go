// Package main is the entry point for the research CLI. It runs the same
// pipeline as the HTTP service against the configured store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"FinResearch/internal/di"
	"FinResearch/internal/usecase"
	"FinResearch/pkg/config"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the research CLI.
var rootCmd = &cobra.Command{
	Use:   "research",
	Short: "Run equity research reports from the command line",
	Long: `research plans a set of research branches for a company, analyzes them
concurrently with the configured AI provider, joins a market data snapshot and
synthesizes a single report.

Reports can be printed as markdown, written as HTML or PDF, and optionally saved
to the configured report store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "config/config.yaml", "config file path")
	rootCmd.PersistentFlags().String("owner", "cli", "owner the reports are stored under")
}

// withResearch loads the config, wires the research use case and runs fn with it.
func withResearch(cmd *cobra.Command, fn func(uc *usecase.ResearchUseCase) error) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return err
	}
	uc, cleanup, err := di.InitializeResearch(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(uc)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
