// Package cmd defines and implements the CLI commands for the venuescout
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/venuescout/venuescout/internal/config"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venuescout",
		Short: "Finds hiring service-sector venues by crawling their websites.",
		Long: `venuescout discovers cafes, bars, and restaurants in an area via a
map-data API, then politely crawls each venue's website to decide whether it
is actively hiring, emitting a deduplicated CSV of hiring-page URLs.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default uses built-in defaults and VENUESCOUT_ env vars)")
	cmd.AddCommand(newScrapeCmd())

	return cmd
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
