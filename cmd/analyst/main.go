package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "analyst"
	version = "v1.0.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Rate a company from its financial history",
		Version: version,
		Long: `analyst scores a company's feature table (fiscal periods × financial ratios)
and optional daily price history on quality, valuation, market behaviour and risk,
and maps the blend to a BUY / HOLD / SELL rating.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "config/analyst.yaml", "Path to YAML config")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log each analysis stage")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, version)
		},
	})
	return rootCmd
}
