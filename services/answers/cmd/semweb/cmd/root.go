package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jredh-dev/semweb/internal/logger"
	"github.com/jredh-dev/semweb/services/answers/config"
)

var (
	logJSON bool
	// cfg holds the SEMWEB_* environment and config file, used for flag
	// defaults. Loaded before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "semweb",
	Short:         "semweb: one football season, three web representations",
	Long:          "Generate the Web 1.0 and RDFa sites, crawl their JSON-LD into a knowledge graph, query it, and benchmark the answers API.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		return logger.Initialize(logJSON || cfg.LogJSON)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		pterm.Error.Println(err)
	}
	return err
}

// orDefault returns v unless it is empty.
func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit JSON logs")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(askCmd)
}
