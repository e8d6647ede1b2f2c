package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hacktheburgh/coursefinder/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run the external DRPS scraper and record the run",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("scrape"); err != nil {
			return err
		}

		runs, err := openRunLog(cmd.Context())
		if err != nil {
			return err
		}
		defer runs.Close()

		runner := scrape.NewRunner(cfg.Scraper, runs)
		run, err := runner.Run(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "scrape")
		}

		zap.L().Info("scrape complete",
			zap.String("run_id", run.ID),
			zap.String("status", string(run.Status)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
