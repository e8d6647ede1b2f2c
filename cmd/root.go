package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hacktheburgh/coursefinder/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "coursefinder",
	Short: "University of Edinburgh course discovery backend",
	Long:  "Serves the DRPS course catalogue over HTTP with filtering, relevance ranking, a Claude course advisor, and AI bullet point enrichment of scraped course data.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
