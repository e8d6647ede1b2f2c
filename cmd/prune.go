package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hacktheburgh/coursefinder/internal/catalog"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove courses that are not delivered this year",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("prune"); err != nil {
			return err
		}

		result, err := catalog.PruneUnavailable(cfg.Catalog.DataDir)
		if err != nil {
			return err
		}

		zap.L().Info("prune complete",
			zap.Int("files_changed", result.FilesChanged),
			zap.Int("courses_removed", result.CoursesRemoved),
			zap.Int("courses_kept", result.CoursesKept),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
