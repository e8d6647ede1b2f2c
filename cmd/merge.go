package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hacktheburgh/coursefinder/internal/catalog"
)

var (
	mergeCohortCSV   string
	mergeLocationCSV string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge cohort and campus data into popularity metrics",
	Long: `Merge reads cohort sizes and campus locations from CSV exports and
writes merged_course_data.json into the data directory. The serve command
overlays that file onto courses at load time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("merge"); err != nil {
			return err
		}

		merged, err := catalog.MergePopularity(cfg.Catalog.DataDir, mergeCohortCSV, mergeLocationCSV)
		if err != nil {
			return err
		}

		zap.L().Info("merge complete",
			zap.Int("courses_merged", merged),
			zap.String("cohort_csv", mergeCohortCSV),
		)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeCohortCSV, "cohort-csv", "", "CSV with courseCode and cohort size columns")
	mergeCmd.Flags().StringVar(&mergeLocationCSV, "location-csv", "", "optional CSV with course locations")
	_ = mergeCmd.MarkFlagRequired("cohort-csv")
	rootCmd.AddCommand(mergeCmd)
}
