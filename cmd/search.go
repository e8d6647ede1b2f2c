package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hacktheburgh/coursefinder/internal/catalog"
)

var (
	searchYear  int
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search [interests...]",
	Short: "Rank courses from the terminal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("search"); err != nil {
			return err
		}

		store := catalog.NewStore(cfg.Catalog.DataDir)
		courses, _, err := store.LoadCourses(ctx)
		if err != nil {
			return err
		}

		ranker, err := newRanker()
		if err != nil {
			return err
		}

		available := catalog.Criteria{}.Apply(courses)
		ranked := ranker.Rank(available, strings.Join(args, " "), searchYear)
		if len(ranked) > searchLimit {
			ranked = ranked[:searchLimit]
		}
		if ranked == nil {
			ranked = []catalog.ScoredCourse{}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchYear, "year", 0, "restrict to a year of study (1-5)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum results to print")
	rootCmd.AddCommand(searchCmd)
}
