package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hacktheburgh/coursefinder/internal/chat"
	"github.com/hacktheburgh/coursefinder/internal/enrich"
	"github.com/hacktheburgh/coursefinder/internal/runlog"
	"github.com/hacktheburgh/coursefinder/pkg/anthropic"
)

var (
	enrichBatch bool
	enrichForce bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Generate bullet points for courses that lack them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("enrich"); err != nil {
			return err
		}

		runs, err := openRunLog(ctx)
		if err != nil {
			return err
		}
		defer runs.Close()

		run, err := runs.Create(ctx, runlog.KindEnrich)
		if err != nil {
			return err
		}
		if err := runs.MarkRunning(ctx, run.ID); err != nil {
			return err
		}

		client := anthropic.NewClient(cfg.Anthropic.Key)
		bullets := chat.NewBullets(client, cfg.Anthropic.Model, int64(cfg.Anthropic.MaxTokens))
		enricher := enrich.New(cfg.Catalog.DataDir, client, bullets, enrich.Options{
			Concurrency:    cfg.Enrich.Concurrency,
			RequestsPerSec: cfg.Enrich.RequestsPerSec,
			BatchSize:      cfg.Anthropic.MaxBatchSize,
			Force:          enrichForce,
		})

		var result *enrich.Result
		if enrichBatch {
			result, err = enricher.RunBatch(ctx)
		} else {
			result, err = enricher.Run(ctx)
		}
		if err != nil {
			if ferr := runs.Fail(ctx, run.ID, err.Error()); ferr != nil {
				zap.L().Error("failed to record enrich failure", zap.Error(ferr))
			}
			return err
		}

		detail := map[string]any{
			"files_written":   result.FilesWritten,
			"courses_updated": result.CoursesUpdated,
			"courses_skipped": result.CoursesSkipped,
			"failures":        result.Failures,
		}
		if err := runs.Complete(ctx, run.ID, detail); err != nil {
			zap.L().Error("failed to record enrich completion", zap.Error(err))
		}

		zap.L().Info("enrich complete",
			zap.String("run_id", run.ID),
			zap.Int("updated", result.CoursesUpdated),
			zap.Int("skipped", result.CoursesSkipped),
			zap.Int("failures", result.Failures),
		)
		return nil
	},
}

func init() {
	enrichCmd.Flags().BoolVar(&enrichBatch, "batch", false, "use the Messages Batch API")
	enrichCmd.Flags().BoolVar(&enrichForce, "force", false, "regenerate bullets even when present")
	rootCmd.AddCommand(enrichCmd)
}
