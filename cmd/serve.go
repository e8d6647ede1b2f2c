package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hacktheburgh/coursefinder/internal/api"
	"github.com/hacktheburgh/coursefinder/internal/catalog"
	"github.com/hacktheburgh/coursefinder/internal/chat"
	"github.com/hacktheburgh/coursefinder/internal/scrape"
	"github.com/hacktheburgh/coursefinder/pkg/anthropic"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the course discovery API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ranker, err := newRanker()
		if err != nil {
			return err
		}

		runs, err := openRunLog(ctx)
		if err != nil {
			return err
		}
		defer runs.Close()

		store := catalog.NewStore(cfg.Catalog.DataDir)
		client := anthropic.NewClient(cfg.Anthropic.Key)
		advisor := chat.NewAdvisor(client, ranker, chat.AdvisorOpts{
			Model:      cfg.Anthropic.Model,
			MaxTokens:  int64(cfg.Anthropic.MaxTokens),
			MaxCourses: cfg.Chat.MaxCourses,
			MaxHistory: cfg.Chat.MaxHistory,
			Fallback:   cfg.Chat.Fallback,
		})
		bullets := chat.NewBullets(client, cfg.Anthropic.Model, int64(cfg.Anthropic.MaxTokens))
		runner := scrape.NewRunner(cfg.Scraper, runs)

		handler := api.NewHandler(store, advisor, bullets, runner, runs)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.NewRouter(handler, cfg.Server.AllowedOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Error("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("data_dir", cfg.Catalog.DataDir),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
