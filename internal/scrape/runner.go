// Package scrape supervises the external DRPS scraper process. The scraper
// itself — HTML traversal of colleges, schools, subjects and course pages —
// lives outside this repo; this package only launches it, enforces a
// timeout, and records the outcome in the run log.
package scrape

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hacktheburgh/coursefinder/internal/config"
	"github.com/hacktheburgh/coursefinder/internal/runlog"
)

// defaultTimeout bounds a full catalogue scrape; the DRPS walk takes tens of
// minutes on a good day.
const defaultTimeout = 30 * time.Minute

// outputTailLimit caps how much scraper output is kept in the run detail.
const outputTailLimit = 4096

// Runner launches and supervises the external scraper.
type Runner struct {
	command string
	args    []string
	timeout time.Duration
	runs    *runlog.Store
}

// NewRunner builds a runner for the configured scraper command.
func NewRunner(cfg config.ScraperConfig, runs *runlog.Store) *Runner {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Runner{
		command: cfg.Command,
		args:    cfg.Args,
		timeout: timeout,
		runs:    runs,
	}
}

// Run executes the scraper synchronously and returns the finished run record.
func (r *Runner) Run(ctx context.Context) (*runlog.Run, error) {
	run, err := r.runs.Create(ctx, runlog.KindScrape)
	if err != nil {
		return nil, err
	}
	superviseErr := r.supervise(ctx, run.ID)

	finished, err := r.runs.Get(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	return finished, superviseErr
}

// Launch creates the run record and supervises the scraper in the
// background. The API's scrape endpoint returns the queued run immediately.
func (r *Runner) Launch(ctx context.Context) (*runlog.Run, error) {
	run, err := r.runs.Create(ctx, runlog.KindScrape)
	if err != nil {
		return nil, err
	}
	// The request context dies with the HTTP response; the scrape must not.
	go func() {
		if err := r.supervise(context.Background(), run.ID); err != nil {
			zap.L().Error("background scrape failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}()
	return run, nil
}

func (r *Runner) supervise(ctx context.Context, runID string) error {
	log := zap.L().With(
		zap.String("run_id", runID),
		zap.String("command", r.command),
	)

	if err := r.runs.MarkRunning(ctx, runID); err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var tail tailWriter
	cmd := exec.CommandContext(cctx, r.command, r.args...)
	cmd.Stdout = &tail
	cmd.Stderr = &tail

	log.Info("scraper starting", zap.Strings("args", r.args))
	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if runErr != nil {
		msg := runErr.Error()
		if cctx.Err() == context.DeadlineExceeded {
			msg = fmt.Sprintf("timed out after %s", r.timeout)
		}
		if t := tail.String(); t != "" {
			msg += ": " + t
		}
		log.Error("scraper failed", zap.Duration("elapsed", elapsed), zap.String("error", msg))
		if err := r.runs.Fail(ctx, runID, msg); err != nil {
			log.Error("failed to record scrape failure", zap.Error(err))
		}
		return eris.Wrap(runErr, "scrape: run scraper")
	}

	log.Info("scraper finished", zap.Duration("elapsed", elapsed))
	detail := map[string]any{
		"duration_secs": elapsed.Seconds(),
	}
	if t := tail.String(); t != "" {
		detail["output_tail"] = t
	}
	if err := r.runs.Complete(ctx, runID, detail); err != nil {
		log.Error("failed to record scrape completion", zap.Error(err))
		return err
	}
	return nil
}

// tailWriter keeps the last outputTailLimit bytes written to it.
type tailWriter struct {
	buf []byte
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	if len(w.buf) > outputTailLimit {
		w.buf = w.buf[len(w.buf)-outputTailLimit:]
	}
	return len(p), nil
}

func (w *tailWriter) String() string {
	return strings.TrimSpace(string(w.buf))
}
