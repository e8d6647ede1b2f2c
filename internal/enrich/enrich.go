// Package enrich walks the course catalogue and fills in missing bullet
// points via the Anthropic API, either with rate-limited synchronous calls
// or through the Messages Batch API.
package enrich

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hacktheburgh/coursefinder/internal/catalog"
	"github.com/hacktheburgh/coursefinder/internal/chat"
	"github.com/hacktheburgh/coursefinder/internal/model"
	"github.com/hacktheburgh/coursefinder/pkg/anthropic"
)

// Options configures an enrichment pass.
type Options struct {
	Concurrency    int     // sync path worker count
	RequestsPerSec float64 // sync path rate limit
	BatchSize      int     // batch path max items per submitted batch
	Force          bool    // regenerate bullets even when present
}

// Result summarises an enrichment pass.
type Result struct {
	FilesWritten   int
	CoursesUpdated int
	CoursesSkipped int // already had bullet points
	Failures       int // API failures; those courses keep their old bullets
}

// Enricher runs bullet point generation over a catalogue directory.
type Enricher struct {
	dir     string
	client  anthropic.Client
	bullets *chat.Bullets
	opts    Options
}

// New builds an Enricher rooted at the given data directory.
func New(dir string, client anthropic.Client, bullets *chat.Bullets, opts Options) *Enricher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 3
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 2
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	return &Enricher{dir: dir, client: client, bullets: bullets, opts: opts}
}

// pending locates one course awaiting bullets inside its file.
type pending struct {
	file string
	idx  int
	code string
}

// load reads every course file and lists the courses needing bullets.
// Courses that already carry bullet points are skipped unless Force is set.
func (e *Enricher) load() (map[string][]model.Course, []pending, int, error) {
	files, err := catalog.CourseFiles(e.dir)
	if err != nil {
		return nil, nil, 0, err
	}

	byFile := make(map[string][]model.Course)
	var todo []pending
	skipped := 0
	seen := make(map[string]bool)

	for _, f := range files {
		courses, err := catalog.ReadCourseFile(f)
		if err != nil {
			zap.L().Warn("skipping unreadable course file", zap.String("file", f), zap.Error(err))
			continue
		}
		byFile[f] = courses
		for i, c := range courses {
			if !e.opts.Force && len(c.BulletPoints) > 0 {
				skipped++
				continue
			}
			// Batch custom IDs must be unique; duplicates are collapsed
			// at dedup time anyway.
			if c.Code != "" && seen[c.Code] {
				continue
			}
			seen[c.Code] = true
			todo = append(todo, pending{file: f, idx: i, code: c.Code})
		}
	}
	return byFile, todo, skipped, nil
}

// Run enriches the catalogue with synchronous API calls behind a rate
// limiter and a bounded worker pool. A failed course keeps its old bullets.
func (e *Enricher) Run(ctx context.Context) (*Result, error) {
	byFile, todo, skipped, err := e.load()
	if err != nil {
		return nil, err
	}
	result := &Result{CoursesSkipped: skipped}
	if len(todo) == 0 {
		zap.L().Info("no courses need bullet points")
		return result, nil
	}

	zap.L().Info("enriching courses",
		zap.Int("pending", len(todo)),
		zap.Int("skipped", skipped),
		zap.Int("concurrency", e.opts.Concurrency),
	)

	limiter := rate.NewLimiter(rate.Limit(e.opts.RequestsPerSec), 1)
	var mu sync.Mutex
	changed := make(map[string]bool)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for _, p := range todo {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			course := byFile[p.file][p.idx]
			points, err := e.bullets.Generate(gctx, course.Summary, course.Description)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures++
				return nil
			}
			byFile[p.file][p.idx].BulletPoints = points
			changed[p.file] = true
			result.CoursesUpdated++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, eris.Wrap(err, "enrich: run")
	}

	if err := e.writeChanged(byFile, changed, result); err != nil {
		return result, err
	}
	return result, nil
}

// RunBatch enriches the catalogue through the Messages Batch API: one primer
// request to warm the prompt cache, then batches of up to BatchSize courses.
func (e *Enricher) RunBatch(ctx context.Context) (*Result, error) {
	byFile, todo, skipped, err := e.load()
	if err != nil {
		return nil, err
	}
	result := &Result{CoursesSkipped: skipped}
	if len(todo) == 0 {
		zap.L().Info("no courses need bullet points")
		return result, nil
	}

	if err := e.bullets.Primer(ctx); err != nil {
		zap.L().Warn("cache primer failed, continuing without warm cache", zap.Error(err))
	}

	byCode := make(map[string]pending, len(todo))
	changed := make(map[string]bool)

	for start := 0; start < len(todo); start += e.opts.BatchSize {
		end := min(start+e.opts.BatchSize, len(todo))
		chunk := todo[start:end]

		var items []anthropic.BatchRequestItem
		for _, p := range chunk {
			course := byFile[p.file][p.idx]
			text := chat.SourceText(course.Summary, course.Description)
			if text == "" || p.code == "" {
				// No prose to batch, or no code to use as a custom ID;
				// the sync generator handles both.
				points, err := e.bullets.Generate(ctx, course.Summary, course.Description)
				if err != nil {
					result.Failures++
					continue
				}
				byFile[p.file][p.idx].BulletPoints = points
				changed[p.file] = true
				result.CoursesUpdated++
				continue
			}
			byCode[p.code] = p
			items = append(items, anthropic.BatchRequestItem{
				CustomID: p.code,
				Params:   e.bullets.BatchRequest(text),
			})
		}
		if len(items) == 0 {
			continue
		}

		batch, err := e.client.CreateBatch(ctx, anthropic.BatchRequest{Requests: items})
		if err != nil {
			return result, eris.Wrap(err, "enrich: create batch")
		}
		zap.L().Info("batch submitted", zap.String("batch_id", batch.ID), zap.Int("items", len(items)))

		if _, err := anthropic.PollBatch(ctx, e.client, batch.ID); err != nil {
			return result, eris.Wrap(err, "enrich: poll batch")
		}

		iter, err := e.client.GetBatchResults(ctx, batch.ID)
		if err != nil {
			return result, eris.Wrap(err, "enrich: get batch results")
		}
		collected, err := anthropic.CollectBatchResults(iter)
		if err != nil {
			return result, err
		}

		for code, resp := range collected.Succeeded {
			p, ok := byCode[code]
			if !ok {
				zap.L().Warn("batch result for unknown course", zap.String("code", code))
				continue
			}
			byFile[p.file][p.idx].BulletPoints = chat.NormalizeBullets(resp.Text())
			changed[p.file] = true
			result.CoursesUpdated++
		}
		result.Failures += len(collected.Failures)
	}

	if err := e.writeChanged(byFile, changed, result); err != nil {
		return result, err
	}
	return result, nil
}

func (e *Enricher) writeChanged(byFile map[string][]model.Course, changed map[string]bool, result *Result) error {
	for f := range changed {
		if err := catalog.WriteCourseFile(f, byFile[f]); err != nil {
			return err
		}
		result.FilesWritten++
	}
	return nil
}
