package chat

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hacktheburgh/coursefinder/internal/resilience"
	"github.com/hacktheburgh/coursefinder/pkg/anthropic"
)

// bulletCount is the fixed number of bullet points per course.
const bulletCount = 3

// bulletTemperature matches the setting the catalogue was originally
// enriched with.
const bulletTemperature = 0.7

// padBullet fills out replies that came back with fewer than three lines.
const padBullet = "• Additional information not available"

// placeholderBullets cover courses with no description or summary at all.
var placeholderBullets = []string{
	"• No information available",
	"• Please check the course catalog",
	"• Contact the course administrator",
}

// errorBullets are written when the API call fails after retries.
var errorBullets = []string{
	"• Error generating course information",
	"• Please try again later",
	"• Contact support if the problem persists",
}

// notEnteredField is the DRPS placeholder for descriptions the school never
// filled in; it carries no information worth summarising.
const notEnteredField = "Not entered"

// Bullets generates three-bullet course summaries.
type Bullets struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	retry     resilience.RetryConfig
}

// NewBullets creates a bullet point generator.
func NewBullets(client anthropic.Client, model string, maxTokens int64) *Bullets {
	if maxTokens <= 0 {
		maxTokens = 300
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("anthropic", "bullets")
	return &Bullets{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		retry:     retry,
	}
}

// SourceText picks the prose a course's bullets are generated from: the
// description when it carries real content, otherwise the summary. Empty
// means the course has nothing to summarise.
func SourceText(summary, description string) string {
	d := strings.TrimSpace(description)
	if d != "" && d != notEnteredField {
		return d
	}
	return strings.TrimSpace(summary)
}

// Generate produces exactly three "• " bullet points for a course. The
// returned slice is always usable: placeholder bullets when there is no
// source text, error bullets when the API fails. The error reports the
// underlying failure so batch callers can decide not to persist.
func (b *Bullets) Generate(ctx context.Context, summary, description string) ([]string, error) {
	text := SourceText(summary, description)
	if text == "" {
		return append([]string(nil), placeholderBullets...), nil
	}

	req := b.Request(text)
	resp, err := resilience.DoVal(ctx, b.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return b.client.CreateMessage(ctx, req)
	})
	if err != nil {
		zap.L().Warn("bullet generation failed, returning error bullets", zap.Error(err))
		return append([]string(nil), errorBullets...), err
	}

	resp.Usage.LogCost(b.model, "bullets")
	return NormalizeBullets(resp.Text()), nil
}

// Request builds the CreateMessage request for one course's source text. The
// batch enrich path reuses it for CreateBatch items.
func (b *Bullets) Request(text string) anthropic.MessageRequest {
	temp := bulletTemperature
	return anthropic.MessageRequest{
		Model:       b.model,
		MaxTokens:   b.maxTokens,
		Temperature: &temp,
		System: []anthropic.SystemBlock{
			{Text: bulletSystemPrompt},
		},
		Messages: []anthropic.Message{
			{Role: "user", Content: bulletUserPrompt(text)},
		},
	}
}

// BatchRequest is Request with the system prompt marked cacheable; every
// item in an enrichment batch shares the same instructions.
func (b *Bullets) BatchRequest(text string) anthropic.MessageRequest {
	req := b.Request(text)
	req.System = anthropic.BuildCachedSystemBlocks(bulletSystemPrompt)
	return req
}

// Primer warms the prompt cache before a batch is submitted.
func (b *Bullets) Primer(ctx context.Context) error {
	req := anthropic.MessageRequest{
		Model:     b.model,
		MaxTokens: 1,
		System:    anthropic.BuildCachedSystemBlocks(bulletSystemPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: "ok"},
		},
	}
	_, err := anthropic.PrimerRequest(ctx, b.client, req)
	return err
}

// NormalizeBullets coerces a model reply into exactly three "• " lines:
// blank lines dropped, missing prefixes added, short replies padded, long
// ones truncated.
func NormalizeBullets(reply string) []string {
	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "•") {
			line = "• " + line
		}
		out = append(out, line)
	}
	for len(out) < bulletCount {
		out = append(out, padBullet)
	}
	return out[:bulletCount]
}
