package chat

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hacktheburgh/coursefinder/internal/catalog"
	"github.com/hacktheburgh/coursefinder/internal/model"
	"github.com/hacktheburgh/coursefinder/internal/resilience"
	"github.com/hacktheburgh/coursefinder/pkg/anthropic"
)

// defaultFallbackReply is returned whenever the Anthropic call fails after
// retries or the circuit is open. The chatbot endpoint never errors at the
// HTTP layer.
const defaultFallbackReply = "Sorry, I'm having trouble answering right now. Please try again in a few moments."

// noQuestionReply handles histories with no user turn at all.
const noQuestionReply = "Tell me what you're interested in studying and I'll suggest some University of Edinburgh courses."

// Advisor answers student questions grounded in the ranked course catalogue.
type Advisor struct {
	client     anthropic.Client
	ranker     *catalog.Ranker
	model      string
	maxTokens  int64
	maxCourses int
	maxHistory int
	fallback   string
	retry      resilience.RetryConfig
	breaker    *resilience.CircuitBreaker
}

// AdvisorOpts configures an Advisor.
type AdvisorOpts struct {
	Model      string
	MaxTokens  int64
	MaxCourses int    // ranked courses included in the prompt, default 7
	MaxHistory int    // conversation turns kept, default 10
	Fallback   string // reply on API failure, default defaultFallbackReply
}

// NewAdvisor creates an advisor backed by the given client and ranker.
func NewAdvisor(client anthropic.Client, ranker *catalog.Ranker, opts AdvisorOpts) *Advisor {
	maxCourses := opts.MaxCourses
	if maxCourses <= 0 {
		maxCourses = 7
	}
	maxHistory := opts.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 10
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	fallback := opts.Fallback
	if fallback == "" {
		fallback = defaultFallbackReply
	}

	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("anthropic", "chat")

	return &Advisor{
		client:     client,
		ranker:     ranker,
		model:      opts.Model,
		maxTokens:  maxTokens,
		maxCourses: maxCourses,
		maxHistory: maxHistory,
		fallback:   fallback,
		retry:      retry,
		breaker:    resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
	}
}

// Reply answers the latest user turn in history, grounding the model in the
// courses that rank highest against it. API failures degrade to the fallback reply
// rather than an error; the catalogue itself is the caller's responsibility.
func (a *Advisor) Reply(ctx context.Context, history []anthropic.Message, courses []model.Course) string {
	question := lastUserMessage(history)
	if question == "" {
		return noQuestionReply
	}

	year := sniffYear(question)
	matches := a.ranker.Rank(courses, question, year)
	if len(matches) > a.maxCourses {
		matches = matches[:a.maxCourses]
	}

	log := zap.L().With(
		zap.Int("matches", len(matches)),
		zap.Int("year", year),
	)

	req := anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System: []anthropic.SystemBlock{
			{Text: advisorSystemPrompt + "\n\n" + formatCourses(matches)},
		},
		Messages: trimHistory(history, a.maxHistory),
	}

	resp, err := resilience.DoVal(ctx, a.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.ExecuteVal(ctx, a.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return a.client.CreateMessage(ctx, req)
		})
	})
	if err != nil {
		log.Warn("chat reply failed, returning fallback", zap.Error(err))
		return a.fallback
	}

	resp.Usage.LogCost(a.model, "chat")

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		log.Warn("chat reply empty, returning fallback")
		return a.fallback
	}
	return text
}

// Matches ranks the catalogue against the latest user turn so the API layer
// can return the matched courses alongside the reply.
func (a *Advisor) Matches(courses []model.Course, history []anthropic.Message) []catalog.ScoredCourse {
	message := lastUserMessage(history)
	matches := a.ranker.Rank(courses, message, sniffYear(message))
	if len(matches) > a.maxCourses {
		matches = matches[:a.maxCourses]
	}
	return matches
}

func lastUserMessage(history []anthropic.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			return strings.TrimSpace(history[i].Content)
		}
	}
	return ""
}

// trimHistory keeps the most recent turns. The Messages API rejects
// conversations that open with an assistant turn, so the cut advances to the
// earliest kept user message; the latest user message is never split off.
func trimHistory(history []anthropic.Message, max int) []anthropic.Message {
	if len(history) <= max {
		return history
	}
	trimmed := history[len(history)-max:]
	for i, m := range trimmed {
		if m.Role == "user" {
			return trimmed[i:]
		}
	}
	return trimmed
}
