package chat

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacktheburgh/coursefinder/internal/catalog"
	"github.com/hacktheburgh/coursefinder/internal/model"
	"github.com/hacktheburgh/coursefinder/internal/resilience"
	"github.com/hacktheburgh/coursefinder/pkg/anthropic"
)

func advisorCourses() []model.Course {
	return []model.Course{
		{
			Code:        "INFR10069",
			Name:        "Machine Learning Practical",
			School:      "School of Informatics",
			CreditLevel: "SCQF Level 10 (Year 3 Undergraduate)",
			Description: "Deep neural networks and their applications.",
		},
		{
			Code:        "MATH08057",
			Name:        "Introduction to Linear Algebra",
			School:      "School of Mathematics",
			CreditLevel: "SCQF Level 8 (Year 1 Undergraduate)",
			Description: "Vectors, matrices and linear maps.",
		},
		{
			Code:        "HIST10234",
			Name:        "Medieval Scotland",
			School:      "School of History, Classics and Archaeology",
			Description: "Scottish society from 1100 to 1500.",
		},
	}
}

func newTestAdvisor(client anthropic.Client) *Advisor {
	a := NewAdvisor(client, catalog.NewRanker(catalog.DefaultWeights, nil), AdvisorOpts{
		Model:      "claude-haiku-4-5-20251001",
		MaxTokens:  512,
		MaxCourses: 2,
	})
	// Keep tests fast.
	a.retry.InitialBackoff = time.Millisecond
	a.retry.MaxBackoff = 2 * time.Millisecond
	return a
}

func TestAdvisor_Reply(t *testing.T) {
	mock := &mockAnthropicClient{response: textResponse("Try Machine Learning Practical (INFR10069).")}
	a := newTestAdvisor(mock)

	history := []anthropic.Message{
		{Role: "user", Content: "I'm interested in machine learning"},
	}
	got := a.Reply(context.Background(), history, advisorCourses())

	assert.Equal(t, "Try Machine Learning Practical (INFR10069).", got)
	require.Len(t, mock.requests, 1)

	req := mock.requests[0]
	assert.Equal(t, "claude-haiku-4-5-20251001", req.Model)
	assert.Equal(t, int64(512), req.MaxTokens)
	require.Len(t, req.System, 1)
	assert.Contains(t, req.System[0].Text, "course advisor for the University of Edinburgh")
	assert.Contains(t, req.System[0].Text, "INFR10069")
	assert.NotContains(t, req.System[0].Text, "HIST10234")
	assert.Equal(t, history, req.Messages)
}

func TestAdvisor_Reply_NoMatches(t *testing.T) {
	mock := &mockAnthropicClient{response: textResponse("Nothing matched, sorry.")}
	a := newTestAdvisor(mock)

	history := []anthropic.Message{
		{Role: "user", Content: "xylophone maintenance"},
	}
	a.Reply(context.Background(), history, advisorCourses())

	require.Len(t, mock.requests, 1)
	assert.Contains(t, mock.requests[0].System[0].Text, noCoursesBlock)
}

func TestAdvisor_Reply_NoUserTurn(t *testing.T) {
	mock := &mockAnthropicClient{}
	a := newTestAdvisor(mock)

	got := a.Reply(context.Background(), nil, advisorCourses())

	assert.Equal(t, noQuestionReply, got)
	assert.Empty(t, mock.requests)
}

func TestAdvisor_Reply_FallbackOnError(t *testing.T) {
	mock := &mockAnthropicClient{err: eris.New("invalid_request_error: bad key")}
	a := newTestAdvisor(mock)

	history := []anthropic.Message{
		{Role: "user", Content: "machine learning"},
	}
	got := a.Reply(context.Background(), history, advisorCourses())

	assert.Equal(t, defaultFallbackReply, got)
	// Non-transient errors are not retried.
	assert.Len(t, mock.requests, 1)
}

func TestAdvisor_Reply_RetriesTransient(t *testing.T) {
	mock := &mockAnthropicClient{err: eris.New("overloaded_error: try later")}
	a := newTestAdvisor(mock)

	history := []anthropic.Message{
		{Role: "user", Content: "machine learning"},
	}
	got := a.Reply(context.Background(), history, advisorCourses())

	assert.Equal(t, defaultFallbackReply, got)
	assert.Len(t, mock.requests, 3)
}

func TestAdvisor_Reply_EmptyResponse(t *testing.T) {
	mock := &mockAnthropicClient{response: textResponse("   ")}
	a := newTestAdvisor(mock)

	history := []anthropic.Message{
		{Role: "user", Content: "machine learning"},
	}
	got := a.Reply(context.Background(), history, advisorCourses())

	assert.Equal(t, defaultFallbackReply, got)
}

func TestAdvisor_Reply_CircuitOpensAfterSustainedFailure(t *testing.T) {
	mock := &mockAnthropicClient{err: eris.New("invalid_request_error: broken")}
	a := newTestAdvisor(mock)
	a.breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 3,
		ResetTimeout:     time.Hour,
	})

	history := []anthropic.Message{
		{Role: "user", Content: "machine learning"},
	}
	for i := 0; i < 5; i++ {
		got := a.Reply(context.Background(), history, advisorCourses())
		assert.Equal(t, defaultFallbackReply, got)
	}

	// After the third failure the breaker opens and the client is no
	// longer called.
	assert.Len(t, mock.requests, 3)
	assert.Equal(t, resilience.CircuitOpen, a.breaker.State())
}

func TestAdvisor_Reply_TrimsHistory(t *testing.T) {
	mock := &mockAnthropicClient{response: textResponse("ok")}
	a := newTestAdvisor(mock)
	a.maxHistory = 4

	var history []anthropic.Message
	for i := 0; i < 5; i++ {
		history = append(history,
			anthropic.Message{Role: "user", Content: "machine learning please"},
			anthropic.Message{Role: "assistant", Content: "noted"},
		)
	}
	a.Reply(context.Background(), history, advisorCourses())

	require.Len(t, mock.requests, 1)
	got := mock.requests[0].Messages
	require.Len(t, got, 4)
	assert.Equal(t, history[len(history)-4:], got)
}

func TestAdvisor_Reply_TrimmedHistoryStartsWithUserTurn(t *testing.T) {
	mock := &mockAnthropicClient{response: textResponse("ok")}
	a := newTestAdvisor(mock)
	a.maxHistory = 10

	// Real conversations end on the user's newest message, so the history is
	// odd-length once it grows past the limit.
	var history []anthropic.Message
	for i := 0; i < 5; i++ {
		history = append(history,
			anthropic.Message{Role: "user", Content: "machine learning please"},
			anthropic.Message{Role: "assistant", Content: "noted"},
		)
	}
	history = append(history, anthropic.Message{Role: "user", Content: "anything in year 2?"})

	a.Reply(context.Background(), history, advisorCourses())

	require.Len(t, mock.requests, 1)
	got := mock.requests[0].Messages
	require.NotEmpty(t, got)
	assert.Equal(t, "user", got[0].Role)
	assert.Len(t, got, 9)
	assert.Equal(t, history[len(history)-9:], got)
}

func TestAdvisor_Matches_CapsAtMaxCourses(t *testing.T) {
	a := newTestAdvisor(&mockAnthropicClient{})

	history := []anthropic.Message{{Role: "user", Content: "undergraduate school courses"}}
	matches := a.Matches(advisorCourses(), history)

	assert.LessOrEqual(t, len(matches), 2)
}
