package chat

import (
	"context"

	"github.com/hacktheburgh/coursefinder/pkg/anthropic"
)

// mockAnthropicClient implements anthropic.Client for testing. It records
// every CreateMessage request so tests can assert on prompt construction.
type mockAnthropicClient struct {
	response *anthropic.MessageResponse
	err      error
	requests []anthropic.MessageRequest
}

func (m *mockAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockAnthropicClient) CreateBatch(_ context.Context, _ anthropic.BatchRequest) (*anthropic.BatchResponse, error) {
	return nil, nil
}

func (m *mockAnthropicClient) GetBatch(_ context.Context, _ string) (*anthropic.BatchResponse, error) {
	return nil, nil
}

func (m *mockAnthropicClient) GetBatchResults(_ context.Context, _ string) (anthropic.BatchResultIterator, error) {
	return nil, nil
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		ID:    "msg_test",
		Model: "claude-haiku-4-5-20251001",
		Content: []anthropic.ContentBlock{
			{Type: "text", Text: text},
		},
		StopReason: "end_turn",
		Usage: anthropic.TokenUsage{
			InputTokens:  100,
			OutputTokens: 50,
		},
	}
}
