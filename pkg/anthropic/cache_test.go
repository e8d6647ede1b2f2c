package anthropic

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBuildCachedSystemBlocks(t *testing.T) {
	blocks := BuildCachedSystemBlocks("You write course summaries.")
	require.Len(t, blocks, 1)
	assert.Equal(t, "You write course summaries.", blocks[0].Text)
	require.NotNil(t, blocks[0].CacheControl)
	assert.Equal(t, "1h", blocks[0].CacheControl.TTL)
}

func TestPrimerRequest_Success(t *testing.T) {
	mc := new(MockClient)

	req := MessageRequest{
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 16,
		System:    BuildCachedSystemBlocks("You write course summaries."),
		Messages:  []Message{{Role: "user", Content: "ok"}},
	}

	mc.On("CreateMessage", mock.Anything, req).Return(&MessageResponse{
		ID: "msg_primer",
		Usage: TokenUsage{
			InputTokens:              4,
			CacheCreationInputTokens: 900,
		},
	}, nil)

	resp, err := PrimerRequest(context.Background(), mc, req)
	require.NoError(t, err)
	assert.Equal(t, int64(900), resp.Usage.CacheCreationInputTokens)

	mc.AssertExpectations(t)
}

func TestPrimerRequest_Error(t *testing.T) {
	mc := new(MockClient)

	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("overloaded"))

	_, err := PrimerRequest(context.Background(), mc, MessageRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
}
