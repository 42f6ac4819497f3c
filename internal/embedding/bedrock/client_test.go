package bedrock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetModelInfo(t *testing.T) {
	tests := []struct {
		modelID string
		wantDim int
	}{
		{"amazon.titan-embed-text-v2:0", 1024},
		{"amazon.titan-embed-text-v1", 1536},
		{"some.future-model", 1024},
	}

	for _, tt := range tests {
		t.Run(tt.modelID, func(t *testing.T) {
			c := &BedrockClient{modelID: tt.modelID}
			id, dim := c.GetModelInfo()
			require.Equal(t, tt.modelID, id)
			require.Equal(t, tt.wantDim, dim)
		})
	}
}

func TestGenerateChatResponseValidation(t *testing.T) {
	c := &BedrockClient{modelID: "anthropic.claude-3-haiku"}

	_, err := c.GenerateChatResponse(context.Background(), nil)
	require.Error(t, err)

	// A lone system message leaves nothing for the model to respond to.
	_, err = c.GenerateChatResponse(context.Background(), []ChatMessage{
		{Role: "system", Content: "be terse"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "user or assistant")
}

func TestGenerateEmbeddingRejectsEmptyText(t *testing.T) {
	c := &BedrockClient{}
	_, err := c.GenerateEmbedding(context.Background(), "")
	require.Error(t, err)
}
