package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockClient wraps AWS Bedrock for both Titan embeddings and Claude text
// generation, depending on the configured model ID.
type BedrockClient struct {
	client  *bedrockruntime.Client
	modelID string
}

// TitanEmbeddingRequest represents the request structure for Titan embedding models
type TitanEmbeddingRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions,omitempty"`
	Normalize  bool   `json:"normalize,omitempty"`
}

// TitanEmbeddingResponse represents the response structure from Titan embedding models
type TitanEmbeddingResponse struct {
	Embedding           []float64 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

// ChatMessage represents a chat message with role and content
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the request payload for Claude models on Bedrock
type ChatRequest struct {
	Messages         []ChatMessage `json:"messages"`
	MaxTokens        int           `json:"max_tokens,omitempty"`
	Temperature      float64       `json:"temperature,omitempty"`
	StopSequences    []string      `json:"stop_sequences,omitempty"`
	AnthropicVersion string        `json:"anthropic_version,omitempty"`
	System           string        `json:"system,omitempty"`
}

// ChatResponse represents the response from chat models
type ChatResponse struct {
	Content []ChatContent `json:"content"`
	Usage   ChatUsage     `json:"usage,omitempty"`
}

// ChatContent represents the content in chat response
type ChatContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ChatUsage represents token usage information
type ChatUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// NewBedrockClient creates a new AWS Bedrock client
func NewBedrockClient(awsConfig aws.Config, modelID string) *BedrockClient {
	client := bedrockruntime.NewFromConfig(awsConfig)

	// Default to Titan v2 model if not specified
	if modelID == "" {
		modelID = "amazon.titan-embed-text-v2:0"
	}

	return &BedrockClient{
		client:  client,
		modelID: modelID,
	}
}

// GenerateEmbedding creates an embedding vector from the given text using AWS Bedrock
func (c *BedrockClient) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	request := TitanEmbeddingRequest{
		InputText:  text,
		Dimensions: 1024, // Titan v2 default dimension
		Normalize:  true,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	input := &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        requestBody,
	}

	result, err := c.client.InvokeModel(ctx, input)
	if err != nil {
		log.Printf("ERROR: failed to invoke bedrock model %s: %v", c.modelID, err)
		return nil, fmt.Errorf("failed to invoke bedrock model: %w", err)
	}

	var response TitanEmbeddingResponse
	if err := json.Unmarshal(result.Body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Embedding) == 0 {
		return nil, fmt.Errorf("no embedding data in response")
	}

	return response.Embedding, nil
}

// GenerateChatResponse generates a chat response using the configured chat model
func (c *BedrockClient) GenerateChatResponse(ctx context.Context, messages []ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty")
	}

	// Bedrock Claude only accepts user/assistant roles; system prompts go
	// into the dedicated system field.
	var systemPrompts []string
	sanitized := make([]ChatMessage, 0, len(messages))
	for _, msg := range messages {
		switch strings.ToLower(msg.Role) {
		case "system":
			systemPrompts = append(systemPrompts, msg.Content)
		default:
			sanitized = append(sanitized, msg)
		}
	}
	if len(sanitized) == 0 {
		return "", fmt.Errorf("chat messages must include at least one user or assistant message")
	}

	request := ChatRequest{
		Messages:         sanitized,
		MaxTokens:        4000,
		Temperature:      0.7,
		AnthropicVersion: "bedrock-2023-05-31",
	}
	if len(systemPrompts) > 0 {
		request.System = strings.Join(systemPrompts, "\n\n")
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	input := &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        requestBody,
	}

	result, err := c.client.InvokeModel(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to invoke bedrock model: %w", err)
	}

	var response ChatResponse
	if err := json.Unmarshal(result.Body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return response.Content[0].Text, nil
}

// Generate produces a completion for a single prompt with an optional system
// prompt. It satisfies the llm.Generator contract used by the query router.
func (c *BedrockClient) Generate(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	messages := make([]ChatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: prompt})
	return c.GenerateChatResponse(ctx, messages)
}

// ValidateConnection checks if the Bedrock service is accessible
func (c *BedrockClient) ValidateConnection(ctx context.Context) error {
	// Chat models (Claude) are probed with a chat request, embedding models
	// (Titan) with an embedding request.
	if strings.Contains(strings.ToLower(c.modelID), "claude") {
		_, err := c.GenerateChatResponse(ctx, []ChatMessage{{Role: "user", Content: "Hello"}})
		if err != nil {
			return fmt.Errorf("connection validation failed: %w", err)
		}
		return nil
	}

	if _, err := c.GenerateEmbedding(ctx, "test connection"); err != nil {
		return fmt.Errorf("connection validation failed: %w", err)
	}
	return nil
}

// GetModelInfo returns the model ID and embedding dimension being used
func (c *BedrockClient) GetModelInfo() (string, int) {
	dimensions := map[string]int{
		"amazon.titan-embed-text-v2:0": 1024,
		"amazon.titan-embed-text-v1":   1536,
	}

	dim, exists := dimensions[c.modelID]
	if !exists {
		dim = 1024
	}

	return c.modelID, dim
}
