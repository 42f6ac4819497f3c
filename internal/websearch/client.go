// Package websearch queries an external web search API for queries the
// knowledge base cannot answer with confidence.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ptit-ai/unirag/internal/types"
)

const defaultEndpoint = "https://api.tavily.com/search"

// Client calls a Tavily-compatible search API over HTTPS.
type Client struct {
	apiKey     string
	endpoint   string
	maxResults int
	httpClient *http.Client
}

// Result is the outcome of one web search. Answer may be empty; Sources
// may be empty when the provider found nothing relevant.
type Result struct {
	Answer  string
	Sources []types.WebSource
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type searchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// NewClient creates a web search client from the service configuration.
func NewClient(cfg *types.Config) (*Client, error) {
	if cfg.WebSearchAPIKey == "" {
		return nil, fmt.Errorf("web search API key is required")
	}

	endpoint := cfg.WebSearchEndpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	maxResults := cfg.WebSearchMaxResults
	if maxResults <= 0 {
		maxResults = 3
	}

	timeout := cfg.WebSearchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		apiKey:     cfg.WebSearchAPIKey,
		endpoint:   endpoint,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Search runs one web search for the given query text. Provider failures
// come back as errors; an empty source list is a valid result.
func (c *Client) Search(ctx context.Context, query string) (*Result, error) {
	if query == "" {
		return nil, types.NewValidationError("search query cannot be empty")
	}

	reqBody := searchRequest{
		APIKey:        c.apiKey,
		Query:         query,
		MaxResults:    c.maxResults,
		IncludeAnswer: true,
	}

	bodyJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &types.QueryError{
			Type:    types.ErrorTypeWebSearch,
			Message: "web search request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &types.QueryError{
			Type:    types.ErrorTypeWebSearch,
			Message: fmt.Sprintf("web search API returned status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var searchResp searchResponse
	if err := json.Unmarshal(respBody, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search response: %w", err)
	}

	sources := make([]types.WebSource, 0, len(searchResp.Results))
	for _, r := range searchResp.Results {
		if r.URL == "" {
			continue
		}
		sources = append(sources, types.WebSource{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
		})
	}

	return &Result{
		Answer:  searchResp.Answer,
		Sources: sources,
	}, nil
}
