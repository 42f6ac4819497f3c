package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ptit-ai/unirag/internal/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&types.Config{
		WebSearchAPIKey:     "test-key",
		WebSearchEndpoint:   server.URL,
		WebSearchMaxResults: 3,
		WebSearchTimeout:    5 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "test-key", req.APIKey)
		require.Equal(t, "PTIT dormitory fees", req.Query)
		require.Equal(t, 3, req.MaxResults)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"answer": "Dormitory fees are posted on the PTIT student portal.",
			"results": []map[string]interface{}{
				{"title": "PTIT Student Portal", "url": "https://portal.ptit.edu.vn/fees", "content": "Dormitory fee schedule", "score": 0.92},
				{"title": "No URL entry", "url": "", "content": "dropped"},
			},
		})
	})

	result, err := client.Search(context.Background(), "PTIT dormitory fees")
	require.NoError(t, err)
	require.Equal(t, "Dormitory fees are posted on the PTIT student portal.", result.Answer)
	require.Len(t, result.Sources, 1, "entries without URLs are dropped")
	require.Equal(t, "PTIT Student Portal", result.Sources[0].Title)
	require.Equal(t, "https://portal.ptit.edu.vn/fees", result.Sources[0].URL)
}

func TestSearchEmptyResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"answer": "", "results": []interface{}{}})
	})

	result, err := client.Search(context.Background(), "obscure query")
	require.NoError(t, err)
	require.Empty(t, result.Sources)
}

func TestSearchAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), "q")
	require.Error(t, err)

	var qerr *types.QueryError
	require.ErrorAs(t, err, &qerr)
	require.Equal(t, types.ErrorTypeWebSearch, qerr.Type)
}

func TestSearchEmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty query")
	})

	_, err := client.Search(context.Background(), "")
	require.Error(t, err)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(&types.Config{})
	require.Error(t, err)
}
