package opensearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
)

type VectorSearchResult struct {
	ID     string          `json:"_id"`
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
	Index  string          `json:"_index"`
}

type VectorSearchResponse struct {
	Hits struct {
		Total struct {
			Value    int    `json:"value"`
			Relation string `json:"relation"`
		} `json:"total"`
		Hits []VectorSearchResult `json:"hits"`
	} `json:"hits"`
	TimedOut bool `json:"timed_out"`
	Took     int  `json:"took"`
}

type VectorQuery struct {
	Vector      []float64         `json:"vector"`
	VectorField string            `json:"vector_field"`
	K           int               `json:"k"`
	EfSearch    int               `json:"ef_search,omitempty"`
	Filters     map[string]string `json:"filters,omitempty"`
	MinScore    float64           `json:"min_score,omitempty"`
	Size        int               `json:"size,omitempty"`
}

// SearchDenseVector runs a kNN query against the given collection index and
// returns scored hits. An empty hit list is a normal outcome, not an error.
func (c *Client) SearchDenseVector(ctx context.Context, indexName string, query *VectorQuery) (*VectorSearchResponse, error) {
	if query == nil {
		return nil, NewSearchError("validation", "query cannot be nil")
	}

	if len(query.Vector) == 0 {
		return nil, NewSearchError("validation", "vector cannot be empty")
	}

	// Set defaults
	if query.VectorField == "" {
		query.VectorField = "embedding"
	}
	if query.K <= 0 {
		query.K = 50
	}
	if query.Size <= 0 {
		query.Size = 10
	}
	if query.EfSearch <= 0 {
		query.EfSearch = query.K * 2
	}

	startTime := time.Now()
	var result *VectorSearchResponse

	operation := func() error {
		if err := c.WaitForRateLimit(ctx); err != nil {
			return fmt.Errorf("rate limit error: %w", err)
		}

		searchBody := c.buildVectorSearchBody(query)
		bodyJSON, err := json.Marshal(searchBody)
		if err != nil {
			return NewSearchError("validation", fmt.Sprintf("failed to marshal search body: %v", err))
		}

		req := &opensearchapi.SearchReq{
			Indices: []string{indexName},
			Body:    strings.NewReader(string(bodyJSON)),
		}

		searchResp, err := c.client.Search(ctx, req)
		if err != nil {
			return ClassifyConnectionError(err)
		}

		if searchResp == nil {
			return NewSearchError("response", "received nil response from OpenSearch")
		}

		vectorResponse := &VectorSearchResponse{
			Took: searchResp.Took,
		}
		vectorResponse.Hits.Total.Value = searchResp.Hits.Total.Value
		vectorResponse.Hits.Total.Relation = searchResp.Hits.Total.Relation

		vectorResponse.Hits.Hits = make([]VectorSearchResult, len(searchResp.Hits.Hits))
		for i, hit := range searchResp.Hits.Hits {
			vectorResponse.Hits.Hits[i] = VectorSearchResult{
				Index:  hit.Index,
				ID:     hit.ID,
				Score:  float64(hit.Score),
				Source: hit.Source,
			}
		}

		result = vectorResponse
		return nil
	}

	err := c.ExecuteWithRetry(ctx, operation, "VectorSearch")

	if err == nil && result != nil {
		log.Printf("Vector search completed in %v, found %d results",
			time.Since(startTime), result.Hits.Total.Value)
	}

	return result, err
}

func (c *Client) buildVectorSearchBody(query *VectorQuery) map[string]interface{} {
	knnQuery := map[string]interface{}{
		query.VectorField: map[string]interface{}{
			"vector": query.Vector,
			"k":      query.K,
		},
	}

	if query.EfSearch > 0 {
		knnQuery[query.VectorField].(map[string]interface{})["method_parameters"] = map[string]interface{}{
			"ef_search": query.EfSearch,
		}
	}

	body := map[string]interface{}{
		"size": query.Size,
		"query": map[string]interface{}{
			"knn": knnQuery,
		},
	}

	if query.MinScore > 0 {
		body["min_score"] = query.MinScore
	}

	if len(query.Filters) > 0 {
		filters := make([]map[string]interface{}, 0, len(query.Filters))
		for field, value := range query.Filters {
			filters = append(filters, map[string]interface{}{
				"term": map[string]string{
					field: value,
				},
			})
		}

		body["query"] = map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{"knn": knnQuery},
				},
				"filter": filters,
			},
		}
	}

	return body
}

// CreateVectorIndex creates a kNN-enabled index for a document collection.
func (c *Client) CreateVectorIndex(ctx context.Context, indexName string, dimension int, engine string, spaceType string) error {
	if err := c.WaitForRateLimit(ctx); err != nil {
		return fmt.Errorf("rate limit error: %w", err)
	}

	if engine == "" {
		engine = "lucene"
	}
	if spaceType == "" {
		spaceType = "cosinesimil"
	}

	settings := map[string]interface{}{
		"settings": map[string]interface{}{
			"index": map[string]interface{}{
				"knn": true,
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title": map[string]interface{}{
					"type": "text",
				},
				"content": map[string]interface{}{
					"type": "text",
				},
				"origin": map[string]interface{}{
					"type": "keyword",
				},
				"category": map[string]interface{}{
					"type": "keyword",
				},
				"updated_at": map[string]interface{}{
					"type": "date",
				},
				"embedding": map[string]interface{}{
					"type":      "knn_vector",
					"dimension": dimension,
					"method": map[string]interface{}{
						"engine":     engine,
						"space_type": spaceType,
						"name":       "hnsw",
						"parameters": map[string]interface{}{},
					},
				},
			},
		},
	}

	bodyJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal index settings: %w", err)
	}

	req := opensearchapi.IndicesCreateReq{
		Index: indexName,
		Body:  strings.NewReader(string(bodyJSON)),
	}

	if _, err := c.client.Indices.Create(ctx, req); err != nil {
		return ClassifyConnectionError(err)
	}

	return nil
}
