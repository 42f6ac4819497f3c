package retriever

import (
	"context"
	"encoding/json"

	"github.com/ptit-ai/unirag/internal/opensearch"
	"github.com/ptit-ai/unirag/internal/types"
)

// OpenSearchSearcher adapts the OpenSearch client to the VectorSearcher
// interface.
type OpenSearchSearcher struct {
	client *opensearch.Client
}

// NewOpenSearchSearcher creates a VectorSearcher backed by OpenSearch kNN.
func NewOpenSearchSearcher(client *opensearch.Client) *OpenSearchSearcher {
	return &OpenSearchSearcher{client: client}
}

type passageDocument struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Origin  string `json:"origin"`
}

func (s *OpenSearchSearcher) Search(ctx context.Context, collection string, vector []float64, topK int, minScore float64) ([]types.RetrievedPassage, error) {
	query := &opensearch.VectorQuery{
		Vector:   vector,
		K:        topK,
		Size:     topK,
		MinScore: minScore,
	}

	resp, err := s.client.SearchDenseVector(ctx, collection, query)
	if err != nil {
		return nil, err
	}

	passages := make([]types.RetrievedPassage, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		var doc passageDocument
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			continue
		}
		if doc.Content == "" {
			continue
		}
		passages = append(passages, types.RetrievedPassage{
			Text:   doc.Content,
			Title:  doc.Title,
			Origin: doc.Origin,
			Score:  hit.Score,
		})
	}

	return passages, nil
}
