package retriever

import (
	"context"

	"github.com/ptit-ai/unirag/internal/s3vector"
	"github.com/ptit-ai/unirag/internal/types"
)

// S3VectorSearcher adapts the S3 Vectors service to the VectorSearcher
// interface.
type S3VectorSearcher struct {
	service *s3vector.S3VectorService
}

// NewS3VectorSearcher creates a VectorSearcher backed by Amazon S3 Vectors.
func NewS3VectorSearcher(service *s3vector.S3VectorService) *S3VectorSearcher {
	return &S3VectorSearcher{service: service}
}

func (s *S3VectorSearcher) Search(ctx context.Context, collection string, vector []float64, topK int, minScore float64) ([]types.RetrievedPassage, error) {
	matches, err := s.service.QueryVectors(ctx, collection, vector, topK)
	if err != nil {
		return nil, err
	}

	passages := make([]types.RetrievedPassage, 0, len(matches))
	for _, match := range matches {
		if match.Score < minScore {
			continue
		}
		passages = append(passages, types.RetrievedPassage{
			Text:   metadataString(match.Metadata, "content"),
			Title:  metadataString(match.Metadata, "title"),
			Origin: metadataString(match.Metadata, "origin"),
			Score:  match.Score,
		})
	}

	return passages, nil
}

func metadataString(metadata map[string]interface{}, key string) string {
	if metadata == nil {
		return ""
	}
	if value, ok := metadata[key].(string); ok {
		return value
	}
	return ""
}
