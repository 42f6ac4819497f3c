// Package retriever turns a user query into scored knowledge-base passages.
// It embeds the query text and runs a similarity search against whichever
// vector backend is configured.
package retriever

import (
	"context"
	"log"
	"time"

	"github.com/ptit-ai/unirag/internal/types"
)

const (
	minTopK = 1
	maxTopK = 20
)

// Embedder generates a dense vector for a piece of text.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// VectorSearcher runs a similarity search against a collection and returns
// scored passages, best first. An empty result is a normal outcome.
type VectorSearcher interface {
	Search(ctx context.Context, collection string, vector []float64, topK int, minScore float64) ([]types.RetrievedPassage, error)
}

// Retriever embeds queries and searches the knowledge base.
type Retriever struct {
	embedder          Embedder
	searcher          VectorSearcher
	defaultCollection string
	defaultTopK       int
	scoreThreshold    float64
}

// New creates a Retriever with the given backends and defaults.
func New(embedder Embedder, searcher VectorSearcher, cfg *types.Config) *Retriever {
	return &Retriever{
		embedder:          embedder,
		searcher:          searcher,
		defaultCollection: cfg.DefaultCollection,
		defaultTopK:       cfg.RetrievalTopK,
		scoreThreshold:    cfg.ScoreThreshold,
	}
}

// Retrieve embeds the query text and returns the top-k passages from the
// knowledge base. Per-query values override the configured defaults; top-k
// is clamped to [1, 20]. Finding nothing is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query types.Query) ([]types.RetrievedPassage, error) {
	if query.Text == "" {
		return nil, types.NewValidationError("query text cannot be empty")
	}

	collection := query.Collection
	if collection == "" {
		collection = r.defaultCollection
	}

	topK := query.TopK
	if topK <= 0 {
		topK = r.defaultTopK
	}
	topK = clampTopK(topK)

	minScore := r.scoreThreshold
	if query.ScoreThreshold > 0 {
		minScore = query.ScoreThreshold
	}

	vector, err := r.embedder.GenerateEmbedding(ctx, query.Text)
	if err != nil {
		return nil, &types.QueryError{
			Type:    types.ErrorTypeEmbedding,
			Message: "failed to embed query",
			Err:     err,
		}
	}

	start := time.Now()
	passages, err := r.searcher.Search(ctx, collection, vector, topK, minScore)
	if err != nil {
		return nil, &types.QueryError{
			Type:    types.ErrorTypeVectorQuery,
			Message: "vector search failed",
			Err:     err,
		}
	}

	log.Printf("Retrieved %d passages from %s in %v", len(passages), collection, time.Since(start))
	return passages, nil
}

func clampTopK(k int) int {
	if k < minTopK {
		return minTopK
	}
	if k > maxTopK {
		return maxTopK
	}
	return k
}
