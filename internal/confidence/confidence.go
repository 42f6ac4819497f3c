// Package confidence scores a retrieval result set so the router can
// decide whether the knowledge base alone is sufficient to answer.
package confidence

import "github.com/ptit-ai/unirag/internal/types"

// Score returns the arithmetic mean of the passage similarity scores.
// An empty set scores 0.0, which always reads as insufficient.
func Score(passages []types.RetrievedPassage) float64 {
	if len(passages) == 0 {
		return 0.0
	}

	var sum float64
	for _, p := range passages {
		sum += p.Score
	}
	return sum / float64(len(passages))
}

// Sufficient reports whether the given confidence clears the threshold.
// Equality clears it.
func Sufficient(confidence, threshold float64) bool {
	return confidence >= threshold
}
