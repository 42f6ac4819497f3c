package confidence

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ptit-ai/unirag/internal/types"
)

func passages(scores ...float64) []types.RetrievedPassage {
	result := make([]types.RetrievedPassage, len(scores))
	for i, s := range scores {
		result[i] = types.RetrievedPassage{Text: "passage", Score: s}
	}
	return result
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float64
		expected float64
	}{
		{
			name:     "empty set scores zero",
			scores:   nil,
			expected: 0.0,
		},
		{
			name:     "single passage",
			scores:   []float64{0.7},
			expected: 0.7,
		},
		{
			name:     "mean of several passages",
			scores:   []float64{0.9, 0.85, 0.8},
			expected: 0.85,
		},
		{
			name:     "one strong hit diluted by weak ones",
			scores:   []float64{0.95, 0.2, 0.2, 0.2},
			expected: 0.3875,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.expected, Score(passages(tt.scores...)), 1e-9)
		})
	}
}

func TestSufficient(t *testing.T) {
	require.True(t, Sufficient(0.85, 0.6))
	require.True(t, Sufficient(0.6, 0.6), "equality clears the threshold")
	require.False(t, Sufficient(0.59, 0.6))
	require.False(t, Sufficient(0.0, 0.6))
	require.True(t, Sufficient(0.0, 0.0), "zero threshold accepts everything")
}
