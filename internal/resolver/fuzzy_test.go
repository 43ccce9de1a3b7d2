package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDamerauLevenshtein(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"identical", "header", "header", 0},
		{"single substitution", "header", "heeder", 1},
		{"single insertion", "header", "headers", 1},
		{"single deletion", "header", "eader", 1},
		{"adjacent transposition", "header", "haeder", 1},
		{"empty vs non-empty", "", "abc", 3},
		{"both empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, damerauLevenshtein(tt.a, tt.b))
		})
	}
}

func TestBestFuzzyMatch(t *testing.T) {
	candidates := []string{"Introduction", "Getting-Started", "Requirements"}

	best, ok := bestFuzzyMatch("introdution", candidates, 3)
	assert.True(t, ok)
	assert.Equal(t, "Introduction", best)

	_, ok = bestFuzzyMatch("completely-unrelated-text", candidates, 3)
	assert.False(t, ok)
}

func TestBestFuzzyMatch_NoCandidates(t *testing.T) {
	_, ok := bestFuzzyMatch("anything", nil, 3)
	assert.False(t, ok)
}
