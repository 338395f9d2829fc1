package mailmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity_Identical(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, Similarity("alice@corp.com", "alice@corp.com"))
}

func TestSimilarity_BothEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, Similarity("", ""))
}

func TestSimilarity_Disjoint(t *testing.T) {
	t.Parallel()

	assert.Less(t, Similarity("aaaa", "zzzz"), 0.5)
}

func TestSimilarity_NearMatches(t *testing.T) {
	t.Parallel()

	score := Similarity("alice.cooper@corp.com", "alice.cooper@corp.org")

	assert.Greater(t, score, 0.7)
	assert.Less(t, score, 1.0)
}

func TestSuggest_PairsSimilarEmails(t *testing.T) {
	t.Parallel()

	emails := []string{
		"alice.cooper@corp.com",
		"alice.cooper@corp.org",
		"bob@example.net",
	}

	suggestions := Suggest(emails, 0.8)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "alice.cooper@corp.com", suggestions[0].Left)
	assert.Equal(t, "alice.cooper@corp.org", suggestions[0].Right)
	assert.GreaterOrEqual(t, suggestions[0].Score, 0.8)
}

func TestSuggest_NoPairsAboveThreshold(t *testing.T) {
	t.Parallel()

	suggestions := Suggest([]string{"alice@corp.com", "bob@example.net"}, 0.9)

	assert.Empty(t, suggestions)
}

func TestSuggest_DeterministicOrder(t *testing.T) {
	t.Parallel()

	forward := []string{
		"alice.cooper@corp.com",
		"alice.cooper@corp.org",
		"alice.cooper@corp.net",
	}
	permuted := []string{forward[2], forward[0], forward[1]}

	first := Suggest(forward, 0.8)
	second := Suggest(permuted, 0.8)

	assert.Equal(t, first, second)
}
