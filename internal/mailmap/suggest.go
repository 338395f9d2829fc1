package mailmap

import (
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultSuggestThreshold is the minimum similarity ratio for a pair
// of emails to be reported as a merge candidate.
const DefaultSuggestThreshold = 0.9

// Suggestion pairs two emails that look like the same contributor.
// Suggestions are advisory: they never feed back into resolution.
type Suggestion struct {
	Left  string
	Right string
	Score float64
}

// Similarity returns a ratio in [0, 1] measuring how much of the two
// strings matches, based on a character-level diff.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}

	if len(a)+len(b) == 0 {
		return 1
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)

	matched := 0
	for _, diff := range diffs {
		if diff.Type == diffmatchpatch.DiffEqual {
			matched += len(diff.Text)
		}
	}

	return 2 * float64(matched) / float64(len(a)+len(b))
}

// Suggest reports every pair of emails whose similarity is at or
// above threshold, highest score first.
func Suggest(emails []string, threshold float64) []Suggestion {
	sorted := make([]string, len(emails))
	copy(sorted, emails)
	sort.Strings(sorted)

	var suggestions []Suggestion

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			score := Similarity(sorted[i], sorted[j])
			if score >= threshold {
				suggestions = append(suggestions, Suggestion{
					Left:  sorted[i],
					Right: sorted[j],
					Score: score,
				})
			}
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}

		if suggestions[i].Left != suggestions[j].Left {
			return suggestions[i].Left < suggestions[j].Left
		}

		return suggestions[i].Right < suggestions[j].Right
	})

	return suggestions
}
