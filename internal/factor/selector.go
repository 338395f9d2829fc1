// Package factor derives the truck factor: the smallest set of
// contributors whose loss drops the remaining share of the project
// below a critical threshold.
package factor

import "sort"

// DefaultCriticalLoss is the share of the project that must survive
// losing the selected contributors.
const DefaultCriticalLoss = 0.5

// Entry is one selected contributor with the value removed and the
// grand total it was removed from.
type Entry struct {
	Identity string
	Value    float64
	Total    float64
}

// FromAuthorship selects the truck factor over primary-authorship
// counts. The walk stops as soon as the surviving share falls
// strictly below criticalLoss.
func FromAuthorship(total int, authored map[string]int, criticalLoss float64) []Entry {
	tally := make(map[string]float64, len(authored))
	for identity, count := range authored {
		tally[identity] = float64(count)
	}

	return walk(float64(total), tally, criticalLoss, false)
}

// FromKnowledge selects the truck factor over decayed knowledge. The
// walk stops once the surviving share reaches criticalLoss, threshold
// included. The inclusive comparison differs from FromAuthorship on
// purpose and is pinned by tests.
func FromKnowledge(total float64, knowledge map[string]float64, criticalLoss float64) []Entry {
	return walk(total, knowledge, criticalLoss, true)
}

// walk greedily removes the largest contributors until the remaining
// share crosses criticalLoss. A non-positive total means there is no
// data to select from and yields nil. If the threshold is never
// crossed the whole sorted tally comes back.
func walk(total float64, tally map[string]float64, criticalLoss float64, inclusive bool) []Entry {
	if total <= 0 {
		return nil
	}

	entries := make([]Entry, 0, len(tally))
	for identity, value := range tally {
		entries = append(entries, Entry{
			Identity: identity,
			Value:    value,
			Total:    total,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}

		return entries[i].Identity < entries[j].Identity
	})

	remaining := total

	for i, entry := range entries {
		remaining -= entry.Value

		if crossed(remaining/total, criticalLoss, inclusive) {
			return entries[:i+1]
		}
	}

	return entries
}

func crossed(ratio, criticalLoss float64, inclusive bool) bool {
	if inclusive {
		return ratio <= criticalLoss
	}

	return ratio < criticalLoss
}
