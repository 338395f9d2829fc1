// Package ownership folds per-file blame results into global
// per-contributor knowledge and file-authorship tallies.
package ownership

import (
	"sort"

	"github.com/Sumatoshi-tech/truckfactor/internal/blame"
	"github.com/Sumatoshi-tech/truckfactor/internal/decay"
	"github.com/Sumatoshi-tech/truckfactor/internal/mailmap"
)

// Contribution is one identity's decayed knowledge in a single file.
type Contribution struct {
	Identity string
	Value    float64
}

// FileResult is the resolved, decayed ownership of one file.
type FileResult struct {
	File          string
	PrimaryAuthor string
	Contributions []Contribution
}

// ComputeFile resolves and decays a file's blame log into per-identity
// contributions. Contributions come back sorted by descending value,
// ties broken by ascending identity, so the primary author of a tied
// file is always the lexicographically smallest identity.
func ComputeFile(log *blame.FileLog, model decay.Model, resolver *mailmap.Resolver) FileResult {
	values := map[string]float64{}

	for email, fragments := range log.Fragments {
		identity := resolver.Resolve(email)

		for _, frag := range fragments {
			if frag.Lines == 0 {
				continue
			}

			values[identity] += model.Value(frag)
		}
	}

	result := FileResult{File: log.File}
	if len(values) == 0 {
		return result
	}

	result.Contributions = make([]Contribution, 0, len(values))
	for identity, value := range values {
		result.Contributions = append(result.Contributions, Contribution{
			Identity: identity,
			Value:    value,
		})
	}

	sort.Slice(result.Contributions, func(i, j int) bool {
		if result.Contributions[i].Value != result.Contributions[j].Value {
			return result.Contributions[i].Value > result.Contributions[j].Value
		}

		return result.Contributions[i].Identity < result.Contributions[j].Identity
	})

	result.PrimaryAuthor = result.Contributions[0].Identity

	return result
}

// Tallies accumulates knowledge values and primary-author counts
// across files.
type Tallies struct {
	Knowledge map[string]float64
	Authored  map[string]int
}

// NewTallies returns empty tallies ready to accumulate.
func NewTallies() *Tallies {
	return &Tallies{
		Knowledge: map[string]float64{},
		Authored:  map[string]int{},
	}
}

// Add folds one file result in. Files with no contributions are
// no-ops: they count neither knowledge nor authorship.
func (t *Tallies) Add(result FileResult) {
	if len(result.Contributions) == 0 {
		return
	}

	for _, contribution := range result.Contributions {
		t.Knowledge[contribution.Identity] += contribution.Value
	}

	t.Authored[result.PrimaryAuthor]++
}

// Merge folds another tally set in. Merge is commutative, so partial
// tallies from parallel workers combine in any order.
func (t *Tallies) Merge(other *Tallies) {
	for identity, value := range other.Knowledge {
		t.Knowledge[identity] += value
	}

	for identity, count := range other.Authored {
		t.Authored[identity] += count
	}
}

// TotalKnowledge sums decayed knowledge over every identity.
func (t *Tallies) TotalKnowledge() float64 {
	var total float64
	for _, value := range t.Knowledge {
		total += value
	}

	return total
}

// TotalFiles sums primary authorship counts over every identity.
func (t *Tallies) TotalFiles() int {
	var total int
	for _, count := range t.Authored {
		total += count
	}

	return total
}
