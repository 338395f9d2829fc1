package gitlib

import (
	"fmt"
	"sort"

	git2go "github.com/libgit2/git2go/v34"
)

const historySeparator = "|"

// AuthorHistory walks every commit reachable from HEAD and returns the
// deduplicated "Name|<email>" author lines, sorted for determinism.
func (r *Repository) AuthorHistory() ([]string, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}
	defer walk.Free()

	headRef, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("get HEAD: %w", err)
	}
	defer headRef.Free()

	err = walk.Push(headRef.Target())
	if err != nil {
		return nil, fmt.Errorf("push HEAD to revwalk: %w", err)
	}

	walk.Sorting(git2go.SortTime)

	seen := map[string]struct{}{}

	walkErr := walk.Iterate(func(commit *git2go.Commit) bool {
		sig := commit.Author()
		line := sig.Name + historySeparator + "<" + sig.Email + ">"
		seen[line] = struct{}{}

		commit.Free()

		return true
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk commits: %w", walkErr)
	}

	lines := make([]string, 0, len(seen))
	for line := range seen {
		lines = append(lines, line)
	}

	sort.Strings(lines)

	return lines, nil
}
