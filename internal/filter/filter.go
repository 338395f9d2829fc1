// Package filter decides which repository files take part in the
// analysis, by extension allow/deny lists and by vendored-path
// detection.
package filter

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/src-d/enry/v2"
)

// noExtension labels files without an extension in include/exclude
// lists and in the omitted report.
const noExtension = "file"

// Filter selects analyzable files. Include wins over exclude: a
// non-empty include list admits only its extensions, and the exclude
// list is consulted only when include is empty.
type Filter struct {
	include map[string]struct{}
	exclude map[string]struct{}

	omitted map[string]int
}

// New builds a filter from extension lists. Extensions are matched
// without their leading dot and case-insensitively.
func New(include, exclude []string) *Filter {
	return &Filter{
		include: toSet(include),
		exclude: toSet(exclude),
		omitted: map[string]int{},
	}
}

func toSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if normalized != "" {
			set[normalized] = struct{}{}
		}
	}

	return set
}

// Extension returns the normalized extension of path, or "file" when
// the path has none.
func Extension(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return noExtension
	}

	return strings.ToLower(ext)
}

// Admit reports whether path takes part in the analysis and records
// the extension of every rejected path.
func (f *Filter) Admit(path string) bool {
	if enry.IsVendor(path) || enry.IsDotFile(path) {
		f.omit(path)

		return false
	}

	ext := Extension(path)

	if len(f.include) > 0 {
		if _, ok := f.include[ext]; !ok {
			f.omit(path)

			return false
		}

		return true
	}

	if _, ok := f.exclude[ext]; ok {
		f.omit(path)

		return false
	}

	return true
}

func (f *Filter) omit(path string) {
	f.omitted[Extension(path)]++
}

// OmittedCount is one rejected extension with how many files it covered.
type OmittedCount struct {
	Extension string
	Count     int
}

// Omitted returns the rejected extensions with counts, most frequent
// first, ties broken by extension.
func (f *Filter) Omitted() []OmittedCount {
	counts := make([]OmittedCount, 0, len(f.omitted))
	for ext, count := range f.omitted {
		counts = append(counts, OmittedCount{Extension: ext, Count: count})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}

		return counts[i].Extension < counts[j].Extension
	})

	return counts
}
