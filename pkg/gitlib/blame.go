package gitlib

import (
	"fmt"
	"strconv"
	"strings"

	git2go "github.com/libgit2/git2go/v34"
)

// BlameIncremental blames one file at HEAD and renders the result in
// the incremental blame text format: a fragment header per hunk
// followed by the hunk's author metadata.
func (r *Repository) BlameIncremental(path string) (string, error) {
	opts, err := git2go.DefaultBlameOptions()
	if err != nil {
		return "", fmt.Errorf("get blame options: %w", err)
	}

	blame, err := r.repo.BlameFile(path, &opts)
	if err != nil {
		return "", fmt.Errorf("blame %s: %w", path, err)
	}
	defer blame.Free()

	var out strings.Builder

	for i := range blame.HunkCount() {
		hunk, hunkErr := blame.HunkByIndex(i)
		if hunkErr != nil {
			return "", fmt.Errorf("blame hunk %d of %s: %w", i, path, hunkErr)
		}

		writeHunk(&out, path, hunk)
	}

	return out.String(), nil
}

func writeHunk(out *strings.Builder, path string, hunk git2go.BlameHunk) {
	out.WriteString(hunk.FinalCommitId.String())
	out.WriteByte(' ')
	out.WriteString(strconv.Itoa(int(hunk.OrigStartLineNumber)))
	out.WriteByte(' ')
	out.WriteString(strconv.Itoa(int(hunk.FinalStartLineNumber)))
	out.WriteByte(' ')
	out.WriteString(strconv.Itoa(int(hunk.LinesInHunk)))
	out.WriteByte('\n')

	if sig := hunk.FinalSignature; sig != nil {
		out.WriteString("author " + sig.Name + "\n")
		out.WriteString("author-mail <" + sig.Email + ">\n")
		out.WriteString("author-time " + strconv.FormatInt(sig.When.Unix(), 10) + "\n")
	}

	out.WriteString("filename " + path + "\n")
}
