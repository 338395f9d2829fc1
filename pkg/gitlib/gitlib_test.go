package gitlib_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/truckfactor/internal/blame"
	"github.com/Sumatoshi-tech/truckfactor/pkg/gitlib"
)

const (
	testAuthorName  = "Test User"
	testAuthorEmail = "test@example.com"
)

// testRepo wraps a scratch repository for integration testing.
type testRepo struct {
	t       *testing.T
	path    string
	native  *git2go.Repository
	cleanup func()
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	dir := t.TempDir()

	repo, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	return &testRepo{
		t:      t,
		path:   dir,
		native: repo,
		cleanup: func() {
			repo.Free()
		},
	}
}

func (tr *testRepo) createFile(name, content string) {
	tr.t.Helper()

	path := filepath.Join(tr.path, name)
	dir := filepath.Dir(path)

	if dir != tr.path {
		err := os.MkdirAll(dir, 0o755)
		require.NoError(tr.t, err)
	}

	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(tr.t, err)
}

// commit stages everything and creates a commit under the given author.
func (tr *testRepo) commit(message, authorName, authorEmail string) gitlib.Hash {
	tr.t.Helper()

	index, err := tr.native.Index()
	require.NoError(tr.t, err)

	defer index.Free()

	err = index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil)
	require.NoError(tr.t, err)

	err = index.Write()
	require.NoError(tr.t, err)

	treeID, err := index.WriteTree()
	require.NoError(tr.t, err)

	tree, err := tr.native.LookupTree(treeID)
	require.NoError(tr.t, err)

	defer tree.Free()

	sig := &git2go.Signature{
		Name:  authorName,
		Email: authorEmail,
		When:  time.Now(),
	}

	var parents []*git2go.Commit

	head, err := tr.native.Head()
	if err == nil {
		headCommit, lookupErr := tr.native.LookupCommit(head.Target())
		require.NoError(tr.t, lookupErr)

		parents = append(parents, headCommit)

		head.Free()
	}

	oid, err := tr.native.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	require.NoError(tr.t, err)

	for _, parent := range parents {
		parent.Free()
	}

	return gitlib.HashFromOid(oid)
}

func TestOpenRepository(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("main.go", "package main\n")
	tr.commit("initial", testAuthorName, testAuthorEmail)

	repo, err := gitlib.OpenRepository(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	assert.Equal(t, tr.path, repo.Path())
}

func TestOpenRepository_MissingPath(t *testing.T) {
	_, err := gitlib.OpenRepository(filepath.Join(t.TempDir(), "nope"))

	assert.Error(t, err)
}

func TestHead(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("main.go", "package main\n")
	want := tr.commit("initial", testAuthorName, testAuthorEmail)

	repo, err := gitlib.OpenRepository(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	head, err := repo.Head()
	require.NoError(t, err)

	assert.Equal(t, want, head)
	assert.False(t, head.IsZero())
}

func TestClone_LocalPath(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("main.go", "package main\n")
	tr.commit("initial", testAuthorName, testAuthorEmail)

	dest := filepath.Join(t.TempDir(), "clone")

	repo, err := gitlib.Clone(tr.path, dest)
	require.NoError(t, err)

	defer repo.Free()

	files, err := repo.ListFiles()
	require.NoError(t, err)

	assert.Contains(t, files, "main.go")
}

func TestListFiles_NestedTree(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("main.go", "package main\n")
	tr.createFile("internal/core/engine.go", "package core\n")
	tr.createFile("docs/readme.md", "# docs\n")
	tr.commit("initial", testAuthorName, testAuthorEmail)

	repo, err := gitlib.OpenRepository(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	files, err := repo.ListFiles()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"main.go",
		"internal/core/engine.go",
		"docs/readme.md",
	}, files)
}

func TestAuthorHistory_DeduplicatesAndSorts(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("a.txt", "one\n")
	tr.commit("first", "Alice Cooper", "alice@corp.com")

	tr.createFile("b.txt", "two\n")
	tr.commit("second", "Bob", "bob@corp.com")

	tr.createFile("c.txt", "three\n")
	tr.commit("third", "Alice Cooper", "alice@corp.com")

	repo, err := gitlib.OpenRepository(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	history, err := repo.AuthorHistory()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Alice Cooper|<alice@corp.com>",
		"Bob|<bob@corp.com>",
	}, history)
}

func TestBlameIncremental_SingleAuthor(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("main.go", "package main\n\nfunc main() {}\n")
	tr.commit("initial", testAuthorName, testAuthorEmail)

	repo, err := gitlib.OpenRepository(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	text, err := repo.BlameIncremental("main.go")
	require.NoError(t, err)

	assert.Contains(t, text, "author "+testAuthorName)
	assert.Contains(t, text, "author-mail <"+testAuthorEmail+">")

	log, err := blame.Parse(strings.NewReader(text), "main.go")
	require.NoError(t, err)

	total := 0
	for _, frag := range log.Fragments[testAuthorEmail] {
		total += frag.Lines
	}

	assert.Equal(t, 3, total)
}

func TestBlameIncremental_TwoAuthors(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("main.go", "line one\nline two\n")
	tr.commit("first", "Alice Cooper", "alice@corp.com")

	tr.createFile("main.go", "line one\nline two\nline three\nline four\n")
	tr.commit("second", "Bob", "bob@corp.com")

	repo, err := gitlib.OpenRepository(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	text, err := repo.BlameIncremental("main.go")
	require.NoError(t, err)

	log, err := blame.Parse(strings.NewReader(text), "main.go")
	require.NoError(t, err)

	sum := func(email string) int {
		total := 0
		for _, frag := range log.Fragments[email] {
			total += frag.Lines
		}

		return total
	}

	assert.Equal(t, 2, sum("alice@corp.com"))
	assert.Equal(t, 2, sum("bob@corp.com"))
}

func TestBlameIncremental_MissingFile(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("main.go", "package main\n")
	tr.commit("initial", testAuthorName, testAuthorEmail)

	repo, err := gitlib.OpenRepository(tr.path)
	require.NoError(t, err)

	defer repo.Free()

	_, err = repo.BlameIncremental("missing.go")

	assert.Error(t, err)
}

func TestHash_StringRoundTrip(t *testing.T) {
	tr := newTestRepo(t)
	defer tr.cleanup()

	tr.createFile("main.go", "package main\n")
	hash := tr.commit("initial", testAuthorName, testAuthorEmail)

	assert.Len(t, hash.String(), gitlib.HashHexSize)
	assert.Equal(t, hash, gitlib.HashFromOid(hash.ToOid()))
}
