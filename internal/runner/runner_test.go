package runner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/truckfactor/internal/decay"
	"github.com/Sumatoshi-tech/truckfactor/internal/filter"
	"github.com/Sumatoshi-tech/truckfactor/internal/logstore"
	"github.com/Sumatoshi-tech/truckfactor/internal/mailmap"
)

var testReference = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testTracer() nooptrace.TracerProvider {
	return nooptrace.NewTracerProvider()
}

// initRepo creates a repository with two committed files.
func initRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	repo, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	defer repo.Free()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("# readme\n"), 0o644))

	index, err := repo.Index()
	require.NoError(t, err)

	defer index.Free()

	require.NoError(t, index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil))
	require.NoError(t, index.Write())

	treeID, err := index.WriteTree()
	require.NoError(t, err)

	tree, err := repo.LookupTree(treeID)
	require.NoError(t, err)

	defer tree.Free()

	sig := &git2go.Signature{Name: "Alice Cooper", Email: "alice@corp.com", When: time.Now()}

	_, err = repo.CreateCommit("HEAD", sig, sig, "initial", tree)
	require.NoError(t, err)

	return dir
}

func TestGenerateLogs_BlamesAdmittedFiles(t *testing.T) {
	dir := initRepo(t)
	store := logstore.New(t.TempDir(), false)

	stored, err := GenerateLogs(context.Background(), GenerateOptions{
		RepoPath: dir,
		Store:    store,
		Filter:   filter.New([]string{"go"}, nil),
		Workers:  2,
		Logger:   testLogger(),
		Tracer:   testTracer().Tracer("test"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stored)
	assert.True(t, store.Has("main.go"))
	assert.False(t, store.Has("readme.md"))
}

func TestGenerateLogs_SkipsExistingLogs(t *testing.T) {
	dir := initRepo(t)
	store := logstore.New(t.TempDir(), false)

	opts := GenerateOptions{
		RepoPath: dir,
		Store:    store,
		Filter:   filter.New([]string{"go"}, nil),
		Workers:  1,
		Logger:   testLogger(),
		Tracer:   testTracer().Tracer("test"),
	}

	first, err := GenerateLogs(context.Background(), opts)
	require.NoError(t, err)

	// A second run finds every log in place and rewrites nothing.
	second, err := GenerateLogs(context.Background(), GenerateOptions{
		RepoPath: dir,
		Store:    store,
		Filter:   filter.New([]string{"go"}, nil),
		Workers:  1,
		Logger:   testLogger(),
		Tracer:   testTracer().Tracer("test"),
	})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateLogs_MissingRepository(t *testing.T) {
	store := logstore.New(t.TempDir(), false)

	_, err := GenerateLogs(context.Background(), GenerateOptions{
		RepoPath: filepath.Join(t.TempDir(), "absent"),
		Store:    store,
		Filter:   filter.New(nil, nil),
		Workers:  1,
		Logger:   testLogger(),
		Tracer:   testTracer().Tracer("test"),
	})

	assert.Error(t, err)
}

func blameText(email, name string, lines int) string {
	hash := strings.Repeat("a", 40)

	return hash + " 1 1 " + strconv.Itoa(lines) + "\n" +
		"author " + name + "\n" +
		"author-mail <" + email + ">\n" +
		"author-time 1717200000\n"
}

func seededStore(t *testing.T) *logstore.Store {
	t.Helper()

	store := logstore.New(t.TempDir(), true)

	require.NoError(t, store.Write("core.go", blameText("alice@corp.com", "Alice", 60)))
	require.NoError(t, store.Write("util.go", blameText("bob@corp.com", "Bob", 25)))
	require.NoError(t, store.Write("docs.go", blameText("carol@corp.com", "Carol", 15)))

	return store
}

func TestCompute_KnowledgeMetric(t *testing.T) {
	store := seededStore(t)

	result, err := Compute(context.Background(), ComputeOptions{
		Store:        store,
		Resolver:     mailmap.Empty(),
		Model:        decay.NewModel(testReference),
		Metric:       "knowledge",
		CriticalLoss: 0.5,
		Workers:      2,
		Logger:       testLogger(),
		Tracer:       testTracer().Tracer("test"),
	})
	require.NoError(t, err)

	// Every fragment decays by the same factor, so the 60/25/15 split
	// survives and alice alone crosses the half-loss threshold.
	require.Equal(t, 1, result.TruckFactor())
	assert.Equal(t, "alice@corp.com", result.Entries[0].Identity)
	assert.Equal(t, 3, result.Files)
	assert.Equal(t, testReference, result.Reference)

	// The authorship walk rides along: one file each, strict walk.
	assert.Equal(t, "authorship", result.AlternateMetric())
	assert.Len(t, result.Alternate, 2)
}

func TestCompute_AuthorshipMetric(t *testing.T) {
	store := seededStore(t)

	result, err := Compute(context.Background(), ComputeOptions{
		Store:        store,
		Resolver:     mailmap.Empty(),
		Model:        decay.NewModel(testReference),
		Metric:       "authorship",
		CriticalLoss: 0.5,
		Workers:      2,
		Logger:       testLogger(),
		Tracer:       testTracer().Tracer("test"),
	})
	require.NoError(t, err)

	// Each contributor authored one of three files; the strict walk
	// keeps removing until under half remain.
	assert.Equal(t, 2, result.TruckFactor())

	// The knowledge walk rides along with its inclusive comparator.
	assert.Equal(t, "knowledge", result.AlternateMetric())
	assert.Len(t, result.Alternate, 1)
}

func TestCompute_ResolvesAliases(t *testing.T) {
	store := logstore.New(t.TempDir(), false)

	require.NoError(t, store.Write("a.go", blameText("alice@old.com", "Alice", 10)))
	require.NoError(t, store.Write("b.go", blameText("alice@corp.com", "Alice", 10)))

	resolver, err := mailmap.Parse(strings.NewReader("Alice <alice@corp.com> <alice@old.com>\n"))
	require.NoError(t, err)

	result, err := Compute(context.Background(), ComputeOptions{
		Store:        store,
		Resolver:     resolver,
		Model:        decay.NewModel(testReference),
		Metric:       "knowledge",
		CriticalLoss: 0.5,
		Workers:      1,
		Logger:       testLogger(),
		Tracer:       testTracer().Tracer("test"),
	})
	require.NoError(t, err)

	require.Equal(t, 1, result.TruckFactor())
	assert.Equal(t, "alice@corp.com", result.Entries[0].Identity)
	assert.Len(t, result.Tallies.Knowledge, 1)
}

func TestCompute_EmptyStore(t *testing.T) {
	store := logstore.New(t.TempDir(), false)

	_, err := Compute(context.Background(), ComputeOptions{
		Store:        store,
		Resolver:     mailmap.Empty(),
		Model:        decay.NewModel(testReference),
		Metric:       "knowledge",
		CriticalLoss: 0.5,
		Workers:      1,
		Logger:       testLogger(),
		Tracer:       testTracer().Tracer("test"),
	})

	assert.ErrorIs(t, err, ErrNoData)
}

func TestCompute_DeterministicAcrossRuns(t *testing.T) {
	store := seededStore(t)

	run := func() *Result {
		result, err := Compute(context.Background(), ComputeOptions{
			Store:        store,
			Resolver:     mailmap.Empty(),
			Model:        decay.NewModel(testReference),
			Metric:       "knowledge",
			CriticalLoss: 0.5,
			Workers:      4,
			Logger:       testLogger(),
			Tracer:       testTracer().Tracer("test"),
		})
		require.NoError(t, err)

		return result
	}

	first := run()
	second := run()

	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, first.Tallies.Authored, second.Tallies.Authored)
}
