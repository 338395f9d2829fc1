package logstore

import (
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/truckfactor/internal/blame"
)

const (
	testFile = "internal/core/engine.go"
	testText = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa 1 1 5\nauthor Alice\nauthor-mail <alice@corp.com>\nauthor-time 1700000000\n"
)

func readAll(t *testing.T, store *Store, file string) string {
	t.Helper()

	reader, err := store.Open(file)
	require.NoError(t, err)

	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)

	return string(content)
}

func TestStore_WriteReadPlain(t *testing.T) {
	t.Parallel()

	store := New(t.TempDir(), false)

	require.NoError(t, store.Write(testFile, testText))

	assert.True(t, store.Has(testFile))
	assert.Equal(t, testText, readAll(t, store, testFile))
}

func TestStore_WriteReadCompressed(t *testing.T) {
	t.Parallel()

	store := New(t.TempDir(), true)

	require.NoError(t, store.Write(testFile, testText))

	assert.True(t, store.Has(testFile))
	assert.Equal(t, testText, readAll(t, store, testFile))
}

func TestStore_HasMissing(t *testing.T) {
	t.Parallel()

	store := New(t.TempDir(), false)

	assert.False(t, store.Has(testFile))
}

func TestStore_OpenMissing(t *testing.T) {
	t.Parallel()

	store := New(t.TempDir(), false)

	_, err := store.Open(testFile)

	assert.Error(t, err)
}

func TestStore_List(t *testing.T) {
	t.Parallel()

	store := New(t.TempDir(), true)

	require.NoError(t, store.Write("a/b.go", testText))
	require.NoError(t, store.Write("c.go", testText))

	files, err := store.List()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a/b.go", "c.go"}, files)
}

func TestStore_ListEmptyRoot(t *testing.T) {
	t.Parallel()

	store := New(t.TempDir()+"/never-created", false)

	files, err := store.List()
	require.NoError(t, err)

	assert.Empty(t, files)
}

func TestStore_CompressedReaderSurvivesPlainFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// Written plain, read by a compressing store.
	plain := New(dir, false)
	require.NoError(t, plain.Write(testFile, testText))

	compressed := New(dir, true)

	assert.Equal(t, testText, readAll(t, compressed, testFile))
}

func TestCollector_ConcurrentAdds(t *testing.T) {
	t.Parallel()

	collector := NewCollector()

	const workers = 16

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			collector.Add(&blame.FileLog{File: testFile})
		}()
	}

	wg.Wait()

	assert.Equal(t, workers, collector.Len())
	assert.Len(t, collector.Logs(), workers)
}

func TestCollector_LogsReturnsSnapshot(t *testing.T) {
	t.Parallel()

	collector := NewCollector()
	collector.Add(&blame.FileLog{File: "a.go"})

	snapshot := collector.Logs()
	collector.Add(&blame.FileLog{File: "b.go"})

	assert.Len(t, snapshot, 1)
	assert.Equal(t, 2, collector.Len())
}
