// Package logstore persists per-file blame logs on disk so the compute
// stage can run repeatedly without re-blaming the repository. Logs are
// stored one file per blamed path, optionally LZ4-compressed.
package logstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

const (
	logExtension        = ".log"
	compressedExtension = ".log.lz4"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Store reads and writes blame logs under a root directory. File paths
// are flattened into log names by replacing path separators.
type Store struct {
	root     string
	compress bool
}

// New returns a store rooted at dir. When compress is set, logs are
// written LZ4-framed and read back transparently.
func New(dir string, compress bool) *Store {
	return &Store{root: dir, compress: compress}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// logName flattens a repository-relative file path into a log file name.
func logName(file string) string {
	return strings.ReplaceAll(file, "/", "__")
}

func (s *Store) plainPath(file string) string {
	return filepath.Join(s.root, logName(file)+logExtension)
}

func (s *Store) compressedPath(file string) string {
	return filepath.Join(s.root, logName(file)+compressedExtension)
}

// Has reports whether a log for file exists in either encoding.
func (s *Store) Has(file string) bool {
	for _, path := range []string{s.compressedPath(file), s.plainPath(file)} {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}

	return false
}

// Write stores the blame log text for file, creating the root
// directory as needed.
func (s *Store) Write(file, text string) error {
	if err := os.MkdirAll(s.root, dirPerm); err != nil {
		return fmt.Errorf("create log store root: %w", err)
	}

	if !s.compress {
		if err := os.WriteFile(s.plainPath(file), []byte(text), filePerm); err != nil {
			return fmt.Errorf("write blame log: %w", err)
		}

		return nil
	}

	out, err := os.OpenFile(s.compressedPath(file), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("create compressed blame log: %w", err)
	}
	defer out.Close()

	writer := lz4.NewWriter(out)

	if _, err := io.WriteString(writer, text); err != nil {
		return fmt.Errorf("compress blame log: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("flush compressed blame log: %w", err)
	}

	return nil
}

// Open returns a reader over the stored log for file, preferring the
// compressed encoding when both exist. The caller closes the reader.
func (s *Store) Open(file string) (io.ReadCloser, error) {
	if compressed, err := os.Open(s.compressedPath(file)); err == nil {
		return &lz4ReadCloser{
			reader: lz4.NewReader(compressed),
			file:   compressed,
		}, nil
	}

	plain, err := os.Open(s.plainPath(file))
	if err != nil {
		return nil, fmt.Errorf("open blame log for %s: %w", file, err)
	}

	return plain, nil
}

// List returns the repository-relative file paths with a stored log,
// sorted by the underlying directory order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read log store root: %w", err)
	}

	var files []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		switch {
		case strings.HasSuffix(name, compressedExtension):
			name = strings.TrimSuffix(name, compressedExtension)
		case strings.HasSuffix(name, logExtension):
			name = strings.TrimSuffix(name, logExtension)
		default:
			continue
		}

		files = append(files, strings.ReplaceAll(name, "__", "/"))
	}

	return files, nil
}

type lz4ReadCloser struct {
	reader *lz4.Reader
	file   *os.File
}

func (rc *lz4ReadCloser) Read(p []byte) (int, error) {
	return rc.reader.Read(p)
}

func (rc *lz4ReadCloser) Close() error {
	return rc.file.Close()
}
