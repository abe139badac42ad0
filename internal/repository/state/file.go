package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oshokin/mod-version/internal/config"
)

// Key is the name of the single key in the state file.
const Key = "VERSION"

// Sink receives the derived version.
type Sink interface {
	Save(ctx context.Context, version string) error
}

var (
	// ErrNotFound is returned when the state file does not exist yet.
	ErrNotFound = errors.New("version file not found")
	// ErrMalformedFile is returned when the state file is not a VERSION=<version> line.
	ErrMalformedFile = errors.New("version file is malformed")
)

// FileRepository persists the version to a key=value file on disk.
type FileRepository struct {
	// path is the filesystem location of the state file.
	path string
	// mu serializes access to the state file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes the file at the provided path.
func NewFileRepository(path string) *FileRepository {
	if path == "" {
		path = config.DefaultVersionFilename
	}

	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the location of the state file.
func (r *FileRepository) Path() string {
	return r.path
}

// Save truncates the file and writes VERSION=<version> to it.
func (r *FileRepository) Save(_ context.Context, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create version file directory: %w", err)
	}

	if err := os.WriteFile(r.path, []byte(Line(version)), config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write version file: %w", err)
	}

	return nil
}

// Load reads the version back from disk.
func (r *FileRepository) Load(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("read version file: %w", err)
	}

	return Parse(string(contents))
}

// WriterSink writes the state line to an arbitrary writer.
type WriterSink struct {
	W io.Writer
}

// Save writes VERSION=<version> to the underlying writer.
func (s WriterSink) Save(_ context.Context, version string) error {
	if _, err := io.WriteString(s.W, Line(version)); err != nil {
		return fmt.Errorf("write version: %w", err)
	}

	return nil
}

// Line renders the state line without a trailing newline.
func Line(version string) string {
	return Key + "=" + version
}

// Parse extracts the version from a state line.
// A single trailing line ending is tolerated.
func Parse(contents string) (string, error) {
	line := strings.TrimSuffix(strings.TrimSuffix(contents, "\n"), "\r")

	value, ok := strings.CutPrefix(line, Key+"=")
	if !ok || value == "" || strings.ContainsAny(value, "\r\n") {
		return "", ErrMalformedFile
	}

	return value, nil
}
