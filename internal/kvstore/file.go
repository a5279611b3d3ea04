package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFileName is the store file created under the user's config directory.
const DefaultFileName = "storage.json"

// FileStore keeps every key in one JSON object on disk, rewritten atomically on each Set.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// DefaultPath returns $XDG_CONFIG_HOME/jobsearch/storage.json or its platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "jobsearch", DefaultFileName), nil
}

// NewFileStore opens a store at path; an empty path uses DefaultPath.
// The file is created lazily on the first Set.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file location.
func (f *FileStore) Path() string {
	return f.path
}

// Get implements Store.
func (f *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, false, &Error{Backend: BackendFile, Op: "get", Key: key, Cause: err}
	}
	v, ok := doc[key]
	return v, ok, nil
}

// Set implements Store.
func (f *FileStore) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !json.Valid(value) {
		return &Error{Backend: BackendFile, Op: "set", Key: key, Cause: errors.New("value is not valid JSON")}
	}

	doc, err := f.read()
	if err != nil {
		return &Error{Backend: BackendFile, Op: "set", Key: key, Cause: err}
	}
	doc[key] = json.RawMessage(value)

	if err := f.write(doc); err != nil {
		return &Error{Backend: BackendFile, Op: "set", Key: key, Cause: err}
	}
	return nil
}

// Close implements Store.
func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	return doc, nil
}

func (f *FileStore) write(doc map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storage-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}
