package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/starford/brewstock/internal/apperr"
)

// FileStore keeps the credentials in a YAML file readable only by the owner.
type FileStore struct {
	path string // absolute
}

// NewFileStore creates a store backed by the file at path. The file does not
// need to exist yet.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("credentials: file path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("credentials: resolve path: %w", err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, fmt.Errorf("credentials: path is a directory: %s", abs)
	}
	return &FileStore{path: abs}, nil
}

// Path returns the absolute file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the credentials file.
func (f *FileStore) Load(_ context.Context) (Credentials, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, apperr.ErrNoCredentials
		}
		return Credentials{}, fmt.Errorf("credentials: read %s: %w", f.path, err)
	}
	var c Credentials
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Credentials{}, fmt.Errorf("credentials: parse %s: %w", f.path, err)
	}
	if c.Validate() != nil {
		return Credentials{}, apperr.ErrNoCredentials
	}
	return c, nil
}

// Save atomically writes content: tmp file → fsync → rename.
func (f *FileStore) Save(_ context.Context, c Credentials) error {
	if err := c.Validate(); err != nil {
		return err
	}
	content, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("credentials: encode: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("credentials: mkdir: %w", err)
	}

	// CreateTemp opens with 0600, which the rename preserves.
	tmp, err := os.CreateTemp(dir, ".brewstock-tmp-*")
	if err != nil {
		return fmt.Errorf("credentials: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("credentials: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("credentials: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("credentials: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("credentials: rename: %w", err)
	}
	success = true
	return nil
}

// Close is a no-op for the file store.
func (f *FileStore) Close() error {
	return nil
}
