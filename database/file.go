package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps every key in one JSON object on disk. Each Save
// rewrites the whole file through a temp file and rename.
type FileStore struct {
	path string

	mu   sync.Mutex
	data map[string]json.RawMessage
}

func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{
		path: path,
		data: make(map[string]json.RawMessage),
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fs, nil
		}
		return nil, fmt.Errorf("failed to read store file, %w", err)
	}

	if len(b) == 0 {
		return fs, nil
	}

	if err := json.Unmarshal(b, &fs.data); err != nil {
		return nil, fmt.Errorf("store file %s is not a JSON object, %w", path, err)
	}

	return fs, nil
}

func (fs *FileStore) Load(_ context.Context, key string) (json.RawMessage, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	v, ok := fs.data[key]
	if !ok {
		return nil, ErrNotFound
	}

	return append(json.RawMessage(nil), v...), nil
}

func (fs *FileStore) Save(_ context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for key %q is not valid JSON", key)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, had := fs.data[key]
	fs.data[key] = append(json.RawMessage(nil), value...)

	if err := fs.flush(); err != nil {
		if had {
			fs.data[key] = prev
		} else {
			delete(fs.data, key)
		}
		return err
	}

	return nil
}

func (fs *FileStore) flush() error {
	b, err := json.MarshalIndent(fs.data, "", "    ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".store-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary file, %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store file, %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), fs.path)
}

func (fs *FileStore) Close() error {
	return nil
}
