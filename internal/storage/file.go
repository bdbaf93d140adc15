package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileData is the top-level structure of the storage file.
type fileData struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

// File persists the store as a JSON document on disk.
// The whole file is rewritten on every change.
type File struct {
	path   string
	mu     sync.RWMutex
	values map[string]string
}

// NewFile loads the store at path, starting empty when the file does not exist.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("file storage requires a path")
	}
	f := &File{path: path, values: make(map[string]string)}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) load() error {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read storage file: %w", err)
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		return fmt.Errorf("failed to parse storage file: %w", err)
	}
	if fd.Values != nil {
		f.values = fd.Values
	}
	return nil
}

// save writes the file. Callers must hold the write lock.
func (f *File) save() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(fileData{Version: 1, Values: f.values}, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Get returns the value stored under key.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok, nil
}

// Set stores value under key and rewrites the file.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return f.save()
}

// Delete removes key and rewrites the file.
func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; !ok {
		return nil
	}
	delete(f.values, key)
	return f.save()
}

// Close is a no-op; every write is already on disk.
func (f *File) Close() error { return nil }
