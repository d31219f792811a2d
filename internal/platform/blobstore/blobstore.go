// Package blobstore stores uploaded file content for the medical file
// endpoints. The disk implementation partitions files by upload date the way
// the rest of the platform expects media paths to look
// (medical_files/2026/08/<name>); the in-memory implementation backs tests.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob not found")

// Store persists raw file content. Keys are relative slash-separated paths.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// datePrefix yields the partition directory for an upload, e.g.
// "medical_files/2026/08".
func datePrefix(now time.Time) string {
	return fmt.Sprintf("medical_files/%04d/%02d", now.Year(), int(now.Month()))
}

// uniqueName prefixes the sanitized file name with a random component so two
// uploads of the same file never collide.
func uniqueName(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	return uuid.NewString()[:8] + "_" + base
}

// DiskStore writes blobs under a root directory.
type DiskStore struct {
	root string
	now  func() time.Time
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root, now: time.Now}
}

func (s *DiskStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	key := filepath.ToSlash(filepath.Join(datePrefix(s.now()), uniqueName(name)))
	full := filepath.Join(s.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("write media file: %w", err)
	}

	return key, nil
}

func (s *DiskStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open media file: %w", err)
	}
	return f, nil
}

func (s *DiskStore) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

// MemStore is an in-memory Store for tests and development.
type MemStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	now   func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string][]byte), now: time.Now}
}

func (s *MemStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := datePrefix(s.now()) + "/" + uniqueName(name)

	s.mu.Lock()
	s.blobs[key] = data
	s.mu.Unlock()
	return key, nil
}

func (s *MemStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	data, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (s *MemStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}

// Len reports the number of stored blobs. Test helper.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
