// Package blobstore stores uploaded document bodies. Metadata lives in the
// database; the store only knows opaque keys.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var (
	ErrNotFound           = errors.New("blob not found")
	ErrTooLarge           = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrInvalidKey         = errors.New("invalid blob key")
)

// AllowedContentTypes is the upload allow-list.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/dicom":     true,
	"text/plain":      true,
}

// CheckContentType returns ErrInvalidContentType for types outside the
// allow-list.
func CheckContentType(ct string) error {
	if !AllowedContentTypes[ct] {
		return fmt.Errorf("%w: %s", ErrInvalidContentType, ct)
	}
	return nil
}

// Object describes a stored blob.
type Object struct {
	Key    string
	Size   int64
	SHA256 string
}

// Store is the blob backend.
type Store interface {
	// Put stores at most maxSize bytes from r under key.
	Put(ctx context.Context, key string, r io.Reader, maxSize int64) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

func checkKey(key string) error {
	if !keyPattern.MatchString(key) || key == "." || key == ".." {
		return ErrInvalidKey
	}
	return nil
}

// readLimited reads r fully, failing with ErrTooLarge past maxSize.
func readLimited(r io.Reader, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DiskStore keeps one file per key under a root directory.
type DiskStore struct {
	root string
}

// NewDiskStore creates root if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Put(_ context.Context, key string, r io.Reader, maxSize int64) (Object, error) {
	if err := checkKey(key); err != nil {
		return Object{}, err
	}
	data, err := readLimited(r, maxSize)
	if err != nil {
		return Object{}, err
	}

	// Write to a temp file and rename so readers never see a partial blob.
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return Object{}, fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Object{}, fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.root, key)); err != nil {
		return Object{}, fmt.Errorf("store blob: %w", err)
	}
	return Object{Key: key, Size: int64(len(data)), SHA256: digest(data)}, nil
}

func (s *DiskStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.root, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (s *DiskStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.root, key))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// MemoryStore keeps blobs in memory. It is meant for tests and local runs.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, key string, r io.Reader, maxSize int64) (Object, error) {
	if err := checkKey(key); err != nil {
		return Object{}, err
	}
	data, err := readLimited(r, maxSize)
	if err != nil {
		return Object{}, err
	}
	s.mu.Lock()
	s.blobs[key] = data
	s.mu.Unlock()
	return Object{Key: key, Size: int64(len(data)), SHA256: digest(data)}, nil
}

func (s *MemoryStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	data, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
