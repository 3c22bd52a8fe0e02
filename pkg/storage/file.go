package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/exp/mmap"

	"github.com/dd0wney/starry-habits/pkg/habits"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o600

	plainFileName      = "habits.json"
	compressedFileName = "habits.json.sz"
)

// FileStore keeps the tracker in one file under a data directory. Saves go
// through a temporary file and a rename so a crash never leaves a torn document.
type FileStore struct {
	mu       sync.Mutex
	dir      string
	compress bool
	closed   bool
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string, compress bool) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("data directory is required")
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir, compress: compress}, nil
}

// Path is the file the next Save writes to.
func (s *FileStore) Path() string {
	if s.compress {
		return filepath.Join(s.dir, compressedFileName)
	}
	return filepath.Join(s.dir, plainFileName)
}

// Load reads the current document, falling back to the other format's file
// when the compression setting changed since the last save.
func (s *FileStore) Load(ctx context.Context) (*habits.Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	candidates := []string{s.Path(), filepath.Join(s.dir, plainFileName), filepath.Join(s.dir, compressedFileName)}
	for _, path := range candidates {
		raw, err := readMapped(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return decode(raw)
	}
	return habits.NewData(), nil
}

// Save atomically replaces the document.
func (s *FileStore) Save(ctx context.Context, data *habits.Data) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := encode(data, s.compress)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	path := s.Path()
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}

	// Drop the file in the other format so Load cannot pick up stale state.
	stale := filepath.Join(s.dir, plainFileName)
	if !s.compress {
		stale = filepath.Join(s.dir, compressedFileName)
	}
	if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove stale snapshot: %w", err)
	}
	return nil
}

// Close marks the store closed. Subsequent calls fail with ErrStoreClosed.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// readMapped copies a file's content out of a read-only memory mapping.
func readMapped(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, nil
	}

	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	buf := make([]byte, reader.Len())
	if _, err := reader.ReadAt(buf, 0); err != nil {
		return nil, err
	}
	return buf, nil
}
