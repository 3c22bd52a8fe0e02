package storage

import (
	"context"
	"sync"

	"github.com/dd0wney/starry-habits/pkg/habits"
)

// MemoryStore keeps the tracker in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	data   *habits.Data
	saves  int
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: habits.NewData()}
}

// NewMemoryStoreWith starts from a copy of data.
func NewMemoryStoreWith(data *habits.Data) *MemoryStore {
	return &MemoryStore{data: data.Clone()}
}

func (s *MemoryStore) Load(ctx context.Context) (*habits.Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return s.data.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, data *habits.Data) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.data = data.Clone()
	s.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
