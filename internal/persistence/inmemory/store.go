package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/persistence"
)

// Store is an in-memory implementation of persistence.Gateway.
// It keeps the encoded blob so callers never share slices with it.
// Data is lost on restart.
type Store struct {
	mu    sync.RWMutex
	blob  []byte
	saves int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

// LoadState implements persistence.Gateway.
func (s *Store) LoadState(ctx context.Context) (*domain.PersistedState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.blob == nil {
		return nil, nil
	}
	state, err := persistence.Decode(s.blob)
	if err != nil {
		return nil, fmt.Errorf("LoadState: %w", err)
	}
	return state, nil
}

// SaveState implements persistence.Gateway.
func (s *Store) SaveState(ctx context.Context, state domain.PersistedState) error {
	data, err := persistence.Encode(state)
	if err != nil {
		return fmt.Errorf("SaveState: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = data
	s.saves++
	return nil
}

// SetBlob stores raw bytes as if they had been saved, for loading legacy or
// corrupt blobs.
func (s *Store) SetBlob(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = append([]byte{}, data...)
}

// Saves returns how many times SaveState succeeded.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Ensure Store implements persistence.Gateway.
var _ persistence.Gateway = (*Store)(nil)
