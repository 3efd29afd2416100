package queue

import (
	"fmt"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/store"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

// Store persists the shuffle preference of a manager.
// The queue contents themselves are session state and are not persisted.
type Store struct {
	adapter *store.Adapter
	manager *Manager
}

// NewStore creates a new queue store
func NewStore(adapter *store.Adapter, manager *Manager) *Store {
	return &Store{
		adapter: adapter,
		manager: manager,
	}
}

// Load restores the shuffle flag. A missing value leaves shuffle off.
func (s *Store) Load() error {
	var shuffle bool
	found, err := s.adapter.Load(store.KeyShuffle, &shuffle)
	if err != nil {
		return fmt.Errorf("failed to load shuffle flag: %w", err)
	}
	if found {
		s.manager.SetShuffle(shuffle, types.Song{})
	}
	return nil
}

// Save schedules the current shuffle flag to be written
func (s *Store) Save() {
	s.adapter.Save(store.KeyShuffle, s.manager.Shuffle())
}
