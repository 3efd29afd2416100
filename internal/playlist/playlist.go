// Package playlist manages user playlists and their generated cover art.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/provider"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/store"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

var (
	// ErrNotFound is returned for an unknown playlist id
	ErrNotFound = errors.New("playlist not found")
	// ErrEmptyName is returned when a playlist name is blank
	ErrEmptyName = errors.New("playlist name is empty")
)

const artTimeout = 60 * time.Second

// Manager owns the playlist collection
type Manager struct {
	mu        sync.RWMutex
	playlists []types.Playlist

	adapter *store.Adapter
	art     provider.ArtGenerator
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewManager creates a manager and loads persisted playlists.
// A corrupt playlist slice is discarded.
func NewManager(adapter *store.Adapter, art provider.ArtGenerator, logger *zap.Logger) *Manager {
	m := &Manager{
		playlists: make([]types.Playlist, 0),
		adapter:   adapter,
		art:       art,
		logger:    logger.Named("playlist"),
	}

	if _, err := adapter.Load(store.KeyPlaylists, &m.playlists); err != nil {
		m.logger.Warn("Discarding stored playlists", zap.Error(err))
		m.playlists = make([]types.Playlist, 0)
	}
	return m
}

// Create adds a new empty playlist
func (m *Manager) Create(name, description string) (types.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Playlist{}, ErrEmptyName
	}

	p := types.Playlist{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		SongIDs:     make([]string, 0),
		CreatedAt:   time.Now().UTC(),
	}

	m.mu.Lock()
	m.playlists = append(m.playlists, p)
	m.persistLocked()
	m.mu.Unlock()

	m.logger.Info("Playlist created", zap.String("id", p.ID), zap.String("name", p.Name))
	return p.Clone(), nil
}

// AddSong appends song to the playlist. Adding a song already present is a no-op.
// A playlist without a cover adopts the song's cover and a generated cover is requested.
func (m *Manager) AddSong(playlistID string, song types.Song) error {
	m.mu.Lock()
	p := m.findLocked(playlistID)
	if p == nil {
		m.mu.Unlock()
		return fmt.Errorf("add to %s: %w", playlistID, ErrNotFound)
	}
	if p.Contains(song.ID) {
		m.mu.Unlock()
		return nil
	}

	p.SongIDs = append(p.SongIDs, song.ID)
	generate := p.CoverURL == ""
	if generate {
		p.CoverURL = song.CoverURL
	}
	name := p.Name
	m.persistLocked()
	m.mu.Unlock()

	if generate {
		m.generateCover(playlistID, name)
	}
	return nil
}

// generateCover requests art for name in the background and applies it to the live
// playlist if it still exists and has songs.
func (m *Manager) generateCover(playlistID, name string) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), artTimeout)
		defer cancel()

		res, err := m.art.Generate(ctx, name)
		if err != nil {
			m.logger.Warn("Cover generation failed", zap.String("playlist", playlistID), zap.Error(err))
			return
		}
		if res.ImageURL == "" {
			m.logger.Debug("Cover generation declined", zap.String("playlist", playlistID))
			return
		}

		m.mu.Lock()
		p := m.findLocked(playlistID)
		if p == nil || len(p.SongIDs) == 0 {
			m.mu.Unlock()
			m.logger.Debug("Dropping cover for changed playlist", zap.String("playlist", playlistID))
			return
		}
		p.CoverURL = res.ImageURL
		m.persistLocked()
		m.mu.Unlock()

		m.logger.Info("Playlist cover applied", zap.String("playlist", playlistID))
	}()
}

// RemoveSong removes songID from the playlist. An emptied playlist loses its cover.
func (m *Manager) RemoveSong(playlistID, songID string) error {
	m.mu.Lock()
	p := m.findLocked(playlistID)
	if p == nil {
		m.mu.Unlock()
		return fmt.Errorf("remove from %s: %w", playlistID, ErrNotFound)
	}
	p.SongIDs = lo.Without(p.SongIDs, songID)
	if len(p.SongIDs) == 0 {
		p.CoverURL = ""
	}
	m.persistLocked()
	m.mu.Unlock()

	return nil
}

// Rename changes the name and description of a playlist
func (m *Manager) Rename(playlistID, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	m.mu.Lock()
	p := m.findLocked(playlistID)
	if p == nil {
		m.mu.Unlock()
		return fmt.Errorf("rename %s: %w", playlistID, ErrNotFound)
	}
	p.Name = name
	p.Description = strings.TrimSpace(description)
	m.persistLocked()
	m.mu.Unlock()

	return nil
}

// Get returns a copy of the playlist
func (m *Manager) Get(playlistID string) (types.Playlist, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.playlists {
		if p.ID == playlistID {
			return p.Clone(), true
		}
	}
	return types.Playlist{}, false
}

// List returns copies of every playlist in creation order
func (m *Manager) List() []types.Playlist {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.Map(m.playlists, func(p types.Playlist, _ int) types.Playlist { return p.Clone() })
}

// Wait blocks until pending cover generations have finished
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) findLocked(id string) *types.Playlist {
	for i := range m.playlists {
		if m.playlists[i].ID == id {
			return &m.playlists[i]
		}
	}
	return nil
}

// persistLocked queues the current playlists for writing. Holding the lock keeps
// saves in mutation order.
func (m *Manager) persistLocked() {
	m.adapter.Save(store.KeyPlaylists, lo.Map(m.playlists, func(p types.Playlist, _ int) types.Playlist { return p.Clone() }))
}
