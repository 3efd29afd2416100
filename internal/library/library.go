// Package library keeps the user's favorites, recently played list and downloads.
package library

import (
	"errors"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/store"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

// MaxRecents is the number of recently played songs kept
const MaxRecents = 50

// Library is the persisted collection state independent of playback
type Library struct {
	mu        sync.RWMutex
	favorites []string
	recents   []types.Song
	downloads []types.Song

	adapter *store.Adapter
	logger  *zap.Logger
}

// New creates a library and loads its slices from the adapter.
// A corrupt slice is discarded and the others load normally.
func New(adapter *store.Adapter, logger *zap.Logger) *Library {
	l := &Library{
		favorites: make([]string, 0),
		recents:   make([]types.Song, 0),
		downloads: make([]types.Song, 0),
		adapter:   adapter,
		logger:    logger.Named("library"),
	}

	l.load(store.KeyFavorites, &l.favorites, func() { l.favorites = make([]string, 0) })
	l.load(store.KeyRecents, &l.recents, func() { l.recents = make([]types.Song, 0) })
	l.load(store.KeyDownloads, &l.downloads, func() { l.downloads = make([]types.Song, 0) })

	if len(l.recents) > MaxRecents {
		l.recents = l.recents[:MaxRecents]
	}
	return l
}

func (l *Library) load(key string, v any, reset func()) {
	if _, err := l.adapter.Load(key, v); err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			l.logger.Warn("Discarding corrupt state", zap.String("key", key), zap.Error(err))
		} else {
			l.logger.Error("Failed to load state", zap.String("key", key), zap.Error(err))
		}
		reset()
	}
}

// PushRecent moves song to the front of the recently played list
func (l *Library) PushRecent(song types.Song) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recents = pushRecent(l.recents, song)
	l.adapter.Save(store.KeyRecents, l.recents)
}

// pushRecent returns list with song at the front, any older entry with the same id
// removed, truncated to MaxRecents.
func pushRecent(list []types.Song, song types.Song) []types.Song {
	rest := lo.Reject(list, func(s types.Song, _ int) bool { return s.ID == song.ID })
	out := append([]types.Song{song}, rest...)
	if len(out) > MaxRecents {
		out = out[:MaxRecents]
	}
	return out
}

// Recents returns the recently played list, most recent first
func (l *Library) Recents() []types.Song {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]types.Song, len(l.recents))
	copy(out, l.recents)
	return out
}

// PreviousDistinct returns the most recent entry whose id differs from currentID
func (l *Library) PreviousDistinct(currentID string) (types.Song, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return lo.Find(l.recents, func(s types.Song) bool { return s.ID != currentID })
}

// ToggleFavorite adds or removes a song id and returns whether it is now a favorite
func (l *Library) ToggleFavorite(songID string) bool {
	l.mu.Lock()
	var added bool
	if lo.Contains(l.favorites, songID) {
		l.favorites = lo.Without(l.favorites, songID)
	} else {
		l.favorites = append(l.favorites, songID)
		added = true
	}
	l.adapter.Save(store.KeyFavorites, l.favorites)
	l.mu.Unlock()

	l.logger.Debug("Favorite toggled", zap.String("song", songID), zap.Bool("favorite", added))
	return added
}

// IsFavorite reports whether songID is a favorite
func (l *Library) IsFavorite(songID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return lo.Contains(l.favorites, songID)
}

// Favorites returns favorite song ids in the order they were added
func (l *Library) Favorites() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.favorites...)
}

// ToggleDownload marks or unmarks a song as downloaded and returns the new mark.
// No audio bytes are stored.
func (l *Library) ToggleDownload(song types.Song) bool {
	l.mu.Lock()
	_, idx, exists := lo.FindIndexOf(l.downloads, func(s types.Song) bool { return s.ID == song.ID })
	if exists {
		l.downloads = append(l.downloads[:idx:idx], l.downloads[idx+1:]...)
	} else {
		l.downloads = append(l.downloads, song)
	}
	l.adapter.Save(store.KeyDownloads, l.downloads)
	l.mu.Unlock()

	return !exists
}

// Downloads returns the songs marked as downloaded
func (l *Library) Downloads() []types.Song {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]types.Song(nil), l.downloads...)
}
