// Package queue manages the playback queue and its shuffled projection.
package queue

import (
	"math/rand"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

// ChangeCallback is called when the queue state changes
type ChangeCallback func()

// Manager holds the base queue and, while shuffle is on, a permutation of it.
// The queue loops forever: advancing past the last entry wraps (ordered) or
// reshuffles (shuffled).
type Manager struct {
	mu       sync.RWMutex
	items    []types.Song
	shuffle  bool
	order    []int // Shuffled indices into items, pinned song first
	rng      *rand.Rand
	onChange ChangeCallback
	logger   *zap.Logger
}

// NewManager creates a new queue manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		items:  make([]types.Song, 0),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger.Named("queue"),
	}
}

// SetOnChange sets a callback to be called when the queue state changes
func (m *Manager) SetOnChange(callback ChangeCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = callback
}

// notifyChange calls the onChange callback if set (must be called without lock held)
func (m *Manager) notifyChange() {
	m.mu.RLock()
	callback := m.onChange
	m.mu.RUnlock()
	if callback != nil {
		callback()
	}
}

// SetQueue replaces the base queue. Songs are deduplicated by id, first occurrence wins.
// When shuffle is on the projection is regenerated with starting pinned first.
func (m *Manager) SetQueue(songs []types.Song, starting types.Song) {
	m.mu.Lock()

	m.items = lo.UniqBy(songs, func(s types.Song) string { return s.ID })
	if m.shuffle {
		m.generateOrder(starting.ID)
	}
	size := len(m.items)

	m.mu.Unlock()
	m.logger.Debug("Queue set", zap.Int("size", size), zap.String("starting", starting.ID))
	m.notifyChange()
}

// Clear empties the queue
func (m *Manager) Clear() {
	m.mu.Lock()
	m.items = make([]types.Song, 0)
	m.order = nil
	m.mu.Unlock()
	m.notifyChange()
}

// Next returns the entry after current in the active projection.
// Returns false when the projection is empty or current is not a member.
func (m *Manager) Next(current types.Song) (types.Song, bool) {
	m.mu.Lock()

	if len(m.items) == 0 {
		m.mu.Unlock()
		return types.Song{}, false
	}

	pos := m.position(current.ID)
	if pos < 0 {
		m.mu.Unlock()
		return types.Song{}, false
	}

	reshuffled := false
	var next types.Song
	switch {
	case pos < len(m.items)-1:
		next = m.items[m.itemIndex(pos+1)]
	case m.shuffle:
		m.generateOrder("")
		reshuffled = true
		next = m.items[m.order[0]]
	default:
		next = m.items[0]
	}

	m.mu.Unlock()
	if reshuffled {
		m.logger.Debug("Queue reshuffled at end of projection")
		m.notifyChange()
	}
	return next, true
}

// ToggleShuffle flips shuffle mode, pinning current first when enabling.
// Returns the new state.
func (m *Manager) ToggleShuffle(current types.Song) bool {
	m.mu.RLock()
	enabled := !m.shuffle
	m.mu.RUnlock()

	m.SetShuffle(enabled, current)
	return enabled
}

// SetShuffle enables or disables shuffle mode
func (m *Manager) SetShuffle(enabled bool, current types.Song) {
	m.mu.Lock()

	wasEnabled := m.shuffle
	m.shuffle = enabled

	if enabled && !wasEnabled {
		m.generateOrder(current.ID)
	} else if !enabled && wasEnabled {
		m.order = nil
	}

	m.mu.Unlock()
	m.notifyChange()
}

// Shuffle returns whether shuffle is enabled
func (m *Manager) Shuffle() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shuffle
}

// Len returns the size of the base queue
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Items returns the base queue in insertion order
func (m *Manager) Items() []types.Song {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]types.Song, len(m.items))
	copy(items, m.items)
	return items
}

// Projection returns the queue in the order it will be played
func (m *Manager) Projection() []types.Song {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Song, len(m.items))
	for pos := range m.items {
		out[pos] = m.items[m.itemIndex(pos)]
	}
	return out
}

// itemIndex maps a projection position to an index into items
func (m *Manager) itemIndex(pos int) int {
	if !m.shuffle || len(m.order) != len(m.items) {
		return pos
	}
	return m.order[pos]
}

// position returns the projection position of the song with the given id, or -1
func (m *Manager) position(id string) int {
	if id == "" {
		return -1
	}
	for pos := range m.items {
		if m.items[m.itemIndex(pos)].ID == id {
			return pos
		}
	}
	return -1
}

// generateOrder creates a new shuffled order of indices.
// If pinID names a queued song it is swapped to the front.
func (m *Manager) generateOrder(pinID string) {
	n := len(m.items)
	m.order = make([]int, n)
	for i := 0; i < n; i++ {
		m.order[i] = i
	}
	// Fisher-Yates shuffle
	for i := n - 1; i > 0; i-- {
		j := m.rng.Intn(i + 1)
		m.order[i], m.order[j] = m.order[j], m.order[i]
	}

	if pinID == "" {
		return
	}
	for i, idx := range m.order {
		if m.items[idx].ID == pinID {
			m.order[0], m.order[i] = m.order[i], m.order[0]
			break
		}
	}
}
