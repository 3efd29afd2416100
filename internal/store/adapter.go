package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Keys of the persisted state slices
const (
	KeyFavorites = "favorites"
	KeyRecents   = "recents"
	KeyPlaylists = "playlists"
	KeyDownloads = "downloads"
	KeyShuffle   = "shuffle"
	KeyRadio     = "radio"
)

// ErrCorrupt is returned by Load when the stored value cannot be decoded
var ErrCorrupt = errors.New("corrupt stored value")

// Adapter reads state slices synchronously and writes them asynchronously.
// Writes are coalesced per key; the most recent Save for a key wins.
type Adapter struct {
	kv     KV
	logger *zap.Logger

	mu      sync.Mutex
	pending map[string][]byte
	closed  bool

	wake    chan struct{}
	flush   chan chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewAdapter creates an adapter over kv and starts its background writer
func NewAdapter(kv KV, logger *zap.Logger) *Adapter {
	a := &Adapter{
		kv:      kv,
		logger:  logger.Named("store"),
		pending: make(map[string][]byte),
		wake:    make(chan struct{}, 1),
		flush:   make(chan chan struct{}),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go a.run()
	return a
}

// Load decodes the value stored under key into v.
// Returns false with a nil error when the key is absent. A value that fails to decode
// yields an error wrapping ErrCorrupt; v must then be discarded by the caller.
func (a *Adapter) Load(key string, v any) (bool, error) {
	data, found, err := a.kv.Get(key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// Save snapshots v and schedules it to be written. It never blocks on the store.
func (a *Adapter) Save(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		a.logger.Error("Failed to encode state", zap.String("key", key), zap.Error(err))
		return
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.write(key, data)
		return
	}
	a.pending[key] = data
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every Save issued before the call has been written
func (a *Adapter) Flush() {
	ack := make(chan struct{})
	select {
	case a.flush <- ack:
		<-ack
	case <-a.stopped:
	}
}

// Close writes anything pending and stops the background writer
func (a *Adapter) Close() error {
	a.once.Do(func() {
		close(a.done)
	})
	<-a.stopped
	return nil
}

func (a *Adapter) run() {
	defer close(a.stopped)
	for {
		select {
		case <-a.wake:
			a.drain()
		case ack := <-a.flush:
			a.drain()
			close(ack)
		case <-a.done:
			a.mu.Lock()
			a.closed = true
			a.mu.Unlock()
			a.drain()
			return
		}
	}
}

func (a *Adapter) drain() {
	a.mu.Lock()
	batch := a.pending
	a.pending = make(map[string][]byte)
	a.mu.Unlock()

	for key, data := range batch {
		a.write(key, data)
	}
}

func (a *Adapter) write(key string, data []byte) {
	if err := a.kv.Set(key, data); err != nil {
		a.logger.Warn("Failed to persist state", zap.String("key", key), zap.Error(err))
		return
	}
	a.logger.Debug("State persisted", zap.String("key", key), zap.Int("bytes", len(data)))
}
