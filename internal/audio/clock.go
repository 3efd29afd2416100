package audio

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

// PlaybackState represents the current state of the clock
type PlaybackState string

const (
	StateStopped PlaybackState = "stopped"
	StatePlaying PlaybackState = "playing"
	StatePaused  PlaybackState = "paused"
	StateEnded   PlaybackState = "ended"
)

// DefaultTick is the interval between time updates
const DefaultTick = 250 * time.Millisecond

var playableSchemes = map[string]bool{"http": true, "https": true, "file": true, "": true}

// Clock is a transport that advances a media position in real time without
// producing audio. Each Load starts a new session; events from older sessions are
// dropped.
type Clock struct {
	mu        sync.Mutex
	song      types.Song
	loaded    bool
	state     PlaybackState
	duration  float64
	base      float64   // Position when the current playing stretch began
	startedAt time.Time // Start of the current playing stretch
	dirty     bool      // Position changed while not playing
	volume    int
	muted     bool

	sessionID uint64
	cancel    context.CancelFunc
	tick      time.Duration
	listener  Listener
	logger    *zap.Logger
}

// NewClock creates a clock emitting time updates every tick
func NewClock(tick time.Duration, logger *zap.Logger) *Clock {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Clock{
		state:  StateStopped,
		volume: 100,
		tick:   tick,
		logger: logger.Named("transport"),
	}
}

// SetListener sets the receiver of media events
func (c *Clock) SetListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = l
}

func (c *Clock) Load(song types.Song) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopSessionLocked()
	c.song = song
	c.loaded = true
	c.state = StateStopped
	c.duration = song.DurationSeconds()
	c.base = 0
	c.dirty = false
	c.startSessionLocked()

	c.logger.Debug("Media loaded", zap.String("song", song.ID), zap.Uint64("session", c.sessionID))
	return nil
}

func (c *Clock) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return ErrNotLoaded
	}
	u, err := url.Parse(c.song.MediaURL)
	if err != nil || !playableSchemes[u.Scheme] {
		return fmt.Errorf("%w: %s", ErrUnsupportedMedia, c.song.MediaURL)
	}

	switch c.state {
	case StatePlaying:
		return nil
	case StateEnded:
		c.base = 0
		c.startSessionLocked()
	}
	c.state = StatePlaying
	c.startedAt = time.Now()
	return nil
}

func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying {
		return
	}
	c.base = c.positionLocked()
	c.state = StatePaused
}

func (c *Clock) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seconds < 0 {
		seconds = 0
	}
	if c.duration > 0 && seconds > c.duration {
		seconds = c.duration
	}
	c.base = seconds
	c.startedAt = time.Now()
	c.dirty = true
	if c.state == StateEnded {
		c.state = StatePaused
		c.startSessionLocked()
	}
}

func (c *Clock) SetVolume(volume int, muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = volume
	c.muted = muted
}

// Position returns the current media position in seconds
func (c *Clock) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

// State returns the playback state
func (c *Clock) State() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Clock) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopSessionLocked()
	c.loaded = false
	c.state = StateStopped
	c.song = types.Song{}
	c.base = 0
	return nil
}

func (c *Clock) positionLocked() float64 {
	pos := c.base
	if c.state == StatePlaying {
		pos += time.Since(c.startedAt).Seconds()
	}
	if c.duration > 0 && pos > c.duration {
		pos = c.duration
	}
	return pos
}

func (c *Clock) stopSessionLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.sessionID++
}

func (c *Clock) startSessionLocked() {
	if c.cancel != nil {
		c.cancel()
	}
	c.sessionID++
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx, c.sessionID, c.duration)
}

// run delivers events for one session. Listener calls happen without the lock held.
func (c *Clock) run(ctx context.Context, sessionID uint64, duration float64) {
	if duration > 0 {
		if l := c.activeListener(sessionID); l != nil {
			l.OnDuration(duration)
		}
	}

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if c.sessionID != sessionID {
			c.mu.Unlock()
			return
		}
		emit := c.state == StatePlaying || c.dirty
		c.dirty = false
		pos := c.positionLocked()
		ended := c.state == StatePlaying && c.duration > 0 && pos >= c.duration
		if ended {
			c.state = StateEnded
			c.base = c.duration
			c.cancel()
			c.cancel = nil
		}
		listener := c.listener
		c.mu.Unlock()

		if listener == nil {
			if ended {
				return
			}
			continue
		}
		if emit {
			listener.OnTimeUpdate(pos)
		}
		if ended {
			c.logger.Debug("Media ended", zap.Uint64("session", sessionID))
			listener.OnEnded()
			return
		}
	}
}

func (c *Clock) activeListener(sessionID uint64) Listener {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID != sessionID {
		return nil
	}
	return c.listener
}

var _ Transport = (*Clock)(nil)
