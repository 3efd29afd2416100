// Package player owns the playback session and decides what plays next.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/audio"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/library"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/lyrics"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/media"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/queue"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/radio"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/store"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

var (
	// ErrUnplayable is returned when a song has no usable media reference
	ErrUnplayable = errors.New("song is not playable")
	// ErrPlaybackStart is returned when the transport refuses to start
	ErrPlaybackStart = errors.New("playback failed to start")
	// ErrNoSong is returned by operations that need a current song
	ErrNoSong = errors.New("no song is loaded")
)

const (
	// restartThreshold is how far into a song skipping back restarts it instead
	restartThreshold = 3.0
	unmuteVolume     = 50
	sessionInterval  = 5 * time.Second
)

// NoticeCallback receives user-actionable failures
type NoticeCallback func(n types.Notice)

// Deps are the collaborators of a Controller
type Deps struct {
	Queue      *queue.Manager
	QueueStore *queue.Store
	Radio      *radio.Engine
	Lyrics     *lyrics.Engine
	Library    *library.Library
	Transport  audio.Transport
	Session    media.Session
	Adapter    *store.Adapter
	Logger     *zap.Logger
	Volume     int
}

// Status is a snapshot of the playback session
type Status struct {
	Song       *types.Song `json:"song,omitempty"`
	Playing    bool        `json:"playing"`
	Position   float64     `json:"position"`
	Duration   float64     `json:"duration"`
	Volume     int         `json:"volume"`
	Muted      bool        `json:"muted"`
	Expanded   bool        `json:"expanded"`
	Shuffle    bool        `json:"shuffle"`
	Radio      bool        `json:"radio"`
	RadioMood  string      `json:"radioMood,omitempty"`
	RadioState string      `json:"radioState"`
	QueueSize  int         `json:"queueSize"`
	Favorite   bool        `json:"favorite"`
}

// Controller is the single playback session. It consults the queue or the radio
// engine on skip and natural end, and feeds the transport position to the lyric engine.
type Controller struct {
	mu       sync.Mutex
	current  types.Song
	loaded   bool
	playing  bool
	position float64
	duration float64
	volume   int
	muted    bool
	expanded bool
	radioOn  bool
	// generation is bumped whenever the current song changes; async advances started
	// under an older generation are discarded
	generation    uint64
	sessionSynced time.Time

	queue      *queue.Manager
	queueStore *queue.Store
	radio      *radio.Engine
	lyrics     *lyrics.Engine
	library    *library.Library
	transport  audio.Transport
	session    media.Session
	adapter    *store.Adapter
	onNotice   NoticeCallback
	logger     *zap.Logger
	wg         sync.WaitGroup
}

// New creates a controller, restores the persisted shuffle and radio flags and
// registers it as the transport listener and media command handler.
func New(d Deps) *Controller {
	volume := d.Volume
	if volume <= 0 || volume > 100 {
		volume = 100
	}
	session := d.Session
	if session == nil {
		session = media.NewNoOpSession()
	}

	c := &Controller{
		volume:     volume,
		queue:      d.Queue,
		queueStore: d.QueueStore,
		radio:      d.Radio,
		lyrics:     d.Lyrics,
		library:    d.Library,
		transport:  d.Transport,
		session:    session,
		adapter:    d.Adapter,
		logger:     d.Logger.Named("player"),
	}

	if c.queueStore != nil {
		if err := c.queueStore.Load(); err != nil {
			c.logger.Warn("Discarding stored shuffle flag", zap.Error(err))
		}
	}
	if c.adapter != nil {
		if _, err := c.adapter.Load(store.KeyRadio, &c.radioOn); err != nil {
			c.logger.Warn("Discarding stored radio flag", zap.Error(err))
			c.radioOn = false
		}
	}

	c.transport.SetListener(c)
	c.transport.SetVolume(c.volume, c.muted)
	c.session.SetCommandHandler(c)
	_ = c.session.UpdateShuffle(c.queue.Shuffle())
	_ = c.session.UpdateVolume(c.volume, c.muted)
	return c
}

// SetOnNotice sets the receiver of user-visible failures
func (c *Controller) SetOnNotice(cb NoticeCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onNotice = cb
}

func (c *Controller) notify(kind types.NoticeKind, song types.Song, msg string) {
	c.mu.Lock()
	cb := c.onNotice
	c.mu.Unlock()
	if cb != nil {
		cb(types.Notice{Kind: kind, Message: msg, Song: song})
	}
}

// PlaySong makes song current and starts it. Playing the current song again
// toggles play/pause. With radio off the queue is replaced by songs (or just song);
// with radio on the radio state is reset instead.
func (c *Controller) PlaySong(ctx context.Context, song types.Song, songs []types.Song) error {
	if !song.Playable() {
		c.logger.Info("Refusing unplayable song", zap.String("song", song.ID))
		c.notify(types.NoticeUnplayable, song, "This song can't be played")
		return fmt.Errorf("%w: %s", ErrUnplayable, song.ID)
	}

	c.mu.Lock()
	same := c.loaded && c.current.ID == song.ID
	radioOn := c.radioOn
	c.mu.Unlock()

	if same {
		return c.TogglePlayPause()
	}

	if radioOn {
		c.radio.Reset()
	} else {
		if len(songs) == 0 {
			songs = []types.Song{song}
		}
		c.queue.SetQueue(songs, song)
	}
	return c.start(ctx, song)
}

// start loads and plays song without touching the queue or radio state
func (c *Controller) start(ctx context.Context, song types.Song) error {
	c.mu.Lock()
	gen := c.claimLocked(song)
	c.mu.Unlock()
	return c.launch(ctx, song, gen)
}

// startRadio plays pick if the session is still at gen with radio on. The pick is
// committed to the radio engine in the same critical section; false means the
// advance went stale and nothing was consumed.
func (c *Controller) startRadio(ctx context.Context, pick radio.Pick, gen uint64) (bool, error) {
	c.mu.Lock()
	if c.generation != gen || !c.radioOn || !c.radio.Commit(pick) {
		c.mu.Unlock()
		return false, nil
	}
	next := c.claimLocked(pick.Song)
	c.mu.Unlock()
	return true, c.launch(ctx, pick.Song, next)
}

// claimLocked makes song current and returns its generation
func (c *Controller) claimLocked(song types.Song) uint64 {
	c.generation++
	c.current = song
	c.loaded = true
	c.playing = false
	c.position = 0
	c.duration = song.DurationSeconds()
	return c.generation
}

func (c *Controller) launch(ctx context.Context, song types.Song, gen uint64) error {
	c.library.PushRecent(song)
	c.lyrics.Reset(song)
	c.lyrics.Fetch(context.WithoutCancel(ctx), song)

	_ = c.session.UpdateMetadata(media.Metadata{
		SongID:   song.ID,
		Title:    song.Title,
		Artist:   song.Artist,
		Album:    song.Album,
		Duration: time.Duration(song.DurationSeconds() * float64(time.Second)),
		ArtURL:   song.CoverURL,
	})

	err := c.transport.Load(song)
	if err == nil {
		err = c.transport.Play()
	}
	if err != nil {
		c.logger.Warn("Playback start failed", zap.String("song", song.ID), zap.Error(err))
		_ = c.session.UpdatePlaybackState(media.StatePaused, 0)
		c.notify(types.NoticePlaybackFailed, song, "Playback failed to start")
		return fmt.Errorf("%w: %v", ErrPlaybackStart, err)
	}

	c.mu.Lock()
	if c.generation == gen {
		c.playing = true
	}
	c.mu.Unlock()

	_ = c.session.UpdatePlaybackState(media.StatePlaying, 0)
	c.logger.Info("Now playing", zap.String("song", song.ID), zap.String("title", song.Title))
	return nil
}

// TogglePlayPause flips the play state of the current song
func (c *Controller) TogglePlayPause() error {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return ErrNoSong
	}
	playing := c.playing
	song := c.current
	pos := c.position
	c.mu.Unlock()

	if playing {
		c.transport.Pause()
		c.setPlaying(false)
		_ = c.session.UpdatePlaybackState(media.StatePaused, seconds(pos))
		return nil
	}

	if err := c.transport.Play(); err != nil {
		c.logger.Warn("Resume failed", zap.String("song", song.ID), zap.Error(err))
		c.notify(types.NoticePlaybackFailed, song, "Playback failed to start")
		return fmt.Errorf("%w: %v", ErrPlaybackStart, err)
	}
	c.setPlaying(true)
	_ = c.session.UpdatePlaybackState(media.StatePlaying, seconds(pos))
	return nil
}

func (c *Controller) setPlaying(playing bool) {
	c.mu.Lock()
	c.playing = playing
	c.mu.Unlock()
}

// SkipForward advances to the next song under the active policy
func (c *Controller) SkipForward(ctx context.Context) error {
	return c.advance(ctx)
}

// HandleNaturalEnd is invoked when the media reaches its end unassisted
func (c *Controller) HandleNaturalEnd(ctx context.Context) error {
	c.setPlaying(false)
	return c.advance(ctx)
}

// advance asks the radio engine (asynchronously) or the queue for the next song
func (c *Controller) advance(ctx context.Context) error {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return ErrNoSong
	}
	current := c.current
	radioOn := c.radioOn
	gen := c.generation
	c.mu.Unlock()

	if radioOn {
		ctx = context.WithoutCancel(ctx)
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()

			pick, ok := c.radio.Next(ctx, current)
			if !ok {
				c.mu.Lock()
				stale := c.generation != gen || !c.radioOn
				c.mu.Unlock()
				if !stale {
					c.stall()
				}
				return
			}
			if started, _ := c.startRadio(ctx, pick, gen); !started {
				c.logger.Debug("Discarding radio advance", zap.String("seed", current.ID))
			}
		}()
		return nil
	}

	next, ok := c.queue.Next(current)
	if !ok {
		// The current song may have come from history rather than the queue
		proj := c.queue.Projection()
		if len(proj) == 0 {
			c.stall()
			return nil
		}
		next = proj[0]
	}
	return c.start(ctx, next)
}

// stall pauses playback with nothing further queued
func (c *Controller) stall() {
	c.transport.Pause()
	c.mu.Lock()
	c.playing = false
	pos := c.position
	c.mu.Unlock()
	_ = c.session.UpdatePlaybackState(media.StatePaused, seconds(pos))
	c.logger.Info("Nothing left to play, pausing")
}

// SkipBackward restarts the song when more than a few seconds in, otherwise
// plays the previous distinct song from history. The queue is left untouched.
func (c *Controller) SkipBackward(ctx context.Context) error {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return ErrNoSong
	}
	pos := c.position
	current := c.current
	radioOn := c.radioOn
	c.mu.Unlock()

	if pos > restartThreshold {
		return c.Seek(0)
	}

	prev, ok := c.library.PreviousDistinct(current.ID)
	if !ok {
		return c.Seek(0)
	}
	if radioOn {
		c.radio.Reset()
	}
	return c.start(ctx, prev)
}

// Seek moves the current song to the given position in seconds
func (c *Controller) Seek(position float64) error {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return ErrNoSong
	}
	if position < 0 {
		position = 0
	}
	if c.duration > 0 && position > c.duration {
		position = c.duration
	}
	c.position = position
	playing := c.playing
	c.mu.Unlock()

	c.transport.Seek(position)
	c.lyrics.UpdatePosition(position)

	state := media.StatePaused
	if playing {
		state = media.StatePlaying
	}
	_ = c.session.UpdatePlaybackState(state, seconds(position))
	return nil
}

// SetVolume sets the volume, clamped to 0..100. Zero mutes.
func (c *Controller) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}

	c.mu.Lock()
	c.volume = volume
	c.muted = volume == 0
	muted := c.muted
	c.mu.Unlock()

	c.applyVolume(volume, muted)
}

// ToggleMute flips the mute flag. Unmuting at volume 0 restores a usable level.
func (c *Controller) ToggleMute() bool {
	c.mu.Lock()
	c.muted = !c.muted
	if !c.muted && c.volume == 0 {
		c.volume = unmuteVolume
	}
	volume, muted := c.volume, c.muted
	c.mu.Unlock()

	c.applyVolume(volume, muted)
	return muted
}

func (c *Controller) applyVolume(volume int, muted bool) {
	c.transport.SetVolume(volume, muted)
	_ = c.session.UpdateVolume(volume, muted)
}

// ToggleShuffle flips shuffle, pinning the current song, and returns the new state
func (c *Controller) ToggleShuffle() bool {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	enabled := c.queue.ToggleShuffle(current)
	c.afterShuffle(enabled)
	return enabled
}

func (c *Controller) setShuffle(enabled bool) {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	c.queue.SetShuffle(enabled, current)
	c.afterShuffle(enabled)
}

func (c *Controller) afterShuffle(enabled bool) {
	if c.queueStore != nil {
		c.queueStore.Save()
	}
	_ = c.session.UpdateShuffle(enabled)
}

// SetRadioMode turns radio mode on or off. Turning it off clears the radio state.
func (c *Controller) SetRadioMode(enabled bool) {
	c.mu.Lock()
	changed := c.radioOn != enabled
	c.radioOn = enabled
	c.mu.Unlock()

	if !enabled {
		c.radio.Reset()
	}
	if changed && c.adapter != nil {
		c.adapter.Save(store.KeyRadio, enabled)
	}
	c.logger.Info("Radio mode changed", zap.Bool("enabled", enabled))
}

// ToggleRadio flips radio mode and returns the new state
func (c *Controller) ToggleRadio() bool {
	c.mu.Lock()
	enabled := !c.radioOn
	c.mu.Unlock()

	c.SetRadioMode(enabled)
	return enabled
}

// SetExpanded records whether the full-screen player view is open
func (c *Controller) SetExpanded(expanded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expanded = expanded
}

// Close stops playback and clears the session
func (c *Controller) Close() {
	c.mu.Lock()
	c.generation++
	c.current = types.Song{}
	c.loaded = false
	c.playing = false
	c.position = 0
	c.duration = 0
	c.expanded = false
	c.mu.Unlock()

	if err := c.transport.Close(); err != nil {
		c.logger.Warn("Failed to close transport", zap.Error(err))
	}
	c.lyrics.Reset(types.Song{})
	_ = c.session.UpdateMetadata(media.Metadata{})
	_ = c.session.UpdatePlaybackState(media.StateStopped, 0)
}

// Status returns a snapshot of the session
func (c *Controller) Status() Status {
	c.mu.Lock()
	st := Status{
		Playing:  c.playing,
		Position: c.position,
		Duration: c.duration,
		Volume:   c.volume,
		Muted:    c.muted,
		Expanded: c.expanded,
		Radio:    c.radioOn,
	}
	if c.loaded {
		song := c.current
		st.Song = &song
	}
	c.mu.Unlock()

	st.Shuffle = c.queue.Shuffle()
	st.QueueSize = c.queue.Len()
	st.RadioState = c.radio.State().String()
	st.RadioMood = c.radio.Mood()
	if st.Song != nil {
		st.Favorite = c.library.IsFavorite(st.Song.ID)
	}
	return st
}

// Lyrics returns the lyric state of the current song
func (c *Controller) Lyrics() lyrics.Snapshot {
	return c.lyrics.Snapshot()
}

// Current returns the current song
func (c *Controller) Current() (types.Song, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.loaded
}

// Wait blocks until background advances and lyric fetches have finished
func (c *Controller) Wait() {
	c.wg.Wait()
	c.lyrics.Wait()
}

// audio.Listener

// OnTimeUpdate records the media position and moves the lyric cursor
func (c *Controller) OnTimeUpdate(position float64) {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return
	}
	c.position = position
	report := c.playing && time.Since(c.sessionSynced) >= sessionInterval
	if report {
		c.sessionSynced = time.Now()
	}
	c.mu.Unlock()

	c.lyrics.UpdatePosition(position)
	if report {
		_ = c.session.UpdatePlaybackState(media.StatePlaying, seconds(position))
	}
}

// OnDuration records the media duration once known
func (c *Controller) OnDuration(duration float64) {
	c.mu.Lock()
	c.duration = duration
	c.mu.Unlock()
	c.lyrics.SetDuration(duration)
}

// OnEnded advances to the next song
func (c *Controller) OnEnded() {
	if err := c.HandleNaturalEnd(context.Background()); err != nil && !errors.Is(err, ErrNoSong) {
		c.logger.Warn("Failed to advance after end of song", zap.Error(err))
	}
}

// media.CommandHandler

// OnCommand handles media keys and other OS media controls
func (c *Controller) OnCommand(cmd media.Command, data any) error {
	ctx := context.Background()
	c.logger.Debug("Media command", zap.Stringer("command", cmd))

	switch cmd {
	case media.CmdPlay:
		if c.Status().Playing {
			return nil
		}
		return c.TogglePlayPause()
	case media.CmdPause:
		if !c.Status().Playing {
			return nil
		}
		return c.TogglePlayPause()
	case media.CmdPlayPause:
		return c.TogglePlayPause()
	case media.CmdStop:
		c.Close()
	case media.CmdNext:
		return c.SkipForward(ctx)
	case media.CmdPrevious:
		return c.SkipBackward(ctx)
	case media.CmdSeek:
		if d, ok := data.(time.Duration); ok {
			return c.Seek(d.Seconds())
		}
	case media.CmdSetShuffle:
		if enabled, ok := data.(bool); ok && enabled != c.queue.Shuffle() {
			c.setShuffle(enabled)
		}
	case media.CmdSetVolume:
		if v, ok := data.(int); ok {
			c.SetVolume(v)
		}
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

var (
	_ audio.Listener       = (*Controller)(nil)
	_ media.CommandHandler = (*Controller)(nil)
)
