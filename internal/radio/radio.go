// Package radio implements the auto-continuation policy used while radio mode is on.
// Given a seed song it derives a mood, fills a pending queue from related-song
// suggestions and falls back to artist and popularity searches when that fails.
package radio

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/provider"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

const (
	// MoodThreshold is the number of plays after which the mood rotates
	MoodThreshold = 15

	// MoodPopular seeds suggestions when no mood could be derived.
	// It is not part of the rotation.
	MoodPopular = "popular"

	suggestionQueries = 5
	fallbackLimit     = 10
	popularQuery      = "popular songs"
)

// Moods is the fixed mood rotation
var Moods = []string{"happy", "sad", "energetic", "calm", "romantic", "melancholic"}

// State describes the engine's position in its lifecycle
type State int

const (
	StateIdle State = iota
	StateSeeded
	StateExhausted
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateSeeded:
		return "seeded"
	case StateExhausted:
		return "exhausted"
	default:
		return "idle"
	}
}

// Engine holds the radio state: mood, plays under that mood and the pending queue
type Engine struct {
	mu      sync.Mutex
	mood    string
	played  int
	pending []types.Song
	history map[string]struct{} // Seeds and committed songs since the last Reset
	epoch   uint64              // Incremented by Reset; fills started under an older epoch are discarded
	rng     *rand.Rand
	flight  singleflight.Group

	search  provider.Searcher
	suggest provider.Suggester
	lyrics  provider.LyricsSource
	logger  *zap.Logger
}

// Pick is a song offered by Next. It stays at the head of the pending queue until
// it is committed.
type Pick struct {
	Song  types.Song
	epoch uint64
}

// NewEngine creates a radio engine over the given providers
func NewEngine(search provider.Searcher, suggest provider.Suggester, lyrics provider.LyricsSource, logger *zap.Logger) *Engine {
	return &Engine{
		pending: make([]types.Song, 0),
		history: make(map[string]struct{}),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		search:  search,
		suggest: suggest,
		lyrics:  lyrics,
		logger:  logger.Named("radio"),
	}
}

// Reset clears mood, counter, history and pending queue
func (e *Engine) Reset() {
	e.mu.Lock()
	e.mood = ""
	e.played = 0
	e.pending = make([]types.Song, 0)
	e.history = make(map[string]struct{})
	e.epoch++
	e.mu.Unlock()
	e.logger.Debug("Radio state reset")
}

// Mood returns the current mood, empty when unseeded
func (e *Engine) Mood() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mood
}

// Played returns the number of songs played under the current mood
func (e *Engine) Played() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.played
}

// Pending returns a copy of the auto-fill queue
func (e *Engine) Pending() []types.Song {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]types.Song(nil), e.pending...)
}

// State reports the engine state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case len(e.pending) > 0:
		return StateSeeded
	case e.mood != "":
		return StateExhausted
	default:
		return StateIdle
	}
}

// Next offers the song to play after seed without consuming it. When the pending
// queue is empty it is refilled first, which blocks on the providers; concurrent
// callers share a single fill. Returns false when nothing could be found, or when
// Reset was called while the fill was in flight.
func (e *Engine) Next(ctx context.Context, seed types.Song) (Pick, bool) {
	e.mu.Lock()
	if pick, ok := e.peekLocked(); ok {
		e.mu.Unlock()
		return pick, true
	}
	epoch := e.epoch
	e.mu.Unlock()

	_, _, _ = e.flight.Do(strconv.FormatUint(epoch, 10), func() (any, error) {
		e.refill(ctx, seed, epoch)
		return nil, nil
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.epoch != epoch {
		return Pick{}, false
	}
	return e.peekLocked()
}

// Commit takes pick off the pending queue and counts it as played. It fails when
// the pick is no longer at the head, e.g. after a Reset or a commit by another caller.
func (e *Engine) Commit(pick Pick) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if pick.epoch != e.epoch || len(e.pending) == 0 || e.pending[0].ID != pick.Song.ID {
		return false
	}
	e.pending = e.pending[1:]
	e.played++
	e.history[pick.Song.ID] = struct{}{}
	return true
}

func (e *Engine) peekLocked() (Pick, bool) {
	if len(e.pending) == 0 {
		return Pick{}, false
	}
	return Pick{Song: e.pending[0], epoch: e.epoch}, true
}

// refill derives the mood if needed, runs the fallback tiers and appends what is
// still unplayed to the pending queue
func (e *Engine) refill(ctx context.Context, seed types.Song, epoch uint64) {
	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		return
	}
	e.history[seed.ID] = struct{}{}
	mood, needsDerive := e.nextMoodLocked()
	e.mu.Unlock()

	if needsDerive {
		mood = e.deriveMood(ctx, seed)
		e.mu.Lock()
		if e.epoch == epoch && e.mood == "" {
			e.mood = mood
		}
		e.mu.Unlock()
	}

	found := e.fill(ctx, seed, mood)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.epoch != epoch {
		e.logger.Debug("Discarding radio fill after reset", zap.String("seed", seed.ID))
		return
	}
	found = lo.Reject(found, func(s types.Song, _ int) bool { return e.excludedLocked(s.ID) })
	e.pending = append(e.pending, found...)
}

// excludedLocked reports whether id is already queued or was played under this seed chain
func (e *Engine) excludedLocked(id string) bool {
	if _, ok := e.history[id]; ok {
		return true
	}
	return lo.ContainsBy(e.pending, func(s types.Song) bool { return s.ID == id })
}

// nextMoodLocked picks the mood for the coming fill. Returns needsDerive when no mood
// has been set yet.
func (e *Engine) nextMoodLocked() (string, bool) {
	if e.mood == "" {
		return "", true
	}
	if e.played >= MoodThreshold {
		candidates := lo.Without(Moods, e.mood)
		e.mood = candidates[e.rng.Intn(len(candidates))]
		e.played = 0
		e.logger.Info("Radio mood rotated", zap.String("mood", e.mood))
	}
	return e.mood, false
}

// deriveMood asks the lyric source for an analysis of seed
func (e *Engine) deriveMood(ctx context.Context, seed types.Song) string {
	res, err := e.lyrics.GetLyrics(ctx, seed.Title, seed.Artist, seed.Album)
	if err != nil {
		e.logger.Warn("Mood analysis failed", zap.String("seed", seed.ID), zap.Error(err))
		return MoodPopular
	}
	if res.Analysis == nil {
		return MoodPopular
	}
	mood := strings.ToLower(strings.TrimSpace(res.Analysis.Mood))
	if !lo.Contains(Moods, mood) {
		return MoodPopular
	}
	e.logger.Debug("Radio mood derived", zap.String("seed", seed.ID), zap.String("mood", mood))
	return mood
}

// fill runs the three fallback tiers and returns the first non-empty result
func (e *Engine) fill(ctx context.Context, seed types.Song, mood string) []types.Song {
	e.mu.Lock()
	exclude := lo.Map(e.pending, func(s types.Song, _ int) string { return s.ID })
	exclude = append(exclude, lo.Keys(e.history)...)
	e.mu.Unlock()
	exclude = append(exclude, seed.ID)

	if songs := e.fromSuggestions(ctx, seed, mood, exclude); len(songs) > 0 {
		return songs
	}

	if songs, err := e.searchFiltered(ctx, seed.Artist, exclude); err != nil {
		e.logger.Warn("Artist search failed", zap.String("artist", seed.Artist), zap.Error(err))
	} else if len(songs) > 0 {
		e.logger.Debug("Radio filled from artist search", zap.Int("songs", len(songs)))
		return songs
	}

	songs, err := e.searchFiltered(ctx, popularQuery, exclude)
	if err != nil {
		e.logger.Warn("Popularity search failed", zap.Error(err))
		return nil
	}
	if len(songs) == 0 {
		e.logger.Info("Radio exhausted", zap.String("seed", seed.ID), zap.String("mood", mood))
	}
	return songs
}

// fromSuggestions searches each suggested query for its single best match
func (e *Engine) fromSuggestions(ctx context.Context, seed types.Song, mood string, exclude []string) []types.Song {
	queries, err := e.suggest.Suggest(ctx, seed.Title, mood)
	if err != nil {
		e.logger.Warn("Suggestion request failed", zap.String("seed", seed.ID), zap.Error(err))
		return nil
	}
	if len(queries) > suggestionQueries {
		queries = queries[:suggestionQueries]
	}

	slots := make([]*types.Song, len(queries))
	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			results, err := e.search.Search(ctx, q, 1)
			if err != nil {
				e.logger.Debug("Suggestion search failed", zap.String("query", q), zap.Error(err))
				return nil
			}
			if len(results) > 0 {
				slots[i] = &results[0]
			}
			return nil
		})
	}
	_ = g.Wait()

	songs := lo.FilterMap(slots, func(s *types.Song, _ int) (types.Song, bool) {
		if s == nil {
			return types.Song{}, false
		}
		return *s, true
	})
	return filter(songs, exclude)
}

func (e *Engine) searchFiltered(ctx context.Context, query string, exclude []string) ([]types.Song, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	songs, err := e.search.Search(ctx, query, fallbackLimit)
	if err != nil {
		return nil, err
	}
	return filter(songs, exclude), nil
}

// filter drops songs whose id is excluded and keeps the first of any duplicates
func filter(songs []types.Song, exclude []string) []types.Song {
	kept := lo.Reject(songs, func(s types.Song, _ int) bool {
		return s.ID == "" || lo.Contains(exclude, s.ID)
	})
	return lo.UniqBy(kept, func(s types.Song) string { return s.ID })
}
