// Package lyrics fetches lyric text for the current song and keeps a line cursor
// in sync with the playback position.
package lyrics

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/provider"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

const (
	leadIn  = 1.0 // Seconds before the first line
	tailGap = 2.0 // Seconds removed from the duration before spreading lines
)

// Line is a lyric line with its estimated start time in seconds
type Line struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
}

// ComputeTimings spreads the non-empty lines of text evenly over duration.
// Returns nil when there are no lines or the duration is unknown (≤ 2s).
func ComputeTimings(text string, duration float64) []Line {
	if duration <= tailGap {
		return nil
	}

	var texts []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			texts = append(texts, l)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	interval := (duration - tailGap) / float64(len(texts))
	lines := make([]Line, len(texts))
	for i, t := range texts {
		lines[i] = Line{Text: t, Start: leadIn + float64(i)*interval}
	}
	return lines
}

// Snapshot is the visible lyric state
type Snapshot struct {
	SongID    string              `json:"songId,omitempty"`
	Available bool                `json:"available"`
	Loading   bool                `json:"loading"`
	Lines     []Line              `json:"lines,omitempty"`
	Current   int                 `json:"current"`
	Analysis  *types.MoodAnalysis `json:"analysis,omitempty"`
}

// Engine owns the lyric state of the current song
type Engine struct {
	mu       sync.Mutex
	song     types.Song
	text     string
	analysis *types.MoodAnalysis
	duration float64
	lines    []Line
	current  int
	inflight map[string]bool

	source provider.LyricsSource
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewEngine creates a lyric engine backed by source
func NewEngine(source provider.LyricsSource, logger *zap.Logger) *Engine {
	return &Engine{
		current:  -1,
		inflight: make(map[string]bool),
		source:   source,
		logger:   logger.Named("lyrics"),
	}
}

// Reset clears the visible lyric state and makes song current.
// The duration starts from the song's display duration until SetDuration reports one.
func (e *Engine) Reset(song types.Song) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.song = song
	e.text = ""
	e.analysis = nil
	e.duration = song.DurationSeconds()
	e.lines = nil
	e.current = -1
}

// SetDuration updates the known duration and recomputes the timing table
func (e *Engine) SetDuration(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seconds == e.duration {
		return
	}
	e.duration = seconds
	e.recomputeLocked()
}

// Fetch starts an asynchronous lookup for song. Concurrent fetches for the same song
// are collapsed into one. The result is applied only if song is still current.
func (e *Engine) Fetch(ctx context.Context, song types.Song) {
	e.mu.Lock()
	if song.ID == "" || e.inflight[song.ID] {
		e.mu.Unlock()
		return
	}
	e.inflight[song.ID] = true
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		res, err := e.source.GetLyrics(ctx, song.Title, song.Artist, song.Album)

		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.inflight, song.ID)

		if err != nil {
			e.logger.Warn("Lyrics fetch failed", zap.String("song", song.ID), zap.Error(err))
			return
		}
		if e.song.ID != song.ID {
			e.logger.Debug("Discarding stale lyrics", zap.String("song", song.ID), zap.String("current", e.song.ID))
			return
		}

		e.analysis = res.Analysis
		if res.HasLyrics() {
			e.text = res.Lyrics
		} else {
			e.text = ""
		}
		e.recomputeLocked()
		e.logger.Debug("Lyrics applied", zap.String("song", song.ID), zap.Int("lines", len(e.lines)))
	}()
}

// Wait blocks until in-flight fetches have completed
func (e *Engine) Wait() {
	e.wg.Wait()
}

// UpdatePosition moves the cursor to the last line starting at or before pos.
// changed is false when the cursor did not move.
func (e *Engine) UpdatePosition(pos float64) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := activeLine(e.lines, pos)
	if idx == e.current {
		return idx, false
	}
	e.current = idx
	return idx, true
}

// activeLine returns the index of the last line whose start is ≤ pos, or -1
func activeLine(lines []Line, pos float64) int {
	idx := -1
	for i, l := range lines {
		if l.Start > pos {
			break
		}
		idx = i
	}
	return idx
}

func (e *Engine) recomputeLocked() {
	e.lines = ComputeTimings(e.text, e.duration)
	e.current = -1
}

// Snapshot returns a copy of the visible state
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	var analysis *types.MoodAnalysis
	if e.analysis != nil {
		a := *e.analysis
		analysis = &a
	}
	return Snapshot{
		SongID:    e.song.ID,
		Available: e.text != "",
		Loading:   e.inflight[e.song.ID],
		Lines:     append([]Line(nil), e.lines...),
		Current:   e.current,
		Analysis:  analysis,
	}
}
