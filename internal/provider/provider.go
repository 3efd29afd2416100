// Package provider defines the network capabilities consumed by the playback core
// (song search, related-song suggestion, lyric retrieval, cover-art generation)
// and HTTP clients implementing them.
package provider

//go:generate mockgen -source=provider.go -destination=mocks/mock_provider.go -package=mocks

import (
	"context"
	"strings"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

// Searcher finds songs matching a free-text query.
// An empty result is not an error.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]types.Song, error)
}

// Suggester proposes search queries for songs related to a seed title and mood
type Suggester interface {
	Suggest(ctx context.Context, seedTitle, mood string) ([]string, error)
}

// LyricsSource retrieves lyric text and a mood/theme analysis for a song
type LyricsSource interface {
	GetLyrics(ctx context.Context, title, artist, album string) (LyricsResult, error)
}

// ArtGenerator produces a cover image for a playlist name
type ArtGenerator interface {
	Generate(ctx context.Context, playlistName string) (ArtResult, error)
}

// LyricsResult is the outcome of a lyric lookup
type LyricsResult struct {
	Lyrics   string              `json:"lyrics"`
	Analysis *types.MoodAnalysis `json:"analysis,omitempty"`
}

// noLyricsSentinels are provider replies meaning "nothing found"
var noLyricsSentinels = []string{
	"no lyrics found",
	"no lyrics available",
	"lyrics not available",
	"instrumental",
}

// HasLyrics reports whether the result carries real lyric text
func (r LyricsResult) HasLyrics() bool {
	text := strings.TrimSpace(r.Lyrics)
	if text == "" {
		return false
	}
	lower := strings.ToLower(strings.TrimRight(text, ".!"))
	for _, s := range noLyricsSentinels {
		if lower == s {
			return false
		}
	}
	return true
}

// ArtResult is the outcome of a cover generation request.
// An empty ImageURL means generation was declined.
type ArtResult struct {
	ImageURL string `json:"imageUrl,omitempty"`
}
