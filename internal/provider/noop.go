package provider

import (
	"context"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

// Noop implements every capability with empty results.
// It stands in for providers that are not configured.
type Noop struct{}

func (Noop) Search(ctx context.Context, query string, limit int) ([]types.Song, error) {
	return nil, nil
}

func (Noop) Suggest(ctx context.Context, seedTitle, mood string) ([]string, error) {
	return nil, nil
}

func (Noop) GetLyrics(ctx context.Context, title, artist, album string) (LyricsResult, error) {
	return LyricsResult{}, nil
}

func (Noop) Generate(ctx context.Context, playlistName string) (ArtResult, error) {
	return ArtResult{}, nil
}

var (
	_ Searcher     = Noop{}
	_ Suggester    = Noop{}
	_ LyricsSource = Noop{}
	_ ArtGenerator = Noop{}
)
