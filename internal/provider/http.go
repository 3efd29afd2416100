package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

const _maxResponseSize = 2 * 1024 * 1024 // 2 MB

// HTTPClient is the shared transport for the provider endpoints
type HTTPClient struct {
	logger *zap.Logger
	client *http.Client
}

// NewHTTPClient creates a client with the given request timeout
func NewHTTPClient(logger *zap.Logger, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		logger: logger.Named("provider"),
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	req.Header.Set("User-Agent", "armusicd/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, _maxResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *HTTPClient) post(ctx context.Context, endpoint string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// SearchClient queries a music search endpoint
type SearchClient struct {
	http     *HTTPClient
	endpoint string
}

// NewSearchClient creates a search client for endpoint
func NewSearchClient(c *HTTPClient, endpoint string) *SearchClient {
	return &SearchClient{http: c, endpoint: endpoint}
}

// SearchItem is one entry of the search response
type SearchItem struct {
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Album           string `json:"album,omitempty"`
	Provider        string `json:"provider"`
	ProviderTrackID string `json:"providerTrackId"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
	DurationMs      int    `json:"durationMs,omitempty"`
	StreamURL       string `json:"streamUrl,omitempty"`
}

type searchResponse struct {
	Items []SearchItem `json:"items"`
}

// Song converts the item to a song. Items without a stream URL are not playable.
func (it SearchItem) Song() types.Song {
	id := it.ProviderTrackID
	if it.Provider != "" {
		id = it.Provider + ":" + it.ProviderTrackID
	}
	return types.Song{
		ID:       id,
		Title:    it.Title,
		Artist:   it.Artist,
		Album:    it.Album,
		Duration: types.FormatDisplayDuration(time.Duration(it.DurationMs) * time.Millisecond),
		CoverURL: it.ThumbnailURL,
		MediaURL: it.StreamURL,
	}
}

func (c *SearchClient) Search(ctx context.Context, query string, limit int) ([]types.Song, error) {
	if limit <= 0 || limit > 25 {
		limit = 10
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))

	var body searchResponse
	if err := c.http.get(ctx, c.endpoint, params, &body); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	out := make([]types.Song, 0, len(body.Items))
	for _, it := range body.Items {
		if it.ProviderTrackID == "" {
			continue
		}
		out = append(out, it.Song())
	}
	c.http.logger.Debug("Search completed", zap.String("query", query), zap.Int("results", len(out)))
	return out, nil
}

// SuggestClient asks a suggestion endpoint for related-song search queries
type SuggestClient struct {
	http     *HTTPClient
	endpoint string
}

// NewSuggestClient creates a suggestion client for endpoint
func NewSuggestClient(c *HTTPClient, endpoint string) *SuggestClient {
	return &SuggestClient{http: c, endpoint: endpoint}
}

type suggestResponse struct {
	Queries []string `json:"queries"`
}

func (c *SuggestClient) Suggest(ctx context.Context, seedTitle, mood string) ([]string, error) {
	params := url.Values{}
	params.Set("title", seedTitle)
	params.Set("mood", mood)

	var body suggestResponse
	if err := c.http.get(ctx, c.endpoint, params, &body); err != nil {
		return nil, fmt.Errorf("suggest for %q: %w", seedTitle, err)
	}
	return body.Queries, nil
}

// LyricsClient fetches lyrics and mood analysis
type LyricsClient struct {
	http     *HTTPClient
	endpoint string
}

// NewLyricsClient creates a lyrics client for endpoint
func NewLyricsClient(c *HTTPClient, endpoint string) *LyricsClient {
	return &LyricsClient{http: c, endpoint: endpoint}
}

func (c *LyricsClient) GetLyrics(ctx context.Context, title, artist, album string) (LyricsResult, error) {
	params := url.Values{}
	params.Set("title", title)
	params.Set("artist", artist)
	if album != "" {
		params.Set("album", album)
	}

	var body LyricsResult
	if err := c.http.get(ctx, c.endpoint, params, &body); err != nil {
		return LyricsResult{}, fmt.Errorf("lyrics for %q: %w", title, err)
	}
	return body, nil
}

// ArtClient requests generated cover art
type ArtClient struct {
	http     *HTTPClient
	endpoint string
}

// NewArtClient creates a cover art client for endpoint
func NewArtClient(c *HTTPClient, endpoint string) *ArtClient {
	return &ArtClient{http: c, endpoint: endpoint}
}

type artRequest struct {
	Prompt string `json:"prompt"`
}

func (c *ArtClient) Generate(ctx context.Context, playlistName string) (ArtResult, error) {
	var body ArtResult
	if err := c.http.post(ctx, c.endpoint, artRequest{Prompt: playlistName}, &body); err != nil {
		return ArtResult{}, fmt.Errorf("cover art for %q: %w", playlistName, err)
	}
	return body, nil
}

var (
	_ Searcher     = (*SearchClient)(nil)
	_ Suggester    = (*SuggestClient)(nil)
	_ LyricsSource = (*LyricsClient)(nil)
	_ ArtGenerator = (*ArtClient)(nil)
)
