package types

import (
	"testing"
	"time"
)

func TestParseDisplayDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"3:02", 182},
		{"0:45", 45},
		{"1:00:00", 3600},
		{"", 0},
		{"abc", 0},
		{"3:-1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseDisplayDuration(tt.input); got != tt.expected {
				t.Errorf("ParseDisplayDuration(%q) = %v; want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatDisplayDuration(t *testing.T) {
	if got := FormatDisplayDuration(182 * time.Second); got != "3:02" {
		t.Errorf("Expected 3:02, got %s", got)
	}
	if got := FormatDisplayDuration(3725 * time.Second); got != "1:02:05" {
		t.Errorf("Expected 1:02:05, got %s", got)
	}
	if got := FormatDisplayDuration(0); got != "" {
		t.Errorf("Expected empty string, got %s", got)
	}
}

func TestSongPlayable(t *testing.T) {
	tests := []struct {
		name     string
		mediaURL string
		expected bool
	}{
		{"http url", "https://cdn.example.com/a.mp3", true},
		{"relative path", "/media/a.mp3", true},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"malformed", "http://[::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Song{ID: "1", MediaURL: tt.mediaURL}
			if s.Playable() != tt.expected {
				t.Errorf("Playable(%q) = %v; want %v", tt.mediaURL, s.Playable(), tt.expected)
			}
		})
	}
}

func TestPlaylistClone(t *testing.T) {
	p := Playlist{ID: "p1", SongIDs: []string{"a", "b"}}
	c := p.Clone()
	c.SongIDs[0] = "z"

	if p.SongIDs[0] != "a" {
		t.Error("Clone should not share the song id slice")
	}
	if !p.Contains("b") || p.Contains("z") {
		t.Error("Contains returned unexpected result")
	}
}
