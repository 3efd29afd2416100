// Package types provides shared type definitions used across the armusicd daemon.
package types

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Song is a playable track as returned by a search provider.
// Songs are values and are never mutated once placed in a queue.
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Artist   string `json:"artist,omitempty"`
	Album    string `json:"album,omitempty"`
	Duration string `json:"duration,omitempty"` // display string, "m:ss" or "h:mm:ss"
	CoverURL string `json:"coverUrl,omitempty"`
	MediaURL string `json:"mediaUrl,omitempty"`
}

// Playable reports whether the song carries a usable media reference
func (s Song) Playable() bool {
	ref := strings.TrimSpace(s.MediaURL)
	if ref == "" {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme != "" || u.Path != ""
}

// DurationSeconds parses the display duration. Returns 0 when unknown.
func (s Song) DurationSeconds() float64 {
	return ParseDisplayDuration(s.Duration)
}

// ParseDisplayDuration parses "m:ss" or "h:mm:ss" into seconds
func ParseDisplayDuration(d string) float64 {
	d = strings.TrimSpace(d)
	if d == "" {
		return 0
	}
	total := 0
	for _, part := range strings.Split(d, ":") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return float64(total)
}

// FormatDisplayDuration renders a duration as "m:ss" (or "h:mm:ss" past an hour)
func FormatDisplayDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	secs := int(d.Round(time.Second).Seconds())
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return strconv.Itoa(h) + ":" + pad2(m) + ":" + pad2(s)
	}
	return strconv.Itoa(m) + ":" + pad2(s)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// Playlist is a user-created, named list of song references
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SongIDs     []string  `json:"songIds"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Contains reports whether the playlist references the song id
func (p Playlist) Contains(songID string) bool {
	for _, id := range p.SongIDs {
		if id == songID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with p
func (p Playlist) Clone() Playlist {
	out := p
	out.SongIDs = append([]string(nil), p.SongIDs...)
	return out
}

// MoodAnalysis is the mood/theme classification returned alongside lyrics
type MoodAnalysis struct {
	Mood    string `json:"mood,omitempty"`
	Theme   string `json:"theme,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// NoticeKind classifies a user-visible notice
type NoticeKind int

const (
	NoticeUnplayable NoticeKind = iota
	NoticePlaybackFailed
)

// String returns the string representation of the notice kind
func (k NoticeKind) String() string {
	switch k {
	case NoticePlaybackFailed:
		return "playback_failed"
	default:
		return "unplayable"
	}
}

// MarshalText encodes the kind by name
func (k NoticeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name. Unknown names decode as unplayable.
func (k *NoticeKind) UnmarshalText(text []byte) error {
	if string(text) == NoticePlaybackFailed.String() {
		*k = NoticePlaybackFailed
	} else {
		*k = NoticeUnplayable
	}
	return nil
}

// Notice is a user-actionable failure surfaced to the front end
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	Song    Song       `json:"song"`
}
