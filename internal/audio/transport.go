// Package audio provides the media transport driven by the playback controller.
package audio

import (
	"errors"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

var (
	// ErrNotLoaded is returned by Play before any song has been loaded
	ErrNotLoaded = errors.New("no media loaded")
	// ErrUnsupportedMedia is returned by Play when the media reference cannot be played
	ErrUnsupportedMedia = errors.New("unsupported media")
)

// Listener receives media events. Events are delivered from the transport's own
// goroutine; implementations may call back into the transport.
type Listener interface {
	OnTimeUpdate(position float64)
	OnDuration(duration float64)
	OnEnded()
}

// Transport is a single media element
type Transport interface {
	// Load replaces the current media. Playback does not start.
	Load(song types.Song) error
	// Play starts or resumes playback
	Play() error
	Pause()
	Seek(seconds float64)
	// SetVolume applies volume 0..100 and the mute flag
	SetVolume(volume int, muted bool)
	SetListener(l Listener)
	Close() error
}
