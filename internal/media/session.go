// Package media publishes the playback session to the desktop (media keys,
// now-playing widgets) and turns desktop requests into player commands.
package media

import (
	"time"
)

// PlaybackState is the coarse transport state shown to the desktop
type PlaybackState int

const (
	StateStopped PlaybackState = iota
	StatePlaying
	StatePaused
)

// String returns the MPRIS PlaybackStatus name
func (s PlaybackState) String() string {
	switch s {
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// Metadata is what the desktop shows for the current song. A zero SongID clears it.
type Metadata struct {
	SongID   string
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
	ArtURL   string
}

// Session mirrors the controller's state onto a desktop integration.
// Implementations must not call back into the handler while publishing.
type Session interface {
	UpdateMetadata(metadata Metadata) error
	// UpdatePlaybackState publishes state with the position it was reached at
	UpdatePlaybackState(state PlaybackState, position time.Duration) error
	UpdateShuffle(enabled bool) error
	// UpdateVolume takes the 0..100 volume; muted publishes as zero
	UpdateVolume(volume int, muted bool) error
	SetCommandHandler(handler CommandHandler)
	Close() error
}

// Command is a request arriving from the desktop
type Command int

const (
	CmdPlay Command = iota
	CmdPause
	CmdPlayPause
	CmdStop
	CmdNext
	CmdPrevious
	CmdSeek
	CmdSetShuffle
	CmdSetVolume
)

var commandNames = [...]string{
	CmdPlay:       "play",
	CmdPause:      "pause",
	CmdPlayPause:  "play-pause",
	CmdStop:       "stop",
	CmdNext:       "next",
	CmdPrevious:   "previous",
	CmdSeek:       "seek",
	CmdSetShuffle: "set-shuffle",
	CmdSetVolume:  "set-volume",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[c]
}

// CommandHandler receives desktop commands. The payload depends on the command:
// CmdSeek carries an absolute time.Duration, CmdSetShuffle a bool and
// CmdSetVolume an int in 0..100; the others carry nil.
type CommandHandler interface {
	OnCommand(cmd Command, data any) error
}

// CommandHandlerFunc lets a plain function serve as a CommandHandler
type CommandHandlerFunc func(cmd Command, data any) error

func (f CommandHandlerFunc) OnCommand(cmd Command, data any) error {
	return f(cmd, data)
}

// NoOpSession discards every update. It stands in when the desktop bus is
// unavailable or integration is switched off.
type NoOpSession struct{}

func NewNoOpSession() *NoOpSession { return &NoOpSession{} }

func (*NoOpSession) UpdateMetadata(Metadata) error                          { return nil }
func (*NoOpSession) UpdatePlaybackState(PlaybackState, time.Duration) error { return nil }
func (*NoOpSession) UpdateShuffle(bool) error                               { return nil }
func (*NoOpSession) UpdateVolume(int, bool) error                           { return nil }
func (*NoOpSession) SetCommandHandler(CommandHandler)                       {}
func (*NoOpSession) Close() error                                           { return nil }
