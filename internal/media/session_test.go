package media

import (
	"testing"
)

var _ Session = (*NoOpSession)(nil)

func TestNames(t *testing.T) {
	states := map[PlaybackState]string{
		StatePlaying:      "Playing",
		StatePaused:       "Paused",
		StateStopped:      "Stopped",
		PlaybackState(42): "Stopped",
	}
	for state, want := range states {
		if got := state.String(); got != want {
			t.Errorf("PlaybackState(%d).String() = %q, want %q", state, got, want)
		}
	}

	commands := map[Command]string{
		CmdPlayPause: "play-pause",
		CmdSeek:      "seek",
		CmdSetVolume: "set-volume",
		Command(-1):  "unknown",
		Command(100): "unknown",
	}
	for cmd, want := range commands {
		if got := cmd.String(); got != want {
			t.Errorf("Command(%d).String() = %q, want %q", cmd, got, want)
		}
	}
}
