//go:build linux

package media

import (
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

type emitted struct {
	name   string
	values []any
}

type fakeConn struct {
	mu    sync.Mutex
	calls []emitted
}

func (f *fakeConn) Emit(path dbus.ObjectPath, name string, values ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, emitted{name: name, values: values})
	return nil
}

func (f *fakeConn) Close() error { return nil }

func (f *fakeConn) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.name == name {
			n++
		}
	}
	return n
}

func TestMPRISMetadata(t *testing.T) {
	conn := &fakeConn{}
	s := newMPRISSession(conn, zap.NewNop())

	_ = s.UpdateMetadata(Metadata{
		SongID:   "yt:abc-123",
		Title:    "Blue Moon",
		Artist:   "Billie",
		Duration: 3 * time.Minute,
		ArtURL:   "https://img.example/a.jpg",
	})

	v, derr := s.Get(mprisPlayerInterface, "Metadata")
	if derr != nil {
		t.Fatalf("Get Metadata failed: %v", derr)
	}
	m, ok := v.Value().(map[string]dbus.Variant)
	if !ok {
		t.Fatalf("Unexpected metadata type %T", v.Value())
	}
	if got := m["xesam:title"].Value(); got != "Blue Moon" {
		t.Errorf("Expected title, got %v", got)
	}
	if got := m["mpris:trackid"].Value(); got != dbus.ObjectPath("/org/armusic/track/yt_abc_123") {
		t.Errorf("Unexpected track id %v", got)
	}
	if !m["mpris:trackid"].Value().(dbus.ObjectPath).IsValid() {
		t.Error("Track id is not a valid object path")
	}
	if conn.count(propertiesInterface+".PropertiesChanged") != 1 {
		t.Error("Expected a PropertiesChanged signal")
	}
}

func TestMPRISSeekedOnResume(t *testing.T) {
	conn := &fakeConn{}
	s := newMPRISSession(conn, zap.NewNop())
	seeked := mprisPlayerInterface + ".Seeked"

	_ = s.UpdatePlaybackState(StatePlaying, 0)
	if conn.count(seeked) != 1 {
		t.Fatalf("Expected Seeked on start, got %d", conn.count(seeked))
	}

	// Regular progress does not emit Seeked
	_ = s.UpdatePlaybackState(StatePlaying, 0)
	if conn.count(seeked) != 1 {
		t.Errorf("Unexpected Seeked during steady playback")
	}

	// A jump does
	_ = s.UpdatePlaybackState(StatePlaying, 90*time.Second)
	if conn.count(seeked) != 2 {
		t.Errorf("Expected Seeked after a jump, got %d", conn.count(seeked))
	}
}

func TestMPRISCommands(t *testing.T) {
	s := newMPRISSession(&fakeConn{}, zap.NewNop())

	var got []Command
	var seekTo time.Duration
	var volume int
	s.SetCommandHandler(CommandHandlerFunc(func(cmd Command, data any) error {
		got = append(got, cmd)
		switch cmd {
		case CmdSeek:
			seekTo = data.(time.Duration)
		case CmdSetVolume:
			volume = data.(int)
		}
		// Handlers may update the session while handling a command
		return s.UpdateShuffle(true)
	}))

	_ = s.UpdatePlaybackState(StatePlaying, 10*time.Second)
	s.PlayPause()
	s.Next()
	s.Previous()
	s.Seek(5_000_000)
	s.Set(mprisPlayerInterface, "Volume", dbus.MakeVariant(0.42))

	want := []Command{CmdPlayPause, CmdNext, CmdPrevious, CmdSeek, CmdSetVolume}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Command %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if seekTo != 15*time.Second {
		t.Errorf("Expected seek to 15s, got %v", seekTo)
	}
	if volume != 42 {
		t.Errorf("Expected volume 42, got %d", volume)
	}
}

func TestMPRISSetPositionIgnoresStaleTrack(t *testing.T) {
	s := newMPRISSession(&fakeConn{}, zap.NewNop())
	_ = s.UpdateMetadata(Metadata{SongID: "current"})

	calls := 0
	s.SetCommandHandler(CommandHandlerFunc(func(cmd Command, data any) error {
		calls++
		return nil
	}))

	s.SetPosition(trackPath("previous"), 1_000_000)
	s.SetPosition(trackPath("current"), 1_000_000)
	if calls != 1 {
		t.Errorf("Expected one seek for the current track, got %d", calls)
	}
}

func TestMPRISVolumeProperty(t *testing.T) {
	s := newMPRISSession(&fakeConn{}, zap.NewNop())

	_ = s.UpdateVolume(80, false)
	v, _ := s.Get(mprisPlayerInterface, "Volume")
	if v.Value() != 0.8 {
		t.Errorf("Expected 0.8, got %v", v.Value())
	}

	_ = s.UpdateVolume(80, true)
	v, _ = s.Get(mprisPlayerInterface, "Volume")
	if v.Value() != 0.0 {
		t.Errorf("Expected 0 while muted, got %v", v.Value())
	}
}
