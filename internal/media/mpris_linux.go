//go:build linux

package media

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	mprisInterface       = "org.mpris.MediaPlayer2"
	mprisPlayerInterface = "org.mpris.MediaPlayer2.Player"
	mprisBusName         = "org.mpris.MediaPlayer2.armusicd"
	mprisObjectPath      = "/org/mpris/MediaPlayer2"
	propertiesInterface  = "org.freedesktop.DBus.Properties"
	identity             = "AR Music"
)

// busConn is the subset of *dbus.Conn the session uses
type busConn interface {
	Emit(path dbus.ObjectPath, name string, values ...any) error
	Close() error
}

// MPRISSession publishes playback over the MPRIS D-Bus interface
type MPRISSession struct {
	mu       sync.RWMutex
	conn     busConn
	handler  CommandHandler
	metadata Metadata
	state    PlaybackState
	position time.Duration
	updated  time.Time // When position was last reported
	shuffle  bool
	volume   int
	muted    bool
	logger   *zap.Logger
}

// NewSession connects to the session bus and exports the MPRIS interfaces
func NewSession(logger *zap.Logger) (Session, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	reply, err := conn.RequestName(mprisBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("bus name %s already taken", mprisBusName)
	}

	s := newMPRISSession(conn, logger)
	for _, iface := range []string{mprisInterface, mprisPlayerInterface, propertiesInterface} {
		if err := conn.Export(s, dbus.ObjectPath(mprisObjectPath), iface); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to export %s: %w", iface, err)
		}
	}

	s.logger.Info("MPRIS session registered", zap.String("bus", mprisBusName))
	return s, nil
}

func newMPRISSession(conn busConn, logger *zap.Logger) *MPRISSession {
	return &MPRISSession{
		conn:   conn,
		state:  StateStopped,
		volume: 100,
		logger: logger.Named("mpris"),
	}
}

// UpdateMetadata updates the song metadata
func (s *MPRISSession) UpdateMetadata(metadata Metadata) error {
	s.mu.Lock()
	s.metadata = metadata
	props := map[string]dbus.Variant{
		"Metadata": dbus.MakeVariant(s.metadataMapLocked()),
	}
	s.mu.Unlock()

	return s.emitPropertiesChanged(props)
}

// UpdatePlaybackState updates the playback state
func (s *MPRISSession) UpdatePlaybackState(state PlaybackState, position time.Duration) error {
	s.mu.Lock()
	expected := s.position
	if s.state == StatePlaying {
		expected += time.Since(s.updated)
	}
	jumped := absDuration(position-expected) > time.Second
	resumed := s.state != state && state == StatePlaying
	s.state = state
	s.position = position
	s.updated = time.Now()
	props := map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant(state.String()),
	}
	s.mu.Unlock()

	// Clients extrapolate position from Rate; a jump or a resume needs a Seeked signal
	if resumed || jumped {
		if err := s.conn.Emit(dbus.ObjectPath(mprisObjectPath), mprisPlayerInterface+".Seeked", position.Microseconds()); err != nil {
			s.logger.Debug("Failed to emit Seeked", zap.Error(err))
		}
	}

	return s.emitPropertiesChanged(props)
}

// UpdateShuffle updates the shuffle state
func (s *MPRISSession) UpdateShuffle(enabled bool) error {
	s.mu.Lock()
	s.shuffle = enabled
	s.mu.Unlock()

	return s.emitPropertiesChanged(map[string]dbus.Variant{
		"Shuffle": dbus.MakeVariant(enabled),
	})
}

// UpdateVolume updates the volume property
func (s *MPRISSession) UpdateVolume(volume int, muted bool) error {
	s.mu.Lock()
	s.volume = volume
	s.muted = muted
	v := s.volumeLocked()
	s.mu.Unlock()

	return s.emitPropertiesChanged(map[string]dbus.Variant{
		"Volume": dbus.MakeVariant(v),
	})
}

// SetCommandHandler sets the handler for media commands
func (s *MPRISSession) SetCommandHandler(handler CommandHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// Close releases resources
func (s *MPRISSession) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// dispatch forwards a command to the handler without holding the lock
func (s *MPRISSession) dispatch(cmd Command, data any) *dbus.Error {
	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()

	if handler == nil {
		return nil
	}
	if err := handler.OnCommand(cmd, data); err != nil {
		s.logger.Warn("Media command failed", zap.Stringer("command", cmd), zap.Error(err))
		return dbus.MakeFailedError(err)
	}
	return nil
}

// org.mpris.MediaPlayer2 methods

func (s *MPRISSession) Raise() *dbus.Error {
	return nil
}

func (s *MPRISSession) Quit() *dbus.Error {
	return nil
}

// org.mpris.MediaPlayer2.Player methods

func (s *MPRISSession) Play() *dbus.Error {
	return s.dispatch(CmdPlay, nil)
}

func (s *MPRISSession) Pause() *dbus.Error {
	return s.dispatch(CmdPause, nil)
}

func (s *MPRISSession) PlayPause() *dbus.Error {
	return s.dispatch(CmdPlayPause, nil)
}

func (s *MPRISSession) Stop() *dbus.Error {
	return s.dispatch(CmdStop, nil)
}

func (s *MPRISSession) Next() *dbus.Error {
	return s.dispatch(CmdNext, nil)
}

func (s *MPRISSession) Previous() *dbus.Error {
	return s.dispatch(CmdPrevious, nil)
}

func (s *MPRISSession) Seek(offset int64) *dbus.Error {
	s.mu.RLock()
	newPos := s.position + time.Duration(offset)*time.Microsecond
	s.mu.RUnlock()

	if newPos < 0 {
		newPos = 0
	}
	return s.dispatch(CmdSeek, newPos)
}

func (s *MPRISSession) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	s.mu.RLock()
	current := trackPath(s.metadata.SongID)
	s.mu.RUnlock()

	// Stale requests for a previous track are ignored
	if trackID != current {
		return nil
	}
	return s.dispatch(CmdSeek, time.Duration(position)*time.Microsecond)
}

// org.freedesktop.DBus.Properties methods

func (s *MPRISSession) Get(iface, prop string) (dbus.Variant, *dbus.Error) {
	var props map[string]dbus.Variant
	switch iface {
	case mprisInterface:
		props = rootProperties()
	case mprisPlayerInterface:
		props = s.playerProperties()
	default:
		return dbus.Variant{}, dbus.MakeFailedError(fmt.Errorf("unknown interface: %s", iface))
	}

	v, ok := props[prop]
	if !ok {
		return dbus.Variant{}, dbus.MakeFailedError(fmt.Errorf("unknown property: %s", prop))
	}
	return v, nil
}

func (s *MPRISSession) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	switch iface {
	case mprisInterface:
		return rootProperties(), nil
	case mprisPlayerInterface:
		return s.playerProperties(), nil
	}
	return nil, dbus.MakeFailedError(fmt.Errorf("unknown interface: %s", iface))
}

func (s *MPRISSession) Set(iface, prop string, value dbus.Variant) *dbus.Error {
	if iface != mprisPlayerInterface {
		return nil
	}

	switch prop {
	case "Shuffle":
		enabled, ok := value.Value().(bool)
		if !ok {
			return dbus.MakeFailedError(fmt.Errorf("invalid type for Shuffle"))
		}
		return s.dispatch(CmdSetShuffle, enabled)
	case "Volume":
		v, ok := value.Value().(float64)
		if !ok {
			return dbus.MakeFailedError(fmt.Errorf("invalid type for Volume"))
		}
		return s.dispatch(CmdSetVolume, int(v*100+0.5))
	}
	return nil
}

func rootProperties() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"CanQuit":             dbus.MakeVariant(false),
		"CanRaise":            dbus.MakeVariant(false),
		"HasTrackList":        dbus.MakeVariant(false),
		"Identity":            dbus.MakeVariant(identity),
		"DesktopEntry":        dbus.MakeVariant("armusicd"),
		"SupportedUriSchemes": dbus.MakeVariant([]string{"http", "https"}),
		"SupportedMimeTypes":  dbus.MakeVariant([]string{"audio/mpeg", "audio/mp4", "audio/aac"}),
	}
}

func (s *MPRISSession) playerProperties() map[string]dbus.Variant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant(s.state.String()),
		"Metadata":       dbus.MakeVariant(s.metadataMapLocked()),
		"Position":       dbus.MakeVariant(s.position.Microseconds()),
		"Rate":           dbus.MakeVariant(1.0),
		"MinimumRate":    dbus.MakeVariant(1.0),
		"MaximumRate":    dbus.MakeVariant(1.0),
		"CanGoNext":      dbus.MakeVariant(true),
		"CanGoPrevious":  dbus.MakeVariant(true),
		"CanPlay":        dbus.MakeVariant(s.metadata.SongID != ""),
		"CanPause":       dbus.MakeVariant(s.metadata.SongID != ""),
		"CanSeek":        dbus.MakeVariant(s.metadata.Duration > 0),
		"CanControl":     dbus.MakeVariant(true),
		"Volume":         dbus.MakeVariant(s.volumeLocked()),
		"Shuffle":        dbus.MakeVariant(s.shuffle),
	}
}

func (s *MPRISSession) volumeLocked() float64 {
	if s.muted {
		return 0
	}
	return float64(s.volume) / 100
}

func (s *MPRISSession) metadataMapLocked() map[string]dbus.Variant {
	m := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(trackPath(s.metadata.SongID)),
	}
	if s.metadata.Title != "" {
		m["xesam:title"] = dbus.MakeVariant(s.metadata.Title)
	}
	if s.metadata.Artist != "" {
		m["xesam:artist"] = dbus.MakeVariant([]string{s.metadata.Artist})
	}
	if s.metadata.Album != "" {
		m["xesam:album"] = dbus.MakeVariant(s.metadata.Album)
	}
	if s.metadata.Duration > 0 {
		m["mpris:length"] = dbus.MakeVariant(s.metadata.Duration.Microseconds())
	}
	if s.metadata.ArtURL != "" {
		m["mpris:artUrl"] = dbus.MakeVariant(s.metadata.ArtURL)
	}
	return m
}

func (s *MPRISSession) emitPropertiesChanged(props map[string]dbus.Variant) error {
	return s.conn.Emit(
		dbus.ObjectPath(mprisObjectPath),
		propertiesInterface+".PropertiesChanged",
		mprisPlayerInterface,
		props,
		[]string{},
	)
}

// trackPath maps a song id onto a valid D-Bus object path
func trackPath(songID string) dbus.ObjectPath {
	if songID == "" {
		return dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")
	}
	var b strings.Builder
	for _, r := range songID {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return dbus.ObjectPath("/org/armusic/track/" + b.String())
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
