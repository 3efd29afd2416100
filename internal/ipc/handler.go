package ipc

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/library"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/player"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/playlist"
)

// Handler answers decoded requests. It is shared by the socket server and the HTTP API.
type Handler interface {
	Dispatch(ctx context.Context, req *Request) *Response
}

// Dispatcher routes commands to the playback controller, the library and the playlists
type Dispatcher struct {
	player    *player.Controller
	library   *library.Library
	playlists *playlist.Manager
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher over the daemon's components
func NewDispatcher(p *player.Controller, lib *library.Library, playlists *playlist.Manager, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		player:    p,
		library:   lib,
		playlists: playlists,
		logger:    logger.Named("dispatch"),
	}
}

// isPolling reports commands clients issue on a timer
func isPolling(cmd CommandType) bool {
	return cmd == CmdStatus || cmd == CmdLyrics
}

// Dispatch executes req and builds its response
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) *Response {
	start := time.Now()
	data, err := d.dispatch(ctx, req)

	var resp *Response
	if err != nil {
		resp = NewErrorResponse(err.Error())
	} else if resp, err = NewSuccessResponse(data); err != nil {
		resp = NewErrorResponse("failed to encode response")
	}

	if !isPolling(req.Cmd) || !resp.Success {
		ResponseLogger(d.logger, req, resp, time.Since(start))
	}
	return resp
}

var errUnknownCommand = errors.New("unknown command")

func (d *Dispatcher) dispatch(ctx context.Context, req *Request) (any, error) {
	switch req.Cmd {
	case CmdPlay:
		var r PlayRequest
		if err := decodeData(req, &r); err != nil {
			return nil, err
		}
		return nil, d.player.PlaySong(ctx, r.Song, r.Queue)
	case CmdToggle:
		return nil, d.player.TogglePlayPause()
	case CmdNext:
		return nil, d.player.SkipForward(ctx)
	case CmdPrev:
		return nil, d.player.SkipBackward(ctx)
	case CmdSeek:
		var r SeekRequest
		if err := decodeData(req, &r); err != nil {
			return nil, err
		}
		return nil, d.player.Seek(r.Position)
	case CmdVolume:
		var r VolumeRequest
		if err := decodeData(req, &r); err != nil {
			return nil, err
		}
		d.player.SetVolume(r.Volume)
		return nil, nil
	case CmdMute:
		return ToggleResponse{Enabled: d.player.ToggleMute()}, nil
	case CmdClose:
		d.player.Close()
		return nil, nil
	case CmdStatus:
		return d.player.Status(), nil
	case CmdExpand:
		var r ExpandRequest
		if err := decodeData(req, &r); err != nil {
			return nil, err
		}
		d.player.SetExpanded(r.Expanded)
		return nil, nil

	case CmdShuffle:
		return ToggleResponse{Enabled: d.player.ToggleShuffle()}, nil
	case CmdRadio:
		var r RadioRequest
		if len(req.Data) > 0 {
			if err := decodeData(req, &r); err != nil {
				return nil, err
			}
		}
		if r.Enabled == nil {
			return ToggleResponse{Enabled: d.player.ToggleRadio()}, nil
		}
		d.player.SetRadioMode(*r.Enabled)
		return ToggleResponse{Enabled: *r.Enabled}, nil
	case CmdLyrics:
		return d.player.Lyrics(), nil

	case CmdFavorite:
		var r FavoriteRequest
		if err := decodeData(req, &r); err != nil {
			return nil, err
		}
		if r.SongID == "" {
			return nil, errors.New("songId is required")
		}
		return ToggleResponse{Enabled: d.library.ToggleFavorite(r.SongID)}, nil
	case CmdFavorites:
		return d.library.Favorites(), nil
	case CmdRecents:
		return d.library.Recents(), nil
	case CmdDownload:
		var r DownloadRequest
		if err := decodeData(req, &r); err != nil {
			return nil, err
		}
		if r.Song.ID == "" {
			return nil, errors.New("song id is required")
		}
		return ToggleResponse{Enabled: d.library.ToggleDownload(r.Song)}, nil
	case CmdDownloads:
		return d.library.Downloads(), nil

	case CmdPlaylistCreate:
		var r PlaylistCreateRequest
		if err := decodeData(req, &r); err != nil {
			return nil, err
		}
		return d.playlists.Create(r.Name, r.Description)
	case CmdPlaylistAdd:
		var r PlaylistSongRequest
		if err := decodeData(req, &r); err != nil {
			return nil, err
		}
		if err := d.playlists.AddSong(r.PlaylistID, r.Song); err != nil {
			return nil, err
		}
		return d.playlist(r.PlaylistID)
	case CmdPlaylistRemove:
		var r PlaylistSongRequest
		if err := decodeData(req, &r); err != nil {
			return nil, err
		}
		if err := d.playlists.RemoveSong(r.PlaylistID, r.Song.ID); err != nil {
			return nil, err
		}
		return d.playlist(r.PlaylistID)
	case CmdPlaylistRename:
		var r PlaylistRenameRequest
		if err := decodeData(req, &r); err != nil {
			return nil, err
		}
		if err := d.playlists.Rename(r.PlaylistID, r.Name, r.Description); err != nil {
			return nil, err
		}
		return d.playlist(r.PlaylistID)
	case CmdPlaylists:
		return d.playlists.List(), nil

	default:
		return nil, errUnknownCommand
	}
}

func (d *Dispatcher) playlist(id string) (any, error) {
	p, ok := d.playlists.Get(id)
	if !ok {
		return nil, playlist.ErrNotFound
	}
	return p, nil
}

// ResponseLogger logs a handled request
func ResponseLogger(logger *zap.Logger, req *Request, resp *Response, duration time.Duration) {
	if resp.Success {
		logger.Debug("Command handled", zap.String("cmd", string(req.Cmd)), zap.Duration("duration", duration))
		return
	}
	logger.Info("Command failed",
		zap.String("cmd", string(req.Cmd)),
		zap.String("error", resp.Error),
		zap.Duration("duration", duration))
}
