package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

// CommandType represents the type of IPC command
type CommandType string

const (
	// Playback
	CmdPlay   CommandType = "play"
	CmdToggle CommandType = "toggle"
	CmdNext   CommandType = "next"
	CmdPrev   CommandType = "prev"
	CmdSeek   CommandType = "seek"
	CmdVolume CommandType = "volume"
	CmdMute   CommandType = "mute"
	CmdClose  CommandType = "close"
	CmdStatus CommandType = "status"
	CmdExpand CommandType = "expand"

	// Policy
	CmdShuffle CommandType = "shuffle"
	CmdRadio   CommandType = "radio"
	CmdLyrics  CommandType = "lyrics"

	// Library
	CmdFavorite  CommandType = "favorite"
	CmdFavorites CommandType = "favorites"
	CmdRecents   CommandType = "recents"
	CmdDownload  CommandType = "download"
	CmdDownloads CommandType = "downloads"

	// Playlists
	CmdPlaylistCreate CommandType = "playlistCreate"
	CmdPlaylistAdd    CommandType = "playlistAdd"
	CmdPlaylistRemove CommandType = "playlistRemove"
	CmdPlaylistRename CommandType = "playlistRename"
	CmdPlaylists      CommandType = "playlists"
)

// Push message types
const (
	PushNotice = "notice"
)

// Request is the base structure for all IPC requests
type Request struct {
	Cmd  CommandType     `json:"cmd"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Response is the base structure for all IPC responses
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PushMessage is sent from server to client without a request
type PushMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// PlayRequest is the data for a play command. Queue is the list the song was picked from.
type PlayRequest struct {
	Song  types.Song   `json:"song"`
	Queue []types.Song `json:"queue,omitempty"`
}

// SeekRequest is the data for a seek command
type SeekRequest struct {
	Position float64 `json:"position"` // seconds
}

// VolumeRequest is the data for a volume command
type VolumeRequest struct {
	Volume int `json:"volume"` // 0-100
}

// RadioRequest is the data for a radio command. A missing Enabled toggles.
type RadioRequest struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// ExpandRequest is the data for an expand command
type ExpandRequest struct {
	Expanded bool `json:"expanded"`
}

// FavoriteRequest is the data for a favorite command
type FavoriteRequest struct {
	SongID string `json:"songId"`
}

// DownloadRequest is the data for a download command
type DownloadRequest struct {
	Song types.Song `json:"song"`
}

// PlaylistCreateRequest is the data for a playlistCreate command
type PlaylistCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PlaylistSongRequest is the data for playlistAdd and playlistRemove.
// playlistRemove only needs the song id.
type PlaylistSongRequest struct {
	PlaylistID string     `json:"playlistId"`
	Song       types.Song `json:"song"`
}

// PlaylistRenameRequest is the data for a playlistRename command
type PlaylistRenameRequest struct {
	PlaylistID  string `json:"playlistId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ToggleResponse reports the state a toggle command left behind
type ToggleResponse struct {
	Enabled bool `json:"enabled"`
}

// EncodeRequest encodes a request to JSON
func EncodeRequest(req *Request) ([]byte, error) {
	return json.Marshal(req)
}

// DecodeRequest decodes a request from JSON
func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return &req, nil
}

// NewRequest builds a request carrying data
func NewRequest(cmd CommandType, data any) (*Request, error) {
	req := &Request{Cmd: cmd}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s data: %w", cmd, err)
		}
		req.Data = raw
	}
	return req, nil
}

// EncodeResponse encodes a response to JSON
func EncodeResponse(resp *Response) ([]byte, error) {
	return json.Marshal(resp)
}

// DecodeResponse decodes a response from JSON
func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// NewSuccessResponse creates a successful response
func NewSuccessResponse(data any) (*Response, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, err
		}
	}
	return &Response{
		Success: true,
		Data:    rawData,
	}, nil
}

// NewErrorResponse creates an error response
func NewErrorResponse(err string) *Response {
	return &Response{
		Success: false,
		Error:   err,
	}
}

// NewPushMessage creates a push message
func NewPushMessage(msgType string, data any) ([]byte, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, err
		}
	}
	msg := PushMessage{
		Type: msgType,
		Data: rawData,
	}
	return json.Marshal(msg)
}

// decodeData unmarshals the request payload into v
func decodeData(req *Request, v any) error {
	if len(req.Data) == 0 {
		return fmt.Errorf("missing data for %s", req.Cmd)
	}
	if err := json.Unmarshal(req.Data, v); err != nil {
		return fmt.Errorf("invalid data for %s: %w", req.Cmd, err)
	}
	return nil
}
