package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

type echoHandler struct{}

func (echoHandler) Dispatch(ctx context.Context, req *Request) *Response {
	if req.Cmd != CmdStatus {
		return NewErrorResponse("unknown command")
	}
	resp, _ := NewSuccessResponse(map[string]string{"state": "idle"})
	return resp
}

// startServer serves on a short socket path; unix socket paths are length-limited
func startServer(t *testing.T, h Handler) (*Server, func()) {
	t.Helper()
	dir, err := os.MkdirTemp("", "armusic")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	s := NewServer(filepath.Join(dir, "d.sock"), h, zap.NewNop())
	require.NoError(t, s.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	stop := func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("Server did not stop")
		}
	}
	return s, stop
}

func dial(t *testing.T, s *Server) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.Dial("unix", s.SocketPath())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, bufio.NewReader(conn)
}

func roundtrip(t *testing.T, conn net.Conn, r *bufio.Reader, line string) *Response {
	t.Helper()
	_, err := conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
	reply, err := r.ReadBytes('\n')
	require.NoError(t, err)
	resp, err := DecodeResponse(reply)
	require.NoError(t, err)
	return resp
}

func TestServerRoundtrip(t *testing.T) {
	s, stop := startServer(t, echoHandler{})
	defer stop()

	conn, r := dial(t, s)

	resp := roundtrip(t, conn, r, `{"cmd":"status"}`)
	require.True(t, resp.Success)
	assert.JSONEq(t, `{"state":"idle"}`, string(resp.Data))

	resp = roundtrip(t, conn, r, `{"cmd":"rewind"}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "unknown command", resp.Error)

	// A malformed line does not drop the connection
	resp = roundtrip(t, conn, r, `{not json`)
	assert.Equal(t, "invalid request format", resp.Error)
	resp = roundtrip(t, conn, r, `{"cmd":"status"}`)
	assert.True(t, resp.Success)
}

func TestServerSocketPermissions(t *testing.T) {
	s, stop := startServer(t, echoHandler{})
	defer stop()

	info, err := os.Stat(s.SocketPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestServerBroadcast(t *testing.T) {
	s, stop := startServer(t, echoHandler{})
	defer stop()

	conn, r := dial(t, s)
	// A roundtrip guarantees the connection is registered
	require.True(t, roundtrip(t, conn, r, `{"cmd":"status"}`).Success)

	s.Broadcast(PushNotice, types.Notice{Kind: types.NoticePlaybackFailed, Message: "failed"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := r.ReadBytes('\n')
	require.NoError(t, err)

	var msg PushMessage
	require.NoError(t, json.Unmarshal(line, &msg))
	assert.Equal(t, PushNotice, msg.Type)
	assert.Contains(t, string(msg.Data), `"kind":"playback_failed"`)
}

func TestServerShutdownRemovesSocket(t *testing.T) {
	s, stop := startServer(t, echoHandler{})
	conn, r := dial(t, s)
	require.True(t, roundtrip(t, conn, r, `{"cmd":"status"}`).Success)

	stop()

	_, err := os.Stat(s.SocketPath())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = r.ReadBytes('\n')
	assert.Error(t, err, "client connection is closed on shutdown")
}

func TestServeWithoutListen(t *testing.T) {
	s := NewServer("/nonexistent/d.sock", echoHandler{}, zap.NewNop())
	assert.Error(t, s.Serve(context.Background()))
}
