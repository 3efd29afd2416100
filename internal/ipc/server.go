package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"go.uber.org/zap"
)

// maxLineSize bounds a single request line
const maxLineSize = 1 << 20

// Server handles IPC communication with clients over a Unix socket.
// Requests and responses are newline-delimited JSON.
type Server struct {
	socketPath string
	handler    Handler
	logger     *zap.Logger
	listener   net.Listener
	mu         sync.Mutex
	clients    map[net.Conn]*sync.Mutex // per-connection write lock
	closed     bool
	wg         sync.WaitGroup
}

// NewServer creates a new IPC server
func NewServer(socketPath string, handler Handler, logger *zap.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger.Named("ipc"),
		clients:    make(map[net.Conn]*sync.Mutex),
	}
}

// SocketPath returns the path of the listening socket
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Listen creates the socket. Serve must be called to accept connections.
func (s *Server) Listen() error {
	// Remove existing socket file if it exists
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	s.logger.Info("Creating socket", zap.String("path", s.socketPath))

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	// Set socket permissions (user-only)
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	return nil
}

// Serve accepts connections until ctx is cancelled, then closes every client
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return errors.New("server is not listening")
	}

	s.logger.Info("Server listening, waiting for connections")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop(ctx, listener)
	}()

	<-ctx.Done()
	s.logger.Info("Shutting down server")

	listener.Close()

	s.mu.Lock()
	s.closed = true
	clientCount := len(s.clients)
	for conn := range s.clients {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	os.RemoveAll(s.socketPath)

	s.logger.Info("Server stopped", zap.Int("clients", clientCount))
	return nil
}

func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("Accept error", zap.Error(err))
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.clients[conn] = &sync.Mutex{}
		clientCount := len(s.clients)
		s.mu.Unlock()

		s.logger.Debug("Client connected", zap.Int("clients", clientCount))

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.clients, conn)
		clientCount := len(s.clients)
		s.mu.Unlock()
		s.logger.Debug("Client disconnected", zap.Int("clients", clientCount))
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		req, err := DecodeRequest(line)
		if err != nil {
			s.logger.Info("Invalid request format", zap.Error(err))
			if err := s.send(conn, NewErrorResponse("invalid request format")); err != nil {
				return
			}
			continue
		}

		resp := s.handler.Dispatch(ctx, req)
		if err := s.send(conn, resp); err != nil {
			s.logger.Info("Send error", zap.Error(err))
			return
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		s.logger.Info("Read error", zap.Error(err))
	}
}

func (s *Server) send(conn net.Conn, resp *Response) error {
	data, err := EncodeResponse(resp)
	if err != nil {
		return err
	}
	return s.write(conn, append(data, '\n'))
}

func (s *Server) write(conn net.Conn, data []byte) error {
	s.mu.Lock()
	lock, ok := s.clients[conn]
	s.mu.Unlock()
	if !ok {
		return net.ErrClosed
	}

	lock.Lock()
	defer lock.Unlock()
	_, err := conn.Write(data)
	return err
}

// Broadcast pushes a message to every connected client. Clients that fail the
// write are dropped.
func (s *Server) Broadcast(msgType string, data any) {
	msg, err := NewPushMessage(msgType, data)
	if err != nil {
		s.logger.Warn("Failed to encode push message", zap.String("type", msgType), zap.Error(err))
		return
	}
	msg = append(msg, '\n')

	s.mu.Lock()
	conns := make([]net.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		if err := s.write(conn, msg); err != nil {
			conn.Close()
		}
	}
}
