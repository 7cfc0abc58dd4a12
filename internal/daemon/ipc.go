package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/nerrad567/bluehood-core/internal/infrastructure/config"
)

// maxRequestBytes bounds a single control-plane request line.
const maxRequestBytes = 64 * 1024

// ipcClient is one connected control-plane client. Writes are
// serialized so responses and fanout events never interleave.
type ipcClient struct {
	id   string
	conn net.Conn

	mu sync.Mutex
}

func (c *ipcClient) writeLine(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.conn.Write(payload); err != nil {
		return err
	}
	_, err := c.conn.Write([]byte("\n"))
	return err
}

// ipcServer owns the unix socket listener and the connected client set.
type ipcServer struct {
	daemon   *Daemon
	path     string
	listener net.Listener

	mu      sync.Mutex
	clients map[string]*ipcClient
	closing bool
}

// newIPCServer binds the unix socket, replacing any stale socket file
// left from a previous run, and applies the configured file mode.
func newIPCServer(d *Daemon, cfg config.SocketConfig) (*ipcServer, error) {
	// A stale socket from a crashed run blocks the bind.
	if err := os.Remove(cfg.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("removing stale socket: %w", err)
	}

	listener, err := net.Listen("unix", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", cfg.Path, err)
	}

	if err := os.Chmod(cfg.Path, fs.FileMode(cfg.Mode)); err != nil {
		listener.Close()
		os.Remove(cfg.Path)
		return nil, fmt.Errorf("setting socket mode: %w", err)
	}

	return &ipcServer{
		daemon:   d,
		path:     cfg.Path,
		listener: listener,
		clients:  make(map[string]*ipcClient),
	}, nil
}

// serve accepts connections until the listener is closed. Each
// connection gets its own handler goroutine tracked by wg.
func (s *ipcServer) serve(ctx context.Context, wg *sync.WaitGroup) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()
			if closing || errors.Is(err, net.ErrClosed) {
				return
			}
			s.daemon.logger.Warn("accept failed", "error", err)
			continue
		}

		client := &ipcClient{
			id:   uuid.NewString(),
			conn: conn,
		}
		s.register(client)

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleClient(ctx, client)
		}()
	}
}

func (s *ipcServer) register(c *ipcClient) {
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	s.daemon.logger.Info("client connected", "client_id", c.id)
}

func (s *ipcServer) unregister(c *ipcClient) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	c.conn.Close()
	s.daemon.logger.Info("client disconnected", "client_id", c.id)
}

func (s *ipcServer) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// handleClient serves one connection: one JSON request per line, one
// JSON response per line. A malformed line gets an error response and
// the connection stays open.
func (s *ipcServer) handleClient(ctx context.Context, c *ipcClient) {
	defer s.unregister(c)

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 4096), maxRequestBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		var resp any
		if err := json.Unmarshal(line, &req); err != nil {
			s.daemon.logger.Warn("invalid request from client", "client_id", c.id)
			resp = errorResponse("Invalid JSON")
		} else {
			resp = s.daemon.handleCommand(ctx, req)
		}

		payload, err := json.Marshal(resp)
		if err != nil {
			s.daemon.logger.Error("encoding response failed", "error", err)
			continue
		}
		if err := s.writeToClient(c, payload); err != nil {
			return
		}
	}
}

func (s *ipcServer) writeToClient(c *ipcClient, payload []byte) error {
	if err := c.writeLine(payload); err != nil {
		s.daemon.logger.Debug("client write failed", "client_id", c.id, "error", err)
		return err
	}
	return nil
}

// broadcast sends one payload to every connected client. A failed
// write is logged and ignored; the client's own reader will notice
// the broken connection and clean up.
func (s *ipcServer) broadcast(payload []byte) {
	s.mu.Lock()
	clients := make([]*ipcClient, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if err := c.writeLine(payload); err != nil {
			s.daemon.logger.Debug("broadcast write failed", "client_id", c.id, "error", err)
		}
	}
}

// closeClients closes every client connection; their handlers exit as
// their reads fail.
func (s *ipcServer) closeClients() {
	s.mu.Lock()
	s.closing = true
	clients := make([]*ipcClient, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

func (s *ipcServer) closeListener() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.listener.Close()
}

// removeSocket releases the socket path. Called last during shutdown.
func (s *ipcServer) removeSocket() {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.daemon.logger.Warn("removing socket file failed", "path", s.path, "error", err)
	}
}
