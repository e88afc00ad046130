// Package ftpserver implements the FTP server session state machine
// (spec.md §4.4), the passive-mode data-channel coordinator (§4.3/§5),
// and the connection listener/multiplexer (§4.5).
package ftpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/omahajan/goftpcore/internal/auth"
	"github.com/omahajan/goftpcore/internal/vfs"
)

// Server accepts control connections and spawns one isolated Session
// per connection. Sessions share only the (read-only) Config and the
// user table; the listener does not retain session references after
// spawning them (spec.md §9).
type Server struct {
	config Config
	vfs    *vfs.FS
	users  *auth.Table
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
	closing  atomic.Bool
}

// NewServer validates cfg and constructs a Server ready to ListenAndServe.
func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = discardLogger()
	}

	fs, err := vfs.New(cfg.VirtualRoot)
	if err != nil {
		return nil, fmt.Errorf("ftpserver: %w", err)
	}

	return &Server{
		config: cfg,
		vfs:    fs,
		users:  auth.NewTable(cfg.Users),
		logger: logger,
	}, nil
}

// Users returns the server's live user table, for supplemental
// SITE-command administration.
func (s *Server) Users() *auth.Table { return s.users }

// Addr returns the listener's bound address. Valid only after
// ListenAndServe has started accepting connections.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ListenAndServe binds the configured address and accepts connections
// until Shutdown is called or a fatal accept error occurs.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.config.BindHost, s.config.BindPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("ftpserver: listen %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("ftp server listening", "addr", addr, "root", s.vfs.Root())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closing.Load() {
				s.wg.Wait()
				return nil
			}
			return fmt.Errorf("ftpserver: accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

// Shutdown closes the listener; every worker loop then exits on its
// next control-channel I/O boundary (spec.md §4.5).
func (s *Server) Shutdown() error {
	s.closing.Store(true)
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func (s *Server) serveConn(conn net.Conn) {
	session := newSession(conn, s)
	session.serve()
}
