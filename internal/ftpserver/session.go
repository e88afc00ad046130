package ftpserver

import (
	"log/slog"
	"net"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/omahajan/goftpcore/internal/auth"
	"github.com/omahajan/goftpcore/internal/protocol"
)

type loginStage int

const (
	stageAwaitingUser loginStage = iota
	stageAwaitingPass
	stageAuthenticated
)

// pasvListener is the one pending passive-mode data endpoint a session
// may hold at a time (spec.md §3 invariant).
type pasvListener struct {
	listener net.Listener
	host     net.IP
	port     int
}

// Session is the per-connection state machine described in spec.md §3
// and §4.4.
type Session struct {
	conn   net.Conn
	server *Server
	logger *slog.Logger

	reader *protocol.CommandReader

	stage       loginStage
	pendingUser string
	user        *auth.User

	currentDir   string
	transferType string // "A" or "I", advisory only
	transferMode string // "S" (stream) or "Z" (zlib), see SPEC_FULL MODE Z

	pasv       *pasvListener
	renameFrom string // virtual path; cleared after the next command
}

func newSession(conn net.Conn, server *Server) *Session {
	return &Session{
		conn:         conn,
		server:       server,
		logger:       server.logger.With("remote", conn.RemoteAddr().String()),
		reader:       protocol.NewCommandReader(conn, server.config.MaxLineBytes),
		stage:        stageAwaitingUser,
		currentDir:   "/",
		transferType: "A",
		transferMode: "S",
	}
}

// authenticated reports whether USER/PASS succeeded, in that order.
func (s *Session) authenticated() bool {
	return s.stage == stageAuthenticated
}

func (s *Session) sendReply(code int, text string) {
	if err := protocol.WriteReply(s.conn, protocol.NewReply(code, text)); err != nil {
		s.logger.Warn("failed to write reply", "code", code, "error", err)
	}
}

func (s *Session) sendMultiline(code int, lines ...string) {
	if err := protocol.WriteReply(s.conn, protocol.Reply{Code: code, Lines: lines}); err != nil {
		s.logger.Warn("failed to write multi-line reply", "code", code, "error", err)
	}
}

// serve runs the session's command loop until EOF or a fatal I/O
// error, then tears down any still-open data channel.
func (s *Session) serve() {
	defer s.teardown()

	s.sendReply(220, "Simple FTP server ready")

	for {
		cmd, oversized, err := s.reader.ReadCommand()
		if err != nil {
			s.logger.Debug("control connection closed", "error", err)
			return
		}
		if s.server.closing.Load() {
			s.logger.Debug("server shutting down; closing session")
			return
		}
		if oversized {
			s.sendReply(500, "Command line too long")
			continue
		}

		s.dispatch(cmd)

		if cmd.Verb == "QUIT" {
			return
		}
	}
}

func (s *Session) teardown() {
	var merr *multierror.Error
	if s.pasv != nil {
		if err := s.pasv.listener.Close(); err != nil {
			merr = multierror.Append(merr, err)
		}
		s.pasv = nil
	}
	if err := s.conn.Close(); err != nil {
		merr = multierror.Append(merr, err)
	}
	if merr.ErrorOrNil() != nil {
		s.logger.Debug("session teardown errors", "error", merr)
	}
}

// dispatch runs the pre-dispatch checks from spec.md §4.4 and invokes
// the matched handler. The pending-rename-source is cleared after
// every outcome of this call — including a pre-dispatch rejection
// (500/501/530/550) — unless this exact call is the one that just set
// it, i.e. a RNFR that freshly succeeded. An incoming RNFR drops any
// earlier source before its handler runs, so a failing second RNFR
// cannot keep an earlier target alive, while a successful one keeps its
// source even when it names the same path as the earlier one.
func (s *Session) dispatch(cmd protocol.Command) {
	if cmd.Verb == "RNFR" {
		s.renameFrom = ""
	}
	defer func() {
		if cmd.Verb == "RNFR" && s.renameFrom != "" {
			return
		}
		s.renameFrom = ""
	}()

	spec, ok := commandTable[cmd.Verb]
	if !ok {
		s.sendReply(500, "Command not implemented")
		return
	}
	if spec.argRequired && cmd.Arg == "" {
		s.sendReply(501, "Syntax error in parameters")
		return
	}
	if spec.requiresAuth && !s.authenticated() {
		s.sendReply(530, "Not logged in")
		return
	}
	if spec.requiresWrite && !s.user.Permission.CanWrite() {
		s.sendReply(550, "Permission denied")
		return
	}

	spec.handler(s, cmd.Arg)
}

// dataTimeout is how long the server will wait to accept the data
// connection and to do I/O on it.
func (s *Session) dataTimeout() time.Duration {
	return s.server.config.DataTimeout
}
