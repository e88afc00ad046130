package ftpserver

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/omahajan/goftpcore/internal/protocol"
)

var errNoPASV = errors.New("ftpserver: no pending PASV listener")

func (s *Session) handlePASV(string) {
	s.closePendingPASV()

	ln, err := net.Listen("tcp4", net.JoinHostPort(s.server.config.BindHost, "0"))
	if err != nil {
		s.logger.Warn("PASV listen failed", "error", err)
		s.sendReply(425, "Can't open data connection")
		return
	}

	host := s.advertisedHost()
	port := ln.Addr().(*net.TCPAddr).Port

	encoded, err := protocol.EncodePASV(host, port)
	if err != nil {
		ln.Close()
		s.sendReply(425, "Can't open data connection")
		return
	}

	s.pasv = &pasvListener{listener: ln, host: host, port: port}
	s.sendReply(227, "Entering Passive Mode "+encoded+".")
}

// advertisedHost picks the PASV-advertised IP: the configured override
// if set, else the control connection's local address (spec.md §9).
func (s *Session) advertisedHost() net.IP {
	if s.server.config.AdvertisedHost != "" {
		if ip := net.ParseIP(s.server.config.AdvertisedHost); ip != nil {
			return ip.To4()
		}
	}
	if tcpAddr, ok := s.conn.LocalAddr().(*net.TCPAddr); ok && tcpAddr.IP.To4() != nil {
		return tcpAddr.IP.To4()
	}
	return net.IPv4(127, 0, 0, 1)
}

// openDataConnection consumes the pending PASV listener: it accepts
// exactly one inbound connection, bounded by the configured data
// timeout, and always clears the pending listener afterward (spec.md
// §3 invariant).
func (s *Session) openDataConnection() (net.Conn, error) {
	if s.pasv == nil {
		return nil, errNoPASV
	}
	ln := s.pasv.listener
	s.pasv = nil

	if tcpLn, ok := ln.(*net.TCPListener); ok {
		tcpLn.SetDeadline(time.Now().Add(s.dataTimeout()))
	}

	conn, err := ln.Accept()
	ln.Close()
	if err != nil {
		return nil, fmt.Errorf("ftpserver: accept data connection: %w", err)
	}

	conn.SetDeadline(time.Now().Add(s.dataTimeout()))
	return conn, nil
}

func (s *Session) closePendingPASV() {
	if s.pasv == nil {
		return
	}
	if err := s.pasv.listener.Close(); err != nil {
		s.logger.Debug("closing stale PASV listener", "error", err)
	}
	s.pasv = nil
}

// closeDataConn closes conn, wrapping any close error alongside
// transferErr via multierror so both are visible to the caller without
// losing either (spec.md §9 "every data socket ... is released on all
// exit paths").
func closeDataConn(conn net.Conn, transferErr error) error {
	var merr *multierror.Error
	if transferErr != nil {
		merr = multierror.Append(merr, transferErr)
	}
	if err := conn.Close(); err != nil {
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}
