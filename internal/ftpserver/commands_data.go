package ftpserver

import (
	"compress/zlib"
	"errors"
	"io"
	"net"
	"os"
)

// wrapDataWriter applies zlib compression to the data connection when
// the session negotiated MODE Z (SPEC_FULL.md "Supplemented Features").
// The stream default (MODE S) passes the connection through unchanged.
func (s *Session) wrapDataWriter(conn net.Conn) (io.WriteCloser, error) {
	if s.transferMode != "Z" {
		return nopWriteCloser{conn}, nil
	}
	return zlib.NewWriter(conn), nil
}

func (s *Session) wrapDataReader(conn net.Conn) (io.Reader, error) {
	if s.transferMode != "Z" {
		return conn, nil
	}
	return zlib.NewReader(conn)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// handleLIST streams a directory listing over the data connection
// established by a prior PASV (spec.md §4.4). The pending listener is
// consumed either way: a path that cannot be listed closes it without
// accepting, otherwise exactly one data socket is accepted and closed.
// The listing is always sent uncompressed, whatever MODE is set.
func (s *Session) handleLIST(arg string) {
	if s.pasv == nil {
		s.sendReply(503, "PASV must be issued first")
		return
	}

	target := arg
	if target == "" {
		target = s.currentDir
	}
	_, real, err := s.server.vfs.Resolve(s.currentDir, target)
	if err != nil {
		s.closePendingPASV()
		s.sendReply(550, "Failed to list directory")
		return
	}

	entries, err := os.ReadDir(real)
	if err != nil {
		s.closePendingPASV()
		s.sendReply(550, "Failed to list directory")
		return
	}

	conn, err := s.openDataConnection()
	if err != nil {
		s.logger.Warn("LIST data connection failed", "error", err)
		s.sendReply(425, "Can't open data connection")
		return
	}

	s.sendReply(150, "Here comes the directory listing")

	var transferErr error
	for _, entry := range entries {
		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}
		if _, werr := io.WriteString(conn, formatEntry(info)+"\r\n"); werr != nil {
			transferErr = werr
			break
		}
	}

	if err := closeDataConn(conn, transferErr); err != nil {
		s.logger.Warn("LIST transfer error", "error", err)
		s.sendReply(426, "Connection closed; transfer aborted")
		return
	}
	s.sendReply(226, "Directory send OK")
}

// handleRETR streams a file's contents over the data connection
// (spec.md §4.4/§4.3).
func (s *Session) handleRETR(path string) {
	if s.pasv == nil {
		s.sendReply(503, "PASV must be issued first")
		return
	}

	_, real, err := s.server.vfs.Resolve(s.currentDir, path)
	if err != nil {
		s.closePendingPASV()
		s.sendReply(550, "File not found")
		return
	}

	file, err := os.Open(real)
	if err != nil {
		s.closePendingPASV()
		s.sendReply(550, "File not found")
		return
	}
	defer file.Close()

	if info, err := file.Stat(); err != nil || info.IsDir() {
		s.closePendingPASV()
		s.sendReply(550, "Not a regular file")
		return
	}

	conn, err := s.openDataConnection()
	if err != nil {
		s.logger.Warn("RETR data connection failed", "error", err)
		s.sendReply(425, "Can't open data connection")
		return
	}

	s.sendReply(150, "Opening "+transferTypeName(s.transferType)+" mode data connection for "+path)

	writer, werr := s.wrapDataWriter(conn)
	var transferErr error
	if werr != nil {
		transferErr = werr
	} else {
		_, transferErr = io.Copy(writer, file)
		if closeErr := writer.Close(); closeErr != nil && transferErr == nil {
			transferErr = closeErr
		}
	}

	if err := closeDataConn(conn, transferErr); err != nil {
		s.logger.Warn("RETR transfer error", "error", err)
		s.sendReply(426, "Connection closed; transfer aborted")
		return
	}
	s.sendReply(226, "Transfer complete")
}

// handleSTOR receives a file's contents over the data connection and
// writes it, truncating any existing file at that path (Open Question
// decision recorded in SPEC_FULL.md).
func (s *Session) handleSTOR(path string) {
	if s.pasv == nil {
		s.sendReply(503, "PASV must be issued first")
		return
	}

	_, real, err := s.server.vfs.ResolveParent(s.currentDir, path)
	if err != nil {
		s.closePendingPASV()
		s.sendReply(550, "Failed to open file for writing")
		return
	}

	file, err := os.OpenFile(real, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		s.closePendingPASV()
		s.sendReply(550, "Failed to open file for writing")
		return
	}
	defer file.Close()

	conn, err := s.openDataConnection()
	if err != nil {
		s.logger.Warn("STOR data connection failed", "error", err)
		s.sendReply(425, "Can't open data connection")
		return
	}

	s.sendReply(150, "Ok to send data")

	reader, rerr := s.wrapDataReader(conn)
	var transferErr error
	if rerr != nil {
		transferErr = rerr
	} else {
		_, transferErr = io.Copy(file, reader)
	}
	if transferErr != nil && !errors.Is(transferErr, io.EOF) {
		if err := closeDataConn(conn, transferErr); err != nil {
			s.logger.Warn("STOR transfer error", "error", err)
		}
		s.sendReply(426, "Connection closed; transfer aborted")
		return
	}

	if err := closeDataConn(conn, nil); err != nil {
		s.logger.Warn("STOR close error", "error", err)
		s.sendReply(426, "Connection closed; transfer aborted")
		return
	}
	s.sendReply(226, "Transfer complete")
}

func transferTypeName(t string) string {
	if t == "A" {
		return "ASCII"
	}
	return "BINARY"
}
