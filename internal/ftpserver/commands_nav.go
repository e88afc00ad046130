package ftpserver

import (
	"os"
	"strings"

	"github.com/omahajan/goftpcore/internal/protocol"
)

func (s *Session) handlePWD(string) {
	s.sendReply(257, protocol.QuotePath(s.currentDir)+" is the current directory")
}

func (s *Session) handleCWD(path string) {
	virtual, real, err := s.server.vfs.Resolve(s.currentDir, path)
	if err != nil {
		s.sendReply(550, "Failed to change directory")
		return
	}
	info, err := os.Stat(real)
	if err != nil || !info.IsDir() {
		s.sendReply(550, "Failed to change directory")
		return
	}
	s.currentDir = virtual
	s.sendReply(250, "CWD command successful")
}

func (s *Session) handleCDUP(string) {
	s.handleCWD("..")
}

func (s *Session) handleTYPE(arg string) {
	switch strings.ToUpper(arg) {
	case "A":
		s.transferType = "A"
		s.sendReply(200, "Switching to ASCII mode")
	case "I":
		s.transferType = "I"
		s.sendReply(200, "Switching to Binary mode")
	default:
		s.sendReply(504, "Command not implemented for that parameter")
	}
}

// handleMODE supports the stream default and the supplemented MODE Z
// zlib-compressed data channel (SPEC_FULL.md "Supplemented Features").
func (s *Session) handleMODE(arg string) {
	switch strings.ToUpper(arg) {
	case "S":
		s.transferMode = "S"
		s.sendReply(200, "Mode set to Stream")
	case "Z":
		s.transferMode = "Z"
		s.sendReply(200, "Mode set to Compressed")
	default:
		s.sendReply(504, "Command not implemented for that parameter")
	}
}
