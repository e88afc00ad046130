package ftpserver

import (
	"os"

	"github.com/omahajan/goftpcore/internal/protocol"
)

func (s *Session) handleMKD(path string) {
	_, real, err := s.server.vfs.ResolveParent(s.currentDir, path)
	if err != nil {
		s.sendReply(550, "Failed to create directory")
		return
	}
	if err := os.Mkdir(real, 0755); err != nil {
		s.sendReply(550, "Failed to create directory")
		return
	}
	virtual, _, _ := s.server.vfs.Resolve(s.currentDir, path)
	s.sendReply(257, protocol.QuotePath(virtual)+" directory created")
}

func (s *Session) handleRMD(path string) {
	_, real, err := s.server.vfs.Resolve(s.currentDir, path)
	if err != nil {
		s.sendReply(550, "Failed to remove directory")
		return
	}
	info, err := os.Stat(real)
	if err != nil || !info.IsDir() {
		s.sendReply(550, "Failed to remove directory")
		return
	}
	if err := os.Remove(real); err != nil {
		s.sendReply(550, "Failed to remove directory")
		return
	}
	s.sendReply(250, "Directory removed")
}

func (s *Session) handleDELE(path string) {
	_, real, err := s.server.vfs.Resolve(s.currentDir, path)
	if err != nil {
		s.sendReply(550, "Failed to delete file")
		return
	}
	info, err := os.Stat(real)
	if err != nil || info.IsDir() {
		s.sendReply(550, "Failed to delete file")
		return
	}
	if err := os.Remove(real); err != nil {
		s.sendReply(550, "Failed to delete file")
		return
	}
	s.sendReply(250, "File deleted")
}

// handleRNFR records the rename source. The dispatcher clears
// s.renameFrom after every command, regardless of outcome, unless this
// call is the one that just set it (spec.md §4.4) — a failing RNFR
// leaves renameFrom untouched here, so the dispatcher still clears
// whatever target an earlier RNFR left behind.
func (s *Session) handleRNFR(path string) {
	_, real, err := s.server.vfs.Resolve(s.currentDir, path)
	if err != nil {
		s.sendReply(550, "File not found")
		return
	}
	if _, err := os.Stat(real); err != nil {
		s.sendReply(550, "File not found")
		return
	}
	s.renameFrom = path
	s.sendReply(350, "Ready for RNTO")
}

func (s *Session) handleRNTO(path string) {
	if s.renameFrom == "" {
		s.sendReply(503, "RNFR required first")
		return
	}
	_, fromReal, err := s.server.vfs.Resolve(s.currentDir, s.renameFrom)
	if err != nil {
		s.sendReply(550, "Rename failed")
		return
	}
	_, toReal, err := s.server.vfs.ResolveParent(s.currentDir, path)
	if err != nil {
		s.sendReply(550, "Rename failed")
		return
	}
	if err := os.Rename(fromReal, toReal); err != nil {
		s.sendReply(550, "Rename failed")
		return
	}
	s.sendReply(250, "Rename successful")
}
