package ftpserver

import (
	"fmt"
	"strings"

	"github.com/omahajan/goftpcore/internal/auth"
)

// persistUsers writes the user table to disk if a persist path was
// configured; a missing path is a silent no-op for in-memory-only
// deployments.
func (s *Session) persistUsers() {
	path := s.server.config.UsersPersistPath
	if path == "" {
		return
	}
	if err := s.server.users.SaveJSON(path); err != nil {
		s.logger.Warn("failed to persist user table", "error", err)
	}
}

func (s *Session) siteAddUser(args []string) {
	if len(args) < 2 {
		s.sendReply(501, "Usage: SITE ADDUSER <name> <password> [read-write|read-only]")
		return
	}
	perm := auth.ReadOnly
	if len(args) >= 3 && strings.EqualFold(args[2], "read-write") {
		perm = auth.ReadWrite
	}
	err := s.server.users.Add(auth.User{Name: args[0], Password: args[1], Permission: perm})
	if err != nil {
		s.sendReply(550, err.Error())
		return
	}
	s.persistUsers()
	s.sendReply(200, "User added")
}

func (s *Session) siteDelUser(args []string) {
	if len(args) < 1 {
		s.sendReply(501, "Usage: SITE DELUSER <name>")
		return
	}
	if err := s.server.users.Remove(args[0]); err != nil {
		s.sendReply(550, err.Error())
		return
	}
	s.persistUsers()
	s.sendReply(200, "User removed")
}

func (s *Session) siteUserInfo(args []string) {
	if len(args) < 1 {
		s.sendReply(501, "Usage: SITE USERINFO <name>")
		return
	}
	u, ok := s.server.users.Lookup(args[0])
	if !ok {
		s.sendReply(550, "User not found")
		return
	}
	s.sendReply(200, fmt.Sprintf("%s permission=%s", u.Name, u.Permission))
}
