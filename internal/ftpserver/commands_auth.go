package ftpserver

// handleUSER restarts the login handshake in any stage (spec.md §4.4).
func (s *Session) handleUSER(name string) {
	if _, ok := s.server.users.Lookup(name); !ok {
		s.stage = stageAwaitingUser
		s.sendReply(530, "User not found")
		return
	}
	s.stage = stageAwaitingPass
	s.pendingUser = name
	s.sendReply(331, "Password required for "+name)
}

// handlePASS completes the login handshake with a plain string
// comparison — spec.md §4.6 makes this explicit (no hashing).
func (s *Session) handlePASS(password string) {
	if s.stage != stageAwaitingPass {
		s.sendReply(503, "Login with USER first")
		return
	}
	user, ok := s.server.users.Authenticate(s.pendingUser, password)
	if !ok {
		s.stage = stageAwaitingUser
		s.sendReply(530, "Login incorrect")
		return
	}
	s.stage = stageAuthenticated
	s.user = &user
	s.logger.Info("user authenticated", "user", user.Name, "permission", user.Permission)
	s.sendReply(230, "User "+user.Name+" logged in")
}

func (s *Session) handleQUIT(string) {
	s.sendReply(221, "Goodbye")
}

func (s *Session) handleNOOP(string) {
	s.sendReply(200, "NOOP command successful")
}

func (s *Session) handleSYST(string) {
	s.sendReply(215, "UNIX Type: L8")
}
