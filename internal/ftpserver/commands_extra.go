package ftpserver

import (
	"os"
	"strconv"
	"strings"
)

func (s *Session) handleFEAT(string) {
	s.sendMultiline(211, "Features", " MDTM", " SIZE", " MODE Z", " SITE", "End")
}

func (s *Session) handleSIZE(path string) {
	_, real, err := s.server.vfs.Resolve(s.currentDir, path)
	if err != nil {
		s.sendReply(550, "Could not get file size")
		return
	}
	info, err := os.Stat(real)
	if err != nil || info.IsDir() {
		s.sendReply(550, "Could not get file size")
		return
	}
	s.sendReply(213, strconv.FormatInt(info.Size(), 10))
}

func (s *Session) handleMDTM(path string) {
	_, real, err := s.server.vfs.Resolve(s.currentDir, path)
	if err != nil {
		s.sendReply(550, "Could not get modification time")
		return
	}
	info, err := os.Stat(real)
	if err != nil {
		s.sendReply(550, "Could not get modification time")
		return
	}
	s.sendReply(213, info.ModTime().UTC().Format("20060102150405"))
}

func (s *Session) handleSTAT(arg string) {
	if arg == "" {
		s.sendMultiline(211, "Status", "Connected to server", "End of status")
		return
	}
	_, real, err := s.server.vfs.Resolve(s.currentDir, arg)
	if err != nil {
		s.sendReply(550, "Could not get status")
		return
	}
	entries, err := os.ReadDir(real)
	if err != nil {
		s.sendReply(550, "Could not get status")
		return
	}
	lines := []string{"Status of " + arg + ":"}
	for _, entry := range entries {
		if info, infoErr := entry.Info(); infoErr == nil {
			lines = append(lines, formatEntry(info))
		}
	}
	lines = append(lines, "End of status")
	s.sendMultiline(213, lines...)
}

func (s *Session) handleHELP(string) {
	verbs := make([]string, 0, len(commandTable))
	for verb := range commandTable {
		verbs = append(verbs, verb)
	}
	s.sendMultiline(214, "The following commands are recognized", " "+strings.Join(verbs, " "), "End")
}

// handleSITE dispatches the supplemented runtime user-administration
// extension, restricted to the "admin" account (SPEC_FULL.md
// "Supplemented Features", grounded on Ftpserver/auth/site_commands.go).
func (s *Session) handleSITE(arg string) {
	if s.user == nil || s.user.Name != "admin" {
		s.sendReply(550, "Permission denied")
		return
	}
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		s.sendReply(501, "SITE requires a subcommand")
		return
	}
	switch strings.ToUpper(fields[0]) {
	case "ADDUSER":
		s.siteAddUser(fields[1:])
	case "DELUSER":
		s.siteDelUser(fields[1:])
	case "USERINFO":
		s.siteUserInfo(fields[1:])
	default:
		s.sendReply(501, "Unknown SITE subcommand")
	}
}
