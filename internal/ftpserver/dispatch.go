package ftpserver

// commandSpec is one row of the explicit command table from spec.md
// §9: verb → {requires-auth, requires-write, argument-required,
// handler}, replacing any runtime dispatch over stringly-typed method
// names.
type commandSpec struct {
	requiresAuth  bool
	requiresWrite bool
	argRequired   bool
	handler       func(s *Session, arg string)
}

var commandTable map[string]commandSpec

func init() {
	commandTable = map[string]commandSpec{
		"USER": {handler: (*Session).handleUSER},
		"PASS": {handler: (*Session).handlePASS},
		"QUIT": {handler: (*Session).handleQUIT},
		"NOOP": {requiresAuth: false, handler: (*Session).handleNOOP},
		"SYST": {handler: (*Session).handleSYST},

		"PWD":  {requiresAuth: true, handler: (*Session).handlePWD},
		"CWD":  {requiresAuth: true, argRequired: true, handler: (*Session).handleCWD},
		"CDUP": {requiresAuth: true, handler: (*Session).handleCDUP},
		"TYPE": {requiresAuth: true, argRequired: true, handler: (*Session).handleTYPE},
		"MODE": {requiresAuth: true, argRequired: true, handler: (*Session).handleMODE},

		"PASV": {requiresAuth: true, handler: (*Session).handlePASV},
		"LIST": {requiresAuth: true, handler: (*Session).handleLIST},
		"RETR": {requiresAuth: true, argRequired: true, handler: (*Session).handleRETR},
		"STOR": {requiresAuth: true, requiresWrite: true, argRequired: true, handler: (*Session).handleSTOR},

		"MKD": {requiresAuth: true, requiresWrite: true, argRequired: true, handler: (*Session).handleMKD},
		"RMD": {requiresAuth: true, requiresWrite: true, argRequired: true, handler: (*Session).handleRMD},
		"DELE": {requiresAuth: true, requiresWrite: true, argRequired: true, handler: (*Session).handleDELE},
		"RNFR": {requiresAuth: true, requiresWrite: true, argRequired: true, handler: (*Session).handleRNFR},
		"RNTO": {requiresAuth: true, requiresWrite: true, argRequired: true, handler: (*Session).handleRNTO},

		// Not implemented by design — see spec.md §1 Non-goals.
		"PORT": {requiresAuth: true, handler: (*Session).handleNotImplemented},
		"REST": {requiresAuth: true, handler: (*Session).handleNotImplemented},
		"AUTH": {handler: (*Session).handleNotImplemented},

		// Supplemented read-only extras, see SPEC_FULL.md.
		"FEAT": {handler: (*Session).handleFEAT},
		"SIZE": {requiresAuth: true, argRequired: true, handler: (*Session).handleSIZE},
		"MDTM": {requiresAuth: true, argRequired: true, handler: (*Session).handleMDTM},
		"STAT": {requiresAuth: true, handler: (*Session).handleSTAT},
		"HELP": {handler: (*Session).handleHELP},
		"SITE": {requiresAuth: true, argRequired: true, handler: (*Session).handleSITE},
	}
}

func (s *Session) handleNotImplemented(string) {
	s.sendReply(502, "Command not implemented")
}
