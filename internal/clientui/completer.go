package clientui

import (
	"os"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"

	"github.com/omahajan/goftpcore/internal/ftpclient"
)

var replCommands = []prompt.Suggest{
	{Text: "OPEN", Description: "Connect to an FTP server"},
	{Text: "USER", Description: "Log in with username/password"},
	{Text: "PWD", Description: "Show current remote directory"},
	{Text: "CWD", Description: "Change remote directory"},
	{Text: "CDUP", Description: "Move up one remote directory"},
	{Text: "LIST", Description: "List remote directory"},
	{Text: "RETR", Description: "Download a remote file"},
	{Text: "STOR", Description: "Upload a local file"},
	{Text: "MKD", Description: "Create a remote directory"},
	{Text: "RMD", Description: "Remove a remote directory"},
	{Text: "DELE", Description: "Delete a remote file"},
	{Text: "RENAME", Description: "Rename a remote file"},
	{Text: "BINARY", Description: "Switch to binary transfer mode"},
	{Text: "ASCII", Description: "Switch to ASCII transfer mode"},
	{Text: "THEME", Description: "Switch light/dark theme"},
	{Text: "MODEZ", Description: "Toggle MODE Z compression (ON/OFF)"},
	{Text: "QUIT", Description: "Disconnect and exit"},
}

// Completer supplies command and path suggestions for the REPL,
// refreshing a small cache of the remote directory only once it is
// older than cacheTimeout so every keystroke doesn't round-trip to the
// server.
type Completer struct {
	client       *ftpclient.Client
	cacheTimeout time.Duration
	lastUpdate   time.Time
	remoteFiles  []string
	remoteDirs   []string
}

func NewCompleter() *Completer {
	return &Completer{cacheTimeout: 15 * time.Second}
}

func (c *Completer) SetClient(client *ftpclient.Client) {
	c.client = client
	c.remoteFiles = nil
	c.remoteDirs = nil
	c.lastUpdate = time.Time{}
}

func (c *Completer) Complete(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	words := strings.Fields(text)

	if len(words) == 0 || (len(words) == 1 && !strings.HasSuffix(text, " ")) {
		return filterByPrefix(replCommands, firstOrEmpty(words))
	}
	return c.suggestArgument(strings.ToUpper(words[0]), words[len(words)-1])
}

func (c *Completer) suggestArgument(cmd, prefix string) []prompt.Suggest {
	switch cmd {
	case "CWD", "RMD", "LIST":
		return c.remoteSuggestions(prefix, true, true)
	case "RETR", "DELE", "RENAME":
		return c.remoteSuggestions(prefix, true, false)
	case "STOR":
		return localSuggestions(prefix)
	default:
		return nil
	}
}

func (c *Completer) remoteSuggestions(prefix string, files, dirs bool) []prompt.Suggest {
	c.refreshIfStale()
	var out []prompt.Suggest
	if dirs {
		out = append(out, matching(c.remoteDirs, prefix, "Remote directory")...)
	}
	if files {
		out = append(out, matching(c.remoteFiles, prefix, "Remote file")...)
	}
	return out
}

func (c *Completer) refreshIfStale() {
	if c.client == nil || time.Since(c.lastUpdate) < c.cacheTimeout {
		return
	}
	entries, err := c.client.List("")
	if err != nil {
		return
	}
	c.remoteFiles = nil
	c.remoteDirs = nil
	for _, e := range entries {
		if e.IsDir {
			c.remoteDirs = append(c.remoteDirs, e.Name)
		} else {
			c.remoteFiles = append(c.remoteFiles, e.Name)
		}
	}
	c.lastUpdate = time.Now()
}

func localSuggestions(prefix string) []prompt.Suggest {
	entries, err := os.ReadDir(".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return matching(names, prefix, "Local file")
}

func matching(names []string, prefix, label string) []prompt.Suggest {
	var out []prompt.Suggest
	for _, n := range names {
		if strings.HasPrefix(n, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(n), strings.ToLower(prefix)) {
			out = append(out, prompt.Suggest{Text: n, Description: label})
		}
	}
	return out
}

func filterByPrefix(suggestions []prompt.Suggest, prefix string) []prompt.Suggest {
	if prefix == "" {
		return suggestions
	}
	var out []prompt.Suggest
	upper := strings.ToUpper(prefix)
	for _, s := range suggestions {
		if strings.HasPrefix(strings.ToUpper(s.Text), upper) {
			out = append(out, s)
		}
	}
	return out
}

func firstOrEmpty(words []string) string {
	if len(words) == 0 {
		return ""
	}
	return words[0]
}
