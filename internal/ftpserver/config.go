package ftpserver

import (
	"log/slog"
	"time"

	"github.com/omahajan/goftpcore/internal/auth"
)

// Config is the server's static configuration, passed by value into
// NewServer and from there into each session — no process-wide
// mutable globals (spec.md §9 "Global-ish configuration").
type Config struct {
	BindHost         string
	BindPort         int
	VirtualRoot      string
	AdvertisedHost   string // optional; overrides the PASV-advertised IP
	Users            []auth.User
	DataTimeout      time.Duration
	MaxLineBytes     int
	UsersPersistPath string // optional; where SITE ADDUSER/DELUSER persist the table
}

// withDefaults fills in spec.md §6 defaults for zero-valued fields.
func (c Config) withDefaults() Config {
	if c.BindHost == "" {
		c.BindHost = "0.0.0.0"
	}
	if c.BindPort == 0 {
		c.BindPort = 2121
	}
	if c.DataTimeout <= 0 {
		c.DataTimeout = 30 * time.Second
	}
	if c.MaxLineBytes <= 0 {
		c.MaxLineBytes = 8192
	}
	return c
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
