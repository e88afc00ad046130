// Command ftpserverd runs the FTP control-channel server described in
// SPEC_FULL.md: an authenticated, sandboxed passive-mode FTP service.
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/omahajan/goftpcore/internal/auth"
	"github.com/omahajan/goftpcore/internal/ftpserver"
)

func main() {
	var (
		bindHost       = flag.String("host", "0.0.0.0", "address to bind the control channel to")
		bindPort       = flag.Int("port", 2121, "control channel listen port")
		rootDir        = flag.String("root", ".", "virtual filesystem root directory")
		advertisedHost = flag.String("advertise", "", "IP advertised in PASV replies (default: autodetect)")
		usersFile      = flag.String("users", "", "path to a JSON user table (default: a single demo user)")
		dataTimeout    = flag.Duration("data-timeout", 30*time.Second, "timeout for opening/using the data connection")
		logLevel       = flag.String("log-level", "INFO", "DEBUG, INFO, WARN, or ERROR")
	)
	flag.Parse()

	logger := setupLogger(*logLevel)

	if _, err := os.Stat(*rootDir); err != nil {
		logger.Error("root directory is not usable", "root", *rootDir, "error", err)
		os.Exit(1)
	}

	users, err := loadUsers(*usersFile)
	if err != nil {
		logger.Error("failed to load user table", "error", err)
		os.Exit(1)
	}

	cfg := ftpserver.Config{
		BindHost:         *bindHost,
		BindPort:         *bindPort,
		VirtualRoot:      *rootDir,
		AdvertisedHost:   *advertisedHost,
		Users:            users,
		DataTimeout:      *dataTimeout,
		UsersPersistPath: *usersFile,
	}

	server, err := ftpserver.NewServer(cfg, logger)
	if err != nil {
		logger.Error("failed to construct server", "error", err)
		os.Exit(1)
	}

	logger.Info("starting ftpserverd", "host", *bindHost, "port", *bindPort, "root", *rootDir)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func loadUsers(path string) ([]auth.User, error) {
	if path == "" {
		return []auth.User{{Name: "admin", Password: "admin", Permission: auth.ReadWrite}}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return []auth.User{{Name: "admin", Password: "admin", Permission: auth.ReadWrite}}, nil
	}
	table, err := auth.LoadJSON(path)
	if err != nil {
		return nil, err
	}
	return table.List(), nil
}

func setupLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	addSource := false
	switch level {
	case "DEBUG":
		logLevel = slog.LevelDebug
		addSource = true
	case "WARN":
		logLevel = slog.LevelWarn
	case "ERROR":
		logLevel = slog.LevelError
	}

	handler := tint.NewHandler(os.Stdout, &tint.Options{
		AddSource: addSource,
		Level:     logLevel,
	})
	logger := slog.New(handler).With("app", "ftpserverd")
	slog.SetDefault(logger)
	return logger
}
