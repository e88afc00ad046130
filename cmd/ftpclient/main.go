// Command ftpclient runs the interactive go-prompt REPL over the
// from-scratch FTP control-channel client described in SPEC_FULL.md.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"github.com/omahajan/goftpcore/internal/clientui"
	"github.com/omahajan/goftpcore/internal/ftpclient"
)

func main() {
	var (
		addr     = flag.String("connect", "", "host:port to connect to immediately (optional)")
		user     = flag.String("user", "", "username to log in with when -connect is set")
		pass     = flag.String("pass", "", "password to log in with when -connect is set")
		logLevel = flag.String("log-level", "WARN", "DEBUG, INFO, WARN, or ERROR")
	)
	flag.Parse()

	logger := setupLogger(*logLevel)

	shell, err := clientui.NewShell(logger)
	if err != nil {
		logger.Error("failed to start shell", "error", err)
		os.Exit(1)
	}

	if *addr != "" {
		client, err := ftpclient.Dial(*addr, logger)
		if err != nil {
			logger.Error("failed to connect", "addr", *addr, "error", err)
			os.Exit(1)
		}
		if *user != "" {
			password := *pass
			if password == "" {
				password = promptPassword()
			}
			if err := client.Login(*user, password); err != nil {
				logger.Error("login failed", "error", err)
				os.Exit(1)
			}
		}
		shell.Attach(client)
	}

	shell.Run()
}

// promptPassword reads a password from the terminal without echoing
// it, falling back to an empty string if stdin isn't a terminal.
func promptPassword() string {
	fmt.Fprint(os.Stderr, "Password: ")
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return ""
	}
	return string(data)
}

func setupLogger(level string) *slog.Logger {
	logLevel := slog.LevelWarn
	switch level {
	case "DEBUG":
		logLevel = slog.LevelDebug
	case "INFO":
		logLevel = slog.LevelInfo
	case "ERROR":
		logLevel = slog.LevelError
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{Level: logLevel})
	return slog.New(handler).With("app", "ftpclient")
}
