package perfmetrics

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLogCreatesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, "transfers.csv")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := logger.Log(at, Transfer{Verb: "STOR", Path: "/a.txt", SizeBytes: 2048, Duration: time.Second}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := logger.Log(at, Transfer{Verb: "RETR", Path: "/b.txt", SizeBytes: 4096, Duration: 2 * time.Second}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	data, err := os.ReadFile(dir + "/transfers.csv")
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 records, got %d lines: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "Timestamp,Verb") {
		t.Fatalf("missing CSV header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "STOR") {
		t.Fatalf("expected STOR record, got %q", lines[1])
	}
}
