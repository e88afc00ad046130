package ftpclient

import (
	"bytes"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/omahajan/goftpcore/internal/auth"
	"github.com/omahajan/goftpcore/internal/ftpserver"
)

func startServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("allocate port: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	cfg := ftpserver.Config{
		BindHost:       "127.0.0.1",
		BindPort:       port,
		VirtualRoot:    t.TempDir(),
		AdvertisedHost: "127.0.0.1",
		Users: []auth.User{
			{Name: "alice", Password: "secret", Permission: auth.ReadWrite},
		},
	}
	srv, err := ftpserver.NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	go srv.ListenAndServe()
	t.Cleanup(func() { srv.Shutdown() })

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if conn, err := net.Dial("tcp", addr); err == nil {
			conn.Close()
			return addr
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server never came up on %s", addr)
	return ""
}

func TestClientLoginAndPWD(t *testing.T) {
	addr := startServer(t)
	c, err := Dial(addr, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Quit()

	if err := c.Login("alice", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	dir, err := c.Pwd()
	if err != nil {
		t.Fatalf("Pwd: %v", err)
	}
	if dir != "/" {
		t.Fatalf("Pwd = %q, want /", dir)
	}
}

func TestClientLoginRejectsBadPassword(t *testing.T) {
	addr := startServer(t)
	c, err := Dial(addr, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Quit()

	err = c.Login("alice", "wrong")
	if err == nil {
		t.Fatal("expected login error")
	}
	if _, ok := err.(*AuthError); !ok {
		t.Fatalf("expected *AuthError, got %T: %v", err, err)
	}
}

func TestClientStoreRetrieveRoundTrip(t *testing.T) {
	addr := startServer(t)
	c, err := Dial(addr, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Quit()
	if err := c.Login("alice", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	payload := []byte("round trip payload")
	if err := c.Store("data.bin", bytes.NewReader(payload)); err != nil {
		t.Fatalf("Store: %v", err)
	}

	var out bytes.Buffer
	if err := c.Retrieve("data.bin", &out); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if !bytes.Equal(out.Bytes(), payload) {
		t.Fatalf("Retrieve = %q, want %q", out.Bytes(), payload)
	}
}

func TestClientMkdCwdList(t *testing.T) {
	addr := startServer(t)
	c, err := Dial(addr, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Quit()
	if err := c.Login("alice", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := c.Mkd("sub"); err != nil {
		t.Fatalf("Mkd: %v", err)
	}
	if err := c.Cwd("sub"); err != nil {
		t.Fatalf("Cwd: %v", err)
	}
	if err := c.Store("inside.txt", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("Store: %v", err)
	}

	entries, err := c.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Name == "inside.txt" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected inside.txt in listing, got %+v", entries)
	}
}

func TestClientCompressedStoreRetrieveRoundTrip(t *testing.T) {
	addr := startServer(t)
	c, err := Dial(addr, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Quit()
	if err := c.Login("alice", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := c.SetCompression(true); err != nil {
		t.Fatalf("SetCompression: %v", err)
	}
	if !c.CompressionEnabled() {
		t.Fatal("expected CompressionEnabled() after SetCompression(true)")
	}

	payload := []byte("compressed payload data data data")
	if err := c.Store("z.bin", bytes.NewReader(payload)); err != nil {
		t.Fatalf("Store: %v", err)
	}
	var out bytes.Buffer
	if err := c.Retrieve("z.bin", &out); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if !bytes.Equal(out.Bytes(), payload) {
		t.Fatalf("Retrieve = %q, want %q", out.Bytes(), payload)
	}
}

func TestClientRenameAndDelete(t *testing.T) {
	addr := startServer(t)
	c, err := Dial(addr, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Quit()
	if err := c.Login("alice", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := c.Store("old.txt", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := c.Rename("old.txt", "new.txt"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if err := c.Dele("new.txt"); err != nil {
		t.Fatalf("Dele: %v", err)
	}
}
