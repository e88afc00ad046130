package ftpserver

import (
	"bufio"
	"net"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/omahajan/goftpcore/internal/auth"
)

// testClient is a minimal hand-rolled control-channel client used only
// by these tests, independent of internal/ftpclient.
type testClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dialTest(t *testing.T, addr string) *testClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	c := &testClient{t: t, conn: conn, r: bufio.NewReader(conn)}
	c.expect(220)
	return c
}

func (c *testClient) send(line string) {
	c.t.Helper()
	if _, err := c.conn.Write([]byte(line + "\r\n")); err != nil {
		c.t.Fatalf("write %q: %v", line, err)
	}
}

// readReply reads one (possibly multi-line) reply and returns its code
// and final-line text.
func (c *testClient) readReply() (int, string) {
	c.t.Helper()
	line, err := c.r.ReadString('\n')
	if err != nil {
		c.t.Fatalf("read reply: %v", err)
	}
	line = strings.TrimRight(line, "\r\n")
	code, err := strconv.Atoi(line[:3])
	if err != nil {
		c.t.Fatalf("bad reply code in %q: %v", line, err)
	}
	if len(line) > 3 && line[3] == '-' {
		prefix := line[:3] + " "
		for {
			next, err := c.r.ReadString('\n')
			if err != nil {
				c.t.Fatalf("read multi-line reply: %v", err)
			}
			next = strings.TrimRight(next, "\r\n")
			if strings.HasPrefix(next, prefix) {
				return code, next
			}
		}
	}
	return code, line
}

func (c *testClient) expect(want int) string {
	c.t.Helper()
	code, text := c.readReply()
	if code != want {
		c.t.Fatalf("expected reply %d, got %d (%q)", want, code, text)
	}
	return text
}

func (c *testClient) cmd(line string, want int) string {
	c.t.Helper()
	c.send(line)
	return c.expect(want)
}

func (c *testClient) login(user, pass string) {
	c.t.Helper()
	c.cmd("USER "+user, 331)
	c.cmd("PASS "+pass, 230)
}

// pasvDial issues PASV and dials the returned data address.
func (c *testClient) pasvDial() net.Conn {
	c.t.Helper()
	text := c.cmd("PASV", 227)
	start := strings.IndexByte(text, '(')
	end := strings.IndexByte(text, ')')
	if start < 0 || end < 0 {
		c.t.Fatalf("no PASV tuple in %q", text)
	}
	parts := strings.Split(text[start+1:end], ",")
	if len(parts) != 6 {
		c.t.Fatalf("bad PASV tuple %q", text)
	}
	host := strings.Join(parts[:4], ".")
	p1, _ := strconv.Atoi(parts[4])
	p2, _ := strconv.Atoi(parts[5])
	port := p1*256 + p2
	dataConn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), 2*time.Second)
	if err != nil {
		c.t.Fatalf("dial data conn: %v", err)
	}
	return dataConn
}

func startTestServer(t *testing.T, root string, users []auth.User) (*Server, string) {
	t.Helper()
	cfg := Config{
		BindHost:       "127.0.0.1",
		BindPort:       0,
		VirtualRoot:    root,
		AdvertisedHost: "127.0.0.1",
		Users:          users,
	}
	cfg.BindPort = freeTestPort(t)
	srv, err := NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.BindPort))
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if conn, err := net.Dial("tcp", addr); err == nil {
			conn.Close()
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Cleanup(func() {
		srv.Shutdown()
		select {
		case <-errCh:
		case <-time.After(time.Second):
		}
	})
	return srv, addr
}

// freeTestPort asks the OS for an ephemeral port and releases it
// immediately; good enough for sequential test use.
func freeTestPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("allocate test port: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func testUsers() []auth.User {
	return []auth.User{
		{Name: "alice", Password: "secret", Permission: auth.ReadWrite},
		{Name: "viewer", Password: "viewonly", Permission: auth.ReadOnly},
	}
}

func TestLoginAndPWD(t *testing.T) {
	root := t.TempDir()
	_, addr := startTestServer(t, root, testUsers())
	c := dialTest(t, addr)
	c.login("alice", "secret")
	c.cmd("PWD", 257)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	root := t.TempDir()
	_, addr := startTestServer(t, root, testUsers())
	c := dialTest(t, addr)
	c.cmd("USER alice", 331)
	c.cmd("PASS wrong", 530)
}

func TestMKDCWDPWDCDUP(t *testing.T) {
	root := t.TempDir()
	_, addr := startTestServer(t, root, testUsers())
	c := dialTest(t, addr)
	c.login("alice", "secret")

	c.cmd("MKD sub", 257)
	c.cmd("CWD sub", 250)
	text := c.cmd("PWD", 257)
	if !strings.Contains(text, "/sub") {
		t.Fatalf("expected /sub in PWD reply, got %q", text)
	}
	c.cmd("CDUP", 250)
	text = c.cmd("PWD", 257)
	if !strings.Contains(text, "\"/\"") {
		t.Fatalf("expected root in PWD reply, got %q", text)
	}
	c.cmd("RMD sub", 250)
}

func TestCWDThenCDUPIsNoopAtRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(root+"/a", 0755); err != nil {
		t.Fatal(err)
	}
	_, addr := startTestServer(t, root, testUsers())
	c := dialTest(t, addr)
	c.login("alice", "secret")
	c.cmd("CWD a", 250)
	c.cmd("CWD ..", 250)
	text := c.cmd("PWD", 257)
	if !strings.Contains(text, "\"/\"") {
		t.Fatalf("expected back at root, got %q", text)
	}
}

func TestSTORThenRETRRoundTrip(t *testing.T) {
	root := t.TempDir()
	_, addr := startTestServer(t, root, testUsers())
	c := dialTest(t, addr)
	c.login("alice", "secret")

	dataConn := c.pasvDial()
	c.send("STOR greeting.txt")
	c.expect(150)
	if _, err := dataConn.Write([]byte("hello, ftp")); err != nil {
		t.Fatalf("write data: %v", err)
	}
	dataConn.Close()
	c.expect(226)

	dataConn = c.pasvDial()
	c.send("RETR greeting.txt")
	c.expect(150)
	buf := make([]byte, 64)
	n, _ := dataConn.Read(buf)
	dataConn.Close()
	c.expect(226)

	if got := string(buf[:n]); got != "hello, ftp" {
		t.Fatalf("RETR got %q, want %q", got, "hello, ftp")
	}
}

func TestLISTShowsStoredFile(t *testing.T) {
	root := t.TempDir()
	_, addr := startTestServer(t, root, testUsers())
	c := dialTest(t, addr)
	c.login("alice", "secret")

	dataConn := c.pasvDial()
	c.send("STOR file.txt")
	c.expect(150)
	dataConn.Write([]byte("x"))
	dataConn.Close()
	c.expect(226)

	dataConn = c.pasvDial()
	c.send("LIST")
	c.expect(150)
	buf := make([]byte, 4096)
	n, _ := dataConn.Read(buf)
	dataConn.Close()
	c.expect(226)

	if !strings.Contains(string(buf[:n]), "file.txt") {
		t.Fatalf("LIST output missing file.txt: %q", string(buf[:n]))
	}
}

func TestRenameRoundTrip(t *testing.T) {
	root := t.TempDir()
	_, addr := startTestServer(t, root, testUsers())
	c := dialTest(t, addr)
	c.login("alice", "secret")

	dataConn := c.pasvDial()
	c.send("STOR old.txt")
	c.expect(150)
	dataConn.Write([]byte("data"))
	dataConn.Close()
	c.expect(226)

	c.cmd("RNFR old.txt", 350)
	c.cmd("RNTO new.txt", 250)

	if _, err := os.Stat(root + "/new.txt"); err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
}

func TestRenameFromClearedByIntermediateCommand(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(root+"/a.txt", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	_, addr := startTestServer(t, root, testUsers())
	c := dialTest(t, addr)
	c.login("alice", "secret")

	c.cmd("RNFR a.txt", 350)
	c.cmd("PWD", 257)
	c.cmd("RNTO b.txt", 503)
}

func TestEscapeAttemptIsClamped(t *testing.T) {
	root := t.TempDir()
	_, addr := startTestServer(t, root, testUsers())
	c := dialTest(t, addr)
	c.login("alice", "secret")

	c.cmd("CWD ../../../../etc", 550)
}

func TestReadOnlyUserCannotSTOR(t *testing.T) {
	root := t.TempDir()
	_, addr := startTestServer(t, root, testUsers())
	c := dialTest(t, addr)
	c.login("viewer", "viewonly")

	c.cmd("PASV", 227)
	c.cmd("STOR nope.txt", 550)
}

func TestCommandsRequireLogin(t *testing.T) {
	root := t.TempDir()
	_, addr := startTestServer(t, root, testUsers())
	c := dialTest(t, addr)
	c.cmd("PWD", 530)
}
