// Package ftpclient implements the control-channel protocol engine and
// data-command workflow for talking to an FTP server from scratch
// (spec.md §4.2/§4.3) — no third-party FTP client library is used;
// the wire protocol lives in internal/protocol and is driven directly.
package ftpclient

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/omahajan/goftpcore/internal/protocol"
)

// Client is one control-channel session with an FTP server. It is not
// safe for concurrent use by multiple goroutines.
type Client struct {
	conn   net.Conn
	reader *protocol.ReplyReader
	logger *slog.Logger

	addr         string
	currentDir   string
	dataTimeout  time.Duration
	transferMode string // "S" or "Z", see SPEC_FULL MODE Z
}

// Dial connects to addr (host:port) and reads the server's greeting.
func Dial(addr string, logger *slog.Logger) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", Err: err}
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		conn:        conn,
		reader:      protocol.NewReplyReader(conn),
		logger:      logger,
		addr:         addr,
		currentDir:   "/",
		dataTimeout:  30 * time.Second,
		transferMode: "S",
	}
	reply, err := c.reader.ReadReply()
	if err != nil {
		conn.Close()
		return nil, &ConnectionError{Op: "read greeting", Err: err}
	}
	if reply.Code != 220 {
		conn.Close()
		return nil, &CommandError{Verb: "CONNECT", Code: reply.Code, Text: lastLine(reply)}
	}
	return c, nil
}

// Login performs the USER/PASS handshake. A server may accept USER
// outright (230, "already logged in") rather than challenging for a
// password, per spec.md §4.2.
func (c *Client) Login(user, password string) error {
	reply, err := c.command("USER " + user)
	if err != nil {
		return err
	}
	if reply.Code == 230 {
		return nil
	}
	if reply.Code != 331 {
		return &AuthError{Code: reply.Code, Text: lastLine(reply)}
	}
	reply, err = c.command("PASS " + password)
	if err != nil {
		return err
	}
	if reply.Code != 230 {
		return &AuthError{Code: reply.Code, Text: lastLine(reply)}
	}
	return nil
}

// Quit sends QUIT and closes the control connection.
func (c *Client) Quit() error {
	_, _ = c.command("QUIT")
	return c.conn.Close()
}

// Pwd returns the current remote directory as reported by the server.
func (c *Client) Pwd() (string, error) {
	reply, err := c.command("PWD")
	if err != nil {
		return "", err
	}
	if reply.Code != 257 {
		return "", &CommandError{Verb: "PWD", Code: reply.Code, Text: lastLine(reply)}
	}
	path, ok := protocol.ParseQuotedPath(lastLine(reply))
	if !ok {
		return "", &CommandError{Verb: "PWD", Code: reply.Code, Text: lastLine(reply)}
	}
	c.currentDir = path
	return path, nil
}

// Cwd changes the remote working directory.
func (c *Client) Cwd(path string) error {
	reply, err := c.command("CWD " + path)
	if err != nil {
		return err
	}
	if reply.Code != 250 {
		return &CommandError{Verb: "CWD", Code: reply.Code, Text: lastLine(reply)}
	}
	if _, err := c.Pwd(); err != nil {
		return err
	}
	return nil
}

// Cdup moves up one directory.
func (c *Client) Cdup() error {
	reply, err := c.command("CDUP")
	if err != nil {
		return err
	}
	if reply.Code != 250 {
		return &CommandError{Verb: "CDUP", Code: reply.Code, Text: lastLine(reply)}
	}
	_, err = c.Pwd()
	return err
}

// Mkd creates a remote directory and returns its path as confirmed by
// the server.
func (c *Client) Mkd(path string) (string, error) {
	reply, err := c.command("MKD " + path)
	if err != nil {
		return "", err
	}
	if reply.Code != 257 {
		return "", &CommandError{Verb: "MKD", Code: reply.Code, Text: lastLine(reply)}
	}
	created, _ := protocol.ParseQuotedPath(lastLine(reply))
	return created, nil
}

// Rmd removes a remote directory.
func (c *Client) Rmd(path string) error {
	reply, err := c.command("RMD " + path)
	if err != nil {
		return err
	}
	if reply.Code != 250 {
		return &CommandError{Verb: "RMD", Code: reply.Code, Text: lastLine(reply)}
	}
	return nil
}

// Dele removes a remote file.
func (c *Client) Dele(path string) error {
	reply, err := c.command("DELE " + path)
	if err != nil {
		return err
	}
	if reply.Code != 250 {
		return &CommandError{Verb: "DELE", Code: reply.Code, Text: lastLine(reply)}
	}
	return nil
}

// Rename renames from to to via the RNFR/RNTO pair.
func (c *Client) Rename(from, to string) error {
	reply, err := c.command("RNFR " + from)
	if err != nil {
		return err
	}
	if reply.Code != 350 {
		return &CommandError{Verb: "RNFR", Code: reply.Code, Text: lastLine(reply)}
	}
	reply, err = c.command("RNTO " + to)
	if err != nil {
		return err
	}
	if reply.Code != 250 {
		return &CommandError{Verb: "RNTO", Code: reply.Code, Text: lastLine(reply)}
	}
	return nil
}

// TypeBinary switches the advisory transfer type to image (binary).
func (c *Client) TypeBinary() error { return c.setType("I") }

// TypeASCII switches the advisory transfer type to ASCII.
func (c *Client) TypeASCII() error { return c.setType("A") }

func (c *Client) setType(t string) error {
	reply, err := c.command("TYPE " + t)
	if err != nil {
		return err
	}
	if reply.Code != 200 {
		return &CommandError{Verb: "TYPE", Code: reply.Code, Text: lastLine(reply)}
	}
	return nil
}

// command sends one line on the control channel and reads back a full
// (possibly multi-line) reply.
func (c *Client) command(line string) (protocol.Reply, error) {
	if _, err := c.conn.Write([]byte(line + "\r\n")); err != nil {
		return protocol.Reply{}, &ConnectionError{Op: "write " + line, Err: err}
	}
	reply, err := c.reader.ReadReply()
	if err != nil {
		return protocol.Reply{}, &ConnectionError{Op: "read reply to " + line, Err: err}
	}
	return reply, nil
}

func lastLine(r protocol.Reply) string {
	if len(r.Lines) == 0 {
		return ""
	}
	return r.Lines[len(r.Lines)-1]
}

// CurrentDir returns the last directory reported by Pwd/Cwd/Cdup.
func (c *Client) CurrentDir() string { return c.currentDir }

// CompressionEnabled reports whether MODE Z was last negotiated.
func (c *Client) CompressionEnabled() bool { return c.transferMode == "Z" }

// SetCompression negotiates MODE Z (on) or MODE S (off) with the
// server (SPEC_FULL.md "Supplemented Features").
func (c *Client) SetCompression(enabled bool) error {
	mode := "S"
	if enabled {
		mode = "Z"
	}
	reply, err := c.command("MODE " + mode)
	if err != nil {
		return err
	}
	if reply.Code != 200 {
		return &CommandError{Verb: "MODE", Code: reply.Code, Text: lastLine(reply)}
	}
	c.transferMode = mode
	return nil
}

func (c *Client) String() string {
	return fmt.Sprintf("ftpclient.Client{addr=%s, dir=%s}", c.addr, c.currentDir)
}
