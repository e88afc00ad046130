package ftpclient

import (
	"bufio"
	"compress/zlib"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/omahajan/goftpcore/internal/protocol"
)

// wrapReader/wrapWriter apply zlib (de)compression when MODE Z is
// active, mirroring the server's data-channel wrapping.
func (c *Client) wrapReader(r io.Reader) (io.Reader, error) {
	if c.transferMode != "Z" {
		return r, nil
	}
	return zlib.NewReader(r)
}

func (c *Client) wrapWriter(w io.Writer) (io.WriteCloser, error) {
	if c.transferMode != "Z" {
		return nopWriteCloser{w}, nil
	}
	return zlib.NewWriter(w), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Entry is one parsed line of a LIST response.
type Entry struct {
	Name    string
	Size    int64
	IsDir   bool
	Raw     string
}

// openPassive issues PASV and dials the address the server returns,
// implementing the data-command protocol from spec.md §4.3.
func (c *Client) openPassive() (net.Conn, error) {
	reply, err := c.command("PASV")
	if err != nil {
		return nil, err
	}
	if reply.Code != 227 {
		return nil, &TransferError{Verb: "PASV", Code: reply.Code, Text: lastLine(reply)}
	}
	host, port, err := protocol.ParsePASV(lastLine(reply))
	if err != nil {
		return nil, &TransferError{Verb: "PASV", Err: err}
	}
	host = c.routableHost(host)
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), c.dataTimeout)
	if err != nil {
		return nil, &TransferError{Verb: "PASV", Err: err}
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetDeadline(time.Now().Add(c.dataTimeout))
	}
	return conn, nil
}

// routableHost implements the substitution required by spec.md §4.3
// step 1: a server behind NAT or a misconfigured reverse proxy often
// advertises an address the client can't reach (0.0.0.0 or an
// inner-network IP). When that happens, fall back to the address the
// control connection is already talking to instead of trusting PASV.
func (c *Client) routableHost(advertised string) string {
	ip := net.ParseIP(advertised)
	if ip == nil || (!ip.IsUnspecified() && !ip.IsPrivate()) {
		return advertised
	}
	peer, ok := c.conn.RemoteAddr().(*net.TCPAddr)
	if !ok || peer.IP == nil {
		return advertised
	}
	return peer.IP.String()
}

// List opens a data connection and returns the parsed directory
// listing for path ("" means the current directory).
func (c *Client) List(path string) ([]Entry, error) {
	dataConn, err := c.openPassive()
	if err != nil {
		return nil, err
	}

	verb := "LIST"
	line := verb
	if path != "" {
		line += " " + path
	}
	reply, err := c.command(line)
	if err != nil {
		dataConn.Close()
		return nil, err
	}
	if reply.Code != 150 {
		dataConn.Close()
		return nil, &TransferError{Verb: verb, Code: reply.Code, Text: lastLine(reply)}
	}

	var entries []Entry
	scanner := bufio.NewScanner(dataConn)
	for scanner.Scan() {
		if e, ok := parseListLine(scanner.Text()); ok {
			entries = append(entries, e)
		}
	}
	scanErr := scanner.Err()
	dataConn.Close()

	final, err := c.reader.ReadReply()
	if err != nil {
		return entries, &ConnectionError{Op: "read LIST completion reply", Err: err}
	}
	if final.Code != 226 && final.Code != 250 {
		return entries, &TransferError{Verb: verb, Code: final.Code, Text: lastLine(final)}
	}
	if scanErr != nil {
		return entries, &TransferError{Verb: verb, Err: scanErr}
	}
	return entries, nil
}

// Retrieve downloads path into w.
func (c *Client) Retrieve(path string, w io.Writer) error {
	dataConn, err := c.openPassive()
	if err != nil {
		return err
	}

	reply, err := c.command("RETR " + path)
	if err != nil {
		dataConn.Close()
		return err
	}
	if reply.Code != 150 {
		dataConn.Close()
		return &TransferError{Verb: "RETR", Code: reply.Code, Text: lastLine(reply)}
	}

	src, wrapErr := c.wrapReader(dataConn)
	var copyErr error
	if wrapErr != nil {
		copyErr = wrapErr
	} else {
		_, copyErr = io.Copy(w, src)
	}
	dataConn.Close()

	final, err := c.reader.ReadReply()
	if err != nil {
		return &ConnectionError{Op: "read RETR completion reply", Err: err}
	}
	if final.Code != 226 && final.Code != 250 {
		return &TransferError{Verb: "RETR", Code: final.Code, Text: lastLine(final)}
	}
	if copyErr != nil {
		return &TransferError{Verb: "RETR", Err: copyErr}
	}
	return nil
}

// Store uploads r to path, half-closing the data connection's write
// side once r is exhausted so the server observes EOF without losing
// any late reply on the control channel (spec.md §4.3).
func (c *Client) Store(path string, r io.Reader) error {
	dataConn, err := c.openPassive()
	if err != nil {
		return err
	}

	reply, err := c.command("STOR " + path)
	if err != nil {
		dataConn.Close()
		return err
	}
	if reply.Code != 150 {
		dataConn.Close()
		return &TransferError{Verb: "STOR", Code: reply.Code, Text: lastLine(reply)}
	}

	dst, wrapErr := c.wrapWriter(dataConn)
	var copyErr error
	if wrapErr != nil {
		copyErr = wrapErr
	} else {
		_, copyErr = io.Copy(dst, r)
		if closeErr := dst.Close(); closeErr != nil && copyErr == nil {
			copyErr = closeErr
		}
	}
	closeWriteOrClose(dataConn)
	dataConn.Close()

	final, err := c.reader.ReadReply()
	if err != nil {
		return &ConnectionError{Op: "read STOR completion reply", Err: err}
	}
	if final.Code != 226 && final.Code != 250 {
		return &TransferError{Verb: "STOR", Code: final.Code, Text: lastLine(final)}
	}
	if copyErr != nil {
		return &TransferError{Verb: "STOR", Err: copyErr}
	}
	return nil
}

// closeWriteOrClose half-closes a TCP data connection's write side so
// the server sees EOF promptly; connections that don't support
// CloseWrite are left for the subsequent full Close.
func closeWriteOrClose(conn net.Conn) {
	type writeCloser interface {
		CloseWrite() error
	}
	if wc, ok := conn.(writeCloser); ok {
		_ = wc.CloseWrite()
	}
}

// parseListLine parses one line of our server's LIST output:
// "<perm> <nlink> <owner> <group> <size> <mon> <day> <time-or-year> <name>".
func parseListLine(line string) (Entry, bool) {
	fields := strings.Fields(line)
	if len(fields) < 9 {
		return Entry{}, false
	}
	size, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return Entry{}, false
	}
	name := strings.Join(fields[8:], " ")
	return Entry{
		Name:  name,
		Size:  size,
		IsDir: strings.HasPrefix(fields[0], "d"),
		Raw:   line,
	}, true
}
