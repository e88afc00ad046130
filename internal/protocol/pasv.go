package protocol

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// tupleRe matches a parenthesized comma-separated sextuple anywhere in
// the reply text; servers vary in the prose around it.
var tupleRe = regexp.MustCompile(`\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)`)

// EncodePASV formats the (h1,h2,h3,h4,p1,p2) tuple used in a 227 reply.
func EncodePASV(ip net.IP, port int) (string, error) {
	v4 := ip.To4()
	if v4 == nil {
		return "", fmt.Errorf("protocol: PASV address %s is not IPv4", ip)
	}
	p1, p2 := port/256, port%256
	return fmt.Sprintf("(%d,%d,%d,%d,%d,%d)", v4[0], v4[1], v4[2], v4[3], p1, p2), nil
}

// ParsePASV extracts the last parenthesized six-tuple in text and
// returns the host and port it encodes.
func ParsePASV(text string) (host string, port int, err error) {
	matches := tupleRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", 0, &ProtocolError{Reason: "no PASV address tuple found in reply"}
	}
	m := matches[len(matches)-1]
	octets := make([]string, 4)
	nums := make([]int, 6)
	for i := 1; i <= 6; i++ {
		n, convErr := strconv.Atoi(m[i])
		if convErr != nil || n < 0 || n > 255 {
			return "", 0, &ProtocolError{Reason: fmt.Sprintf("invalid PASV octet %q", m[i])}
		}
		nums[i-1] = n
	}
	for i := 0; i < 4; i++ {
		octets[i] = strconv.Itoa(nums[i])
	}
	return strings.Join(octets, "."), nums[4]*256 + nums[5], nil
}
