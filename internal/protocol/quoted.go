package protocol

import "strings"

// QuotePath renders path as the quoted-string form used in 257/MKD
// replies, doubling any embedded '"'.
func QuotePath(path string) string {
	return `"` + strings.ReplaceAll(path, `"`, `""`) + `"`
}

// ParseQuotedPath extracts the first quoted-string group from a reply's
// text, un-doubling embedded quotes. Returns ok=false if no quoted
// group is present.
func ParseQuotedPath(text string) (path string, ok bool) {
	start := strings.IndexByte(text, '"')
	if start < 0 {
		return "", false
	}
	rest := text[start+1:]
	var sb strings.Builder
	for i := 0; i < len(rest); i++ {
		if rest[i] != '"' {
			sb.WriteByte(rest[i])
			continue
		}
		// A doubled quote is an embedded '"'; a lone quote closes the group.
		if i+1 < len(rest) && rest[i+1] == '"' {
			sb.WriteByte('"')
			i++
			continue
		}
		return sb.String(), true
	}
	return sb.String(), true
}
