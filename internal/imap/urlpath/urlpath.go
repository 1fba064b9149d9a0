// Package urlpath decodes the RFC 5092 IMAP-URL path grammar (spec.md
// §4.4): an optional mailbox name followed by ";NAME=VALUE" parameters.
// It never touches the imap:// scheme, host, or credentials portion of the
// URL — that's ordinary net/url territory and stays a caller concern per
// spec.md §1's Out of Scope list.
package urlpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is the decoded result of an IMAP-URL path.
type Path struct {
	Mailbox     string
	UIDValidity string
	UID         string
	Section     string
}

// MalformedError is returned for any violation of the bchar grammar or
// parameter rules; it always maps to imap.ErrURLMalformed at the call site.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string { return "urlpath: malformed path: " + e.Reason }

// unreserved / sub-delims-sh / the extra bchars spec.md §4.4 names.
func isBChar(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	}
	switch b {
	case '-', '.', '_', '~': // unreserved
		return true
	case '!', '$', '\'', '(', ')', '*', '+', ',': // sub-delims-sh
		return true
	case ':', '@', '/', '&', '=', '%': // explicit extras
		return true
	}
	return false
}

// Decode parses path (the portion of an imap:// URL after the host[:port];
// one leading '/' is accepted and dropped) into mailbox and parameters.
func Decode(path string) (*Path, error) {
	if strings.HasPrefix(path, "/") {
		path = path[1:]
	}

	for i := 0; i < len(path); i++ {
		if path[i] == ';' {
			break
		}
		if !isBChar(path[i]) {
			return nil, &MalformedError{Reason: fmt.Sprintf("invalid byte %q in mailbox segment", path[i])}
		}
	}

	segs := strings.Split(path, ";")
	mailbox, err := percentDecode(trimTrailingSlash(segs[0]))
	if err != nil {
		return nil, &MalformedError{Reason: err.Error()}
	}

	p := &Path{Mailbox: mailbox}
	seen := map[string]bool{}

	for _, seg := range segs[1:] {
		name, value, err := splitParam(seg)
		if err != nil {
			return nil, err
		}
		upper := strings.ToUpper(name)
		if seen[upper] {
			return nil, &MalformedError{Reason: fmt.Sprintf("parameter %s repeated", upper)}
		}
		seen[upper] = true

		decoded, err := percentDecode(value)
		if err != nil {
			return nil, &MalformedError{Reason: err.Error()}
		}

		switch upper {
		case "UIDVALIDITY":
			p.UIDValidity = decoded
		case "UID":
			p.UID = decoded
		case "SECTION":
			p.Section = decoded
		default:
			return nil, &MalformedError{Reason: fmt.Sprintf("unrecognized parameter %q", name)}
		}
	}

	return p, nil
}

func splitParam(seg string) (name, value string, err error) {
	eq := strings.IndexByte(seg, '=')
	if eq < 0 {
		return "", "", &MalformedError{Reason: fmt.Sprintf("parameter %q missing '='", seg)}
	}
	name, value = seg[:eq], seg[eq+1:]
	if name == "" {
		return "", "", &MalformedError{Reason: "'=' with no preceding name"}
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] == '=' {
			continue
		}
		if !isBChar(seg[i]) {
			return "", "", &MalformedError{Reason: fmt.Sprintf("invalid byte %q in parameter %q", seg[i], name)}
		}
	}
	return name, value, nil
}

func trimTrailingSlash(s string) string {
	return strings.TrimRight(s, "/")
}

func percentDecode(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("truncated percent-encoding at offset %d", i)
		}
		n, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("invalid percent-encoding %q", s[i:i+3])
		}
		b.WriteByte(byte(n))
		i += 2
	}
	return b.String(), nil
}
