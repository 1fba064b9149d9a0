package imap

import "strings"

// formatTag renders the tag for command number id (0-999) on a connection
// whose identity determines the leading letter: 'A' + (identity % 26),
// per spec.md §3/§8's testable property.
func formatTag(identity, id int) string {
	letter := byte('A' + (identity % 26))
	return string(letter) + zeroPad3(id%1000)
}

func zeroPad3(n int) string {
	if n < 0 {
		n = -n
	}
	digits := [3]byte{'0', '0', '0'}
	for i := 2; i >= 0 && n > 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[:])
}

// atomQuote implements spec.md §4.3's imap_atom rule: return the string
// unchanged when it contains no backslash, double quote or space; otherwise
// escape each backslash and double quote with a backslash, and wrap the
// result in double quotes only if it contains a space. Empty input yields
// the empty string; callers
// substitute "" when an atom must not be blank on the wire.
func atomQuote(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "\\\" ") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	needsQuotes := strings.Contains(s, " ")
	if needsQuotes {
		b.WriteByte('"')
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' || c == '"' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	if needsQuotes {
		b.WriteByte('"')
	}
	return b.String()
}

// quotedOrEmpty is the common "" fallback for an absent mailbox/string
// argument; any other value goes through atomQuote.
func quotedOrEmpty(s string) string {
	if s == "" {
		return `""`
	}
	return atomQuote(s)
}
