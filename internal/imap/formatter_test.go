package imap

import "testing"

func TestFormatTag(t *testing.T) {
	tests := []struct {
		identity, id int
		want         string
	}{
		{0, 1, "A001"},
		{0, 999, "A999"},
		{0, 1000, "A000"}, // wraps modulo 1000
		{1, 1, "B001"},
		{25, 1, "Z001"},
		{26, 1, "A001"}, // letter wraps modulo 26
	}
	for _, tt := range tests {
		if got := formatTag(tt.identity, tt.id); got != tt.want {
			t.Errorf("formatTag(%d, %d) = %q, want %q", tt.identity, tt.id, got, tt.want)
		}
	}
}

func TestNextTag_IncrementsAndWraps(t *testing.T) {
	c := &Conn{identity: 0}
	c.cmdid = 998
	if got := c.nextTag(); got != "A999" {
		t.Errorf("nextTag() = %q, want A999", got)
	}
	if got := c.nextTag(); got != "A000" {
		t.Errorf("nextTag() = %q, want A000 after wraparound", got)
	}
}

func TestAtomQuote(t *testing.T) {
	// Built by hand instead of as literals to keep the backslash/quote
	// escaping legible: esc is one escaped character (backslash then the
	// character itself), dq is a bare double quote.
	esc := func(c byte) string { return `\` + string(c) }
	dq := `"`

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"INBOX", "INBOX"},
		{"Sent Items", dq + "Sent Items" + dq},
		// Backslash/quote must be escaped even without a space forcing
		// quoting, per spec.md §4.3.
		{`back\slash`, "back" + esc('\\') + "slash"},
		{`a"b`, "a" + esc('"') + "b"},
		{`"quoted folder"`, dq + esc('"') + "quoted folder" + esc('"') + dq},
	}
	for _, tt := range tests {
		if got := atomQuote(tt.in); got != tt.want {
			t.Errorf("atomQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuotedOrEmpty(t *testing.T) {
	if got := quotedOrEmpty(""); got != `""` {
		t.Errorf("quotedOrEmpty(\"\") = %q, want an empty quoted string", got)
	}
	if got := quotedOrEmpty("alice"); got != "alice" {
		t.Errorf("quotedOrEmpty(%q) = %q, want unchanged", "alice", got)
	}
}
