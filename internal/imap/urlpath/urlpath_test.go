package urlpath

import "testing"

func TestDecodeRoundTrip(t *testing.T) {
	p, err := Decode("/m;UID=5;SECTION=1.2")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Mailbox != "m" || p.UID != "5" || p.Section != "1.2" {
		t.Errorf("got %+v", p)
	}
}

func TestDecodeRepeatedUIDIsMalformed(t *testing.T) {
	_, err := Decode("/INBOX;UID=1;UID=2")
	if _, ok := err.(*MalformedError); !ok {
		t.Fatalf("err = %v, want *MalformedError", err)
	}
}

func TestDecodeUnknownParamIsMalformed(t *testing.T) {
	_, err := Decode("/INBOX;UID=1;FOO=bar")
	if _, ok := err.(*MalformedError); !ok {
		t.Fatalf("err = %v, want *MalformedError", err)
	}
}

func TestDecodeMissingEqualsIsMalformed(t *testing.T) {
	_, err := Decode("/INBOX;UID")
	if _, ok := err.(*MalformedError); !ok {
		t.Fatalf("err = %v, want *MalformedError", err)
	}
}

func TestDecodeMailboxOnly(t *testing.T) {
	p, err := Decode("/INBOX")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Mailbox != "INBOX" || p.UID != "" || p.Section != "" {
		t.Errorf("got %+v", p)
	}
}

func TestDecodeCaseInsensitiveParamNames(t *testing.T) {
	p, err := Decode("/INBOX;uid=7;Section=TEXT")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.UID != "7" || p.Section != "TEXT" {
		t.Errorf("got %+v", p)
	}
}

func TestDecodePercentEncoding(t *testing.T) {
	p, err := Decode("/My%20Folder")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Mailbox != "My Folder" {
		t.Errorf("mailbox = %q, want %q", p.Mailbox, "My Folder")
	}
}

func TestDecodeTrailingSlashTrimmed(t *testing.T) {
	p, err := Decode("/INBOX/Sub/")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Mailbox != "INBOX/Sub" {
		t.Errorf("mailbox = %q", p.Mailbox)
	}
}
