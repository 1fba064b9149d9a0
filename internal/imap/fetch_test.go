package imap

import (
	"bytes"
	"testing"

	"imapfetch/internal/models"
)

func newFetchConn(tr *fakeTransport) (*Conn, *bytes.Buffer, *models.Progress) {
	var body bytes.Buffer
	progress := &models.Progress{}
	c := NewConn(tr, "mail.example.com", 0, TLSNone, Credentials{}, nil)
	c.req = &Request{
		Mailbox: "INBOX", UID: "1", Transfer: TransferBody,
		Progress: progress, Sink: WriterSink{W: &body},
	}
	c.state = stateFetch
	return c, &body, progress
}

func TestHandleFetchUntagged_NotALiteral(t *testing.T) {
	c, _, _ := newFetchConn(newFakeTransport())
	done, err := c.handleFetchUntagged("* 1 FETCH (FLAGS (\\Seen))")
	if done || err != nil {
		t.Fatalf("done=%v err=%v, want the non-literal line to be ignored", done, err)
	}
}

func TestHandleFetchUntagged_ZeroSizeShortCircuits(t *testing.T) {
	c, body, progress := newFetchConn(newFakeTransport())
	done, err := c.handleFetchUntagged("* 1 FETCH (BODY[] {0}")
	if err != nil || !done {
		t.Fatalf("done=%v err=%v, want a zero-size literal to finish immediately", done, err)
	}
	if body.Len() != 0 {
		t.Errorf("body = %q, want empty", body.String())
	}
	if progress.DownloadSize != 0 {
		t.Errorf("DownloadSize = %d, want 0", progress.DownloadSize)
	}
}

func TestHandleFetchUntagged_FullyCached(t *testing.T) {
	c, body, progress := newFetchConn(newFakeTransport())
	c.framer.feed([]byte("Hello World)\r\nA001 OK FETCH completed\r\n"))

	done, err := c.handleFetchUntagged("* 1 FETCH (BODY[] {11}")
	if err != nil || !done {
		t.Fatalf("done=%v err=%v, want the fully-cached literal to finish in one call", done, err)
	}
	if body.String() != "Hello World" {
		t.Errorf("body = %q, want %q", body.String(), "Hello World")
	}
	if progress.DownloadSize != 11 || progress.BytesSoFar != 11 {
		t.Errorf("progress = %+v, want 11/11", progress)
	}
	if c.pendingBodyBytes != 0 {
		t.Errorf("pendingBodyBytes = %d, want 0", c.pendingBodyBytes)
	}
}

func TestHandleFetchUntagged_PartialCache_EntersRawBodyMode(t *testing.T) {
	tr := newFakeTransport()
	c, body, progress := newFetchConn(tr)
	// Only 5 of the literal's 11 bytes arrived in the same read as the
	// FETCH line; the rest is still in flight on the socket.
	c.framer.feed([]byte("Hello"))

	done, err := c.handleFetchUntagged("* 1 FETCH (BODY[] {11}")
	if err != nil || done {
		t.Fatalf("done=%v err=%v, want the engine to switch into raw-body mode instead of finishing", done, err)
	}
	if c.pendingBodyBytes != 6 {
		t.Fatalf("pendingBodyBytes = %d, want 6", c.pendingBodyBytes)
	}
	if body.String() != "Hello" {
		t.Fatalf("body = %q after the cached portion, want %q", body.String(), "Hello")
	}

	tr.feed(" World")
	for c.pendingBodyBytes > 0 {
		if _, err := c.stepRawBody(); err != nil {
			t.Fatalf("stepRawBody: %v", err)
		}
	}
	if body.String() != "Hello World" {
		t.Errorf("body = %q, want %q", body.String(), "Hello World")
	}
	if progress.DownloadSize != 11 || progress.BytesSoFar != 11 {
		t.Errorf("progress = %+v, want 11/11", progress)
	}
}

func TestHandleFetchUntagged_MalformedLiteral(t *testing.T) {
	c, _, _ := newFetchConn(newFakeTransport())
	done, err := c.handleFetchUntagged("* 1 FETCH (BODY[] {")
	if !done || err == nil {
		t.Fatalf("done=%v err=%v, want a malformed-literal error", done, err)
	}
}

func TestHandleFetchUntagged_NonNumericSize(t *testing.T) {
	c, _, _ := newFetchConn(newFakeTransport())
	done, err := c.handleFetchUntagged("* 1 FETCH (BODY[] {abc}")
	if !done || err == nil {
		t.Fatalf("done=%v err=%v, want a non-numeric-size error", done, err)
	}
}

func TestHandleFetchUntagged_TransferInfoDiscardsBody(t *testing.T) {
	c, body, _ := newFetchConn(newFakeTransport())
	c.req.Transfer = TransferInfo
	c.framer.feed([]byte("Hello World)\r\n"))

	done, err := c.handleFetchUntagged("* 1 FETCH (BODY[] {11}")
	if err != nil || !done {
		t.Fatalf("done=%v err=%v", done, err)
	}
	if body.Len() != 0 {
		t.Errorf("body = %q, want untouched when Transfer == TransferInfo", body.String())
	}
}
