package imap

import "imapfetch/internal/transport"

// fakeTransport is the non-blocking analogue of the teacher's MockConn
// (test/helpers/test_helpers.go): a scripted byte source on the read side
// and a captured byte sink on the write side. Where MockConn reports
// net.ErrClosed once its read buffer is exhausted (it models a connection
// that has nothing left to say), fakeTransport reports
// transport.ErrWouldBlock instead, matching the non-blocking Transport
// contract the engine actually drives — there may be more to read later,
// it just isn't here yet.
type fakeTransport struct {
	toClient   []byte
	fromClient []byte
	closed     bool

	upgraded     bool
	handshakeErr error
	handshakeOK  bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{}
}

// feed appends bytes the "server" will hand back on the next Read calls.
func (f *fakeTransport) feed(s string) {
	f.toClient = append(f.toClient, s...)
}

func (f *fakeTransport) Read(p []byte) (int, error) {
	if len(f.toClient) == 0 {
		return 0, transport.ErrWouldBlock
	}
	n := copy(p, f.toClient)
	f.toClient = f.toClient[n:]
	return n, nil
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.fromClient = append(f.fromClient, p...)
	return len(p), nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

// Upgrade completes the handshake immediately unless the test has set
// handshakeErr, mirroring a clean/failed TLS negotiation without an actual
// socket.
func (f *fakeTransport) Upgrade(serverName string) error {
	f.upgraded = true
	f.handshakeOK = true
	return nil
}

func (f *fakeTransport) HandshakeDone() (bool, error) {
	if !f.upgraded {
		return true, nil
	}
	return f.handshakeOK, f.handshakeErr
}

// written returns and clears everything the engine has sent so far, for
// assertions that want to inspect one command at a time.
func (f *fakeTransport) written() string {
	s := string(f.fromClient)
	f.fromClient = nil
	return s
}
