package imap

import (
	"bytes"

	"imapfetch/internal/transport"
)

// framer buffers inbound bytes and yields complete CRLF-terminated lines.
// It is single-owner: the engine is the only caller. Bytes received after
// a line's CRLF stay in buf for the next line until claimCache moves them
// into cache, so the FETCH body handoff (§4.6) can drain them before
// reading more from the socket.
type framer struct {
	buf   []byte // bytes read but not yet split into a line
	cache []byte // bytes moved out of buf by claimCache, not yet drained

	sendBuf  []byte // full bytes of the last Send, including any unsent tail
	sendLeft int    // bytes of sendBuf not yet written
}

func newFramer() *framer {
	return &framer{}
}

// feed appends newly read transport bytes to the internal buffer.
func (f *framer) feed(p []byte) {
	f.buf = append(f.buf, p...)
}

// nextLine extracts one CRLF-terminated line from the buffered bytes, with
// the CR and LF stripped. ok is false when no full line is available yet.
// Bytes after the line stay in buf for the next nextLine call.
func (f *framer) nextLine() (line string, ok bool) {
	idx := bytes.Index(f.buf, []byte("\r\n"))
	if idx < 0 {
		return "", false
	}
	line = string(f.buf[:idx])
	f.buf = f.buf[idx+2:]
	return line, true
}

// claimCache moves whatever is currently sitting in buf into cache. The
// FETCH handler calls this right after reading the untagged FETCH line, so
// any literal bytes that arrived in the same read as that line become
// available to drainCache instead of being mistaken for the start of the
// next line.
func (f *framer) claimCache() {
	if len(f.buf) > 0 {
		f.cache = append(f.cache, f.buf...)
		f.buf = nil
	}
}

// drainCache hands up to max bytes of cache to sink, in cache order,
// removing them from cache. It returns how many bytes were written.
func (f *framer) drainCache(sink func([]byte) (int, error), max int) (int, error) {
	if max <= 0 || len(f.cache) == 0 {
		return 0, nil
	}
	n := max
	if n > len(f.cache) {
		n = len(f.cache)
	}
	written, err := sink(f.cache[:n])
	f.cache = f.cache[written:]
	return written, err
}

// queueSend records bytes (with a CRLF appended) to be written by flush.
func (f *framer) queueSend(body []byte) {
	f.sendBuf = append(append([]byte{}, body...), '\r', '\n')
	f.sendLeft = len(f.sendBuf)
}

// flush writes as much of the queued send buffer as the transport accepts
// without blocking. sendLeft becomes 0 once everything has been written.
func (f *framer) flush(w func([]byte) (int, error)) error {
	for f.sendLeft > 0 {
		off := len(f.sendBuf) - f.sendLeft
		n, err := w(f.sendBuf[off:])
		f.sendLeft -= n
		if err != nil {
			if err == transport.ErrWouldBlock {
				return nil
			}
			return err
		}
		if n == 0 {
			return nil
		}
	}
	return nil
}
