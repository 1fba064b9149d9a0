package imap

import (
	"strconv"
	"strings"
	"time"

	"imapfetch/internal/transport"
)

// handleFetchUntagged implements the FETCH body handoff, spec.md §4.6: scan
// the untagged FETCH line for its {SIZE} literal marker, drain whatever body
// bytes the framer already cached past that line's CRLF, and, if bytes
// remain, switch the engine into raw-body mode so Step reads the rest
// straight off the transport instead of looking for more lines.
//
// Reading further lines before draining the cache would stall forever or
// silently drop bytes — the cache exists precisely to prevent that.
func (c *Conn) handleFetchUntagged(line string) (bool, error) {
	open := strings.IndexByte(line, '{')
	if open < 0 {
		// Not a literal-bearing FETCH line (e.g. FLAGS); ignore it.
		return false, nil
	}
	shut := strings.IndexByte(line[open:], '}')
	if shut < 0 {
		return c.fail(weirdErr("FETCH response has malformed literal marker"))
	}
	size, err := strconv.ParseUint(line[open+1:open+shut], 10, 32)
	if err != nil {
		return c.fail(weirdErr("FETCH literal size is not numeric"))
	}

	c.framer.claimCache()

	req := c.req
	remaining := int(size)
	if req.Progress != nil {
		req.Progress.SetDownloadSize(remaining)
	}

	for remaining > 0 {
		n, werr := c.framer.drainCache(c.writeBody, remaining)
		if werr != nil {
			return c.fail(transportErr(werr))
		}
		if req.Progress != nil && n > 0 {
			req.Progress.AddBytes(n)
		}
		remaining -= n
		if n == 0 {
			break
		}
	}

	if remaining == 0 {
		c.state = stateStop
		return true, nil
	}

	c.pendingBodyBytes = remaining
	c.state = stateStop
	return false, nil
}

// writeBody forwards body bytes to the request's sink, or discards them when
// the caller only asked for metadata (Transfer == TransferInfo).
func (c *Conn) writeBody(p []byte) (int, error) {
	if c.req.Transfer != TransferBody || c.req.Sink == nil {
		return len(p), nil
	}
	return c.req.Sink.WriteBody(p)
}

// stepRawBody reads directly off the transport while pendingBodyBytes is
// outstanding — the socket no longer belongs to the line-oriented framer.
func (c *Conn) stepRawBody() (bool, error) {
	if !c.timeoutAt.IsZero() && time.Now().After(c.timeoutAt) {
		return c.fail(timeoutErr())
	}

	want := c.pendingBodyBytes
	if want > 4096 {
		want = 4096
	}
	buf := make([]byte, want)
	n, err := c.transport.Read(buf)
	if n > 0 {
		if _, werr := c.writeBody(buf[:n]); werr != nil {
			return c.fail(transportErr(werr))
		}
		if c.req.Progress != nil {
			c.req.Progress.AddBytes(n)
		}
		c.pendingBodyBytes -= n
	}
	if err != nil && err != transport.ErrWouldBlock {
		return c.fail(transportErr(err))
	}
	if c.pendingBodyBytes == 0 {
		c.timeoutAt = time.Time{}
		return true, nil
	}
	return false, nil
}
