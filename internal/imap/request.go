package imap

import "imapfetch/internal/models"

// Transfer selects whether FETCH asks for the body or only metadata,
// per spec.md §3.
type Transfer int

const (
	TransferBody Transfer = iota
	TransferInfo
)

// Request is the request-scoped state of spec.md §3, one per message
// fetch. It is created fresh for each Do call and discarded by Done —
// "freed exactly once" (Invariant 4) is trivially true in Go since there's
// no manual free, but Done still clears it so a Conn can't be reused
// across fetches with stale request state.
type Request struct {
	Mailbox     string
	UIDValidity string
	UID         string
	Section     string
	Transfer    Transfer

	Progress *models.Progress
	Sink     BodySink
}

// BodySink is the raw-transfer write path of spec.md §6.
type BodySink interface {
	WriteBody(p []byte) (int, error)
}

// WriterSink adapts any io.Writer to BodySink.
type WriterSink struct{ W interface{ Write([]byte) (int, error) } }

func (s WriterSink) WriteBody(p []byte) (int, error) { return s.W.Write(p) }

// TeeSink fans a body out to several sinks, stopping at the first error.
// Used to drive both the caller's primary sink and the optional
// S3-backed blobstore sink (SPEC_FULL.md §9) without the engine knowing
// about more than one BodySink.
type TeeSink struct{ Sinks []BodySink }

func (t TeeSink) WriteBody(p []byte) (int, error) {
	for _, s := range t.Sinks {
		if _, err := s.WriteBody(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
