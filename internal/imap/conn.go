package imap

import (
	"time"

	"imapfetch/internal/sasl"
	"imapfetch/internal/transport"
)

// TLSMode controls how aggressively the engine pursues TLS.
type TLSMode int

const (
	// TLSOpportunistic upgrades via STARTTLS when the server advertises
	// it, but proceeds in clear text otherwise.
	TLSOpportunistic TLSMode = iota
	// TLSRequired fails with ErrUseSSLFailed if STARTTLS is unavailable
	// or is refused.
	TLSRequired
	// TLSNone never attempts STARTTLS (used for plain, intentionally-insecure
	// connections; imaps:// dials use TLSImplicit).
	TLSNone
	// TLSImplicit marks a connection that was already TLS-wrapped before
	// Connect was called (imaps://); CAPABILITY never offers STARTTLS
	// again and ssldone starts true.
	TLSImplicit
)

// Credentials carries the username/password the engine authenticates
// with. An empty User means "no credentials configured" — per spec.md
// §4.5, the engine then skips authentication entirely and stops once
// CAPABILITY (and any TLS upgrade) completes.
type Credentials struct {
	User string
	Pass string
}

// Conn is the connection-scoped state of spec.md §3, one per TCP/TLS
// connection. Its fields are deliberately plain (no accessor methods)
// following the teacher's ClientState struct-of-fields convention.
type Conn struct {
	transport transport.Transport
	framer    *framer
	logger    Logger

	identity int // connection identity used to derive the tag letter
	cmdid    int
	resptag  string

	state state

	authmechs     mechBitset
	authused      Mechanism
	tlsSupported  bool
	loginDisabled bool
	irSupported   bool
	ssldone       bool

	tlsMode  TLSMode
	host     string
	creds    Credentials
	mech     sasl.Mechanism // set once a mechanism has been selected
	respTODO bool           // not set by the engine; always false

	closable bool // true once any fatal error has been observed

	req *Request

	respTimeout      time.Duration
	timeoutAt        time.Time
	sendErr          error
	pendingBodyBytes int // remaining raw body bytes once the engine has left line mode
}

// NewConn constructs a connection-scoped engine state around an already
// dialed Transport. host is used both as the SASL digest-uri/TLS
// ServerName and for STARTTLS's re-handshake.
func NewConn(t transport.Transport, host string, identity int, mode TLSMode, creds Credentials, logger Logger) *Conn {
	if logger == nil {
		logger = nopLogger{}
	}
	c := &Conn{
		transport: t,
		framer:    newFramer(),
		logger:    logger,
		identity:  identity,
		resptag:   "*",
		state:     stateServerGreet,
		tlsMode:   mode,
		host:      host,
		creds:     creds,
	}
	if mode == TLSImplicit {
		c.ssldone = true
	}
	return c
}

// Closable reports whether the connection should be torn down rather than
// reused, per spec.md §3 Invariant 1 and §7's failure semantics.
func (c *Conn) Closable() bool { return c.closable }

func (c *Conn) markClosable() { c.closable = true }

// nextTag increments cmdid modulo 1000 and recomputes resptag, per
// spec.md §4.3.
func (c *Conn) nextTag() string {
	c.cmdid = (c.cmdid + 1) % 1000
	c.resptag = formatTag(c.identity, c.cmdid)
	return c.resptag
}
