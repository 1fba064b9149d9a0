package imap

import "fmt"

// ErrorCode names the taxonomy surfaced by the protocol engine. Callers
// should compare with errors.Is against the sentinel values below rather
// than switching on the string form.
type ErrorCode int

const (
	// ErrCodeOK is never attached to an error; it exists so ErrorCode's
	// zero value reads as "no failure" in logs.
	ErrCodeOK ErrorCode = iota
	ErrCodeOutOfMemory
	ErrCodeURLMalformed
	ErrCodeWeirdServerReply
	ErrCodeUseSSLFailed
	ErrCodeLoginDenied
	ErrCodeUnsupportedProtocol
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOutOfMemory:
		return "OUT_OF_MEMORY"
	case ErrCodeURLMalformed:
		return "URL_MALFORMAT"
	case ErrCodeWeirdServerReply:
		return "WEIRD_SERVER_REPLY"
	case ErrCodeUseSSLFailed:
		return "USE_SSL_FAILED"
	case ErrCodeLoginDenied:
		return "LOGIN_DENIED"
	case ErrCodeUnsupportedProtocol:
		return "UNSUPPORTED_PROTOCOL"
	default:
		return "OK"
	}
}

// Error wraps an underlying cause with one of the taxonomy codes. The
// connection is always considered closable once one of these escapes the
// engine.
type Error struct {
	Code  ErrorCode
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("imap: %s: %s: %v", e.Code, e.Msg, e.Cause)
	}
	return fmt.Sprintf("imap: %s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same code, so callers
// can write errors.Is(err, imap.ErrLoginDenied) against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newErr(code ErrorCode, msg string, cause error) *Error {
	return &Error{Code: code, Msg: msg, Cause: cause}
}

// Sentinels matched via errors.Is; Cause/Msg are ignored by Is, only Code.
var (
	ErrOutOfMemory         = &Error{Code: ErrCodeOutOfMemory}
	ErrURLMalformed        = &Error{Code: ErrCodeURLMalformed}
	ErrWeirdServerReply    = &Error{Code: ErrCodeWeirdServerReply}
	ErrUseSSLFailed        = &Error{Code: ErrCodeUseSSLFailed}
	ErrLoginDenied         = &Error{Code: ErrCodeLoginDenied}
	ErrUnsupportedProtocol = &Error{Code: ErrCodeUnsupportedProtocol}
)
