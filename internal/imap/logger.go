package imap

import "log"

// Logger is the human-readable diagnostics collaborator from spec.md §6.
// The default implementation wraps the standard library logger with the
// same terse, unstructured density the teacher's handlers use.
type Logger interface {
	Infof(format string, args ...any)
	Failf(format string, args ...any)
}

// stdLogger adapts *log.Logger to Logger.
type stdLogger struct{ l *log.Logger }

// NewStdLogger returns a Logger backed by the standard library, matching
// the plain log.Printf style used throughout the teacher codebase.
func NewStdLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.Default()
	}
	return &stdLogger{l: l}
}

func (s *stdLogger) Infof(format string, args ...any) { s.l.Printf("imap: "+format, args...) }
func (s *stdLogger) Failf(format string, args ...any) { s.l.Printf("imap: FAIL: "+format, args...) }

// nopLogger discards everything; used when the caller passes no Logger.
type nopLogger struct{}

func (nopLogger) Infof(string, ...any) {}
func (nopLogger) Failf(string, ...any) {}
