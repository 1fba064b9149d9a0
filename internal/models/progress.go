// Package models holds the small, dependency-free state structs shared
// between internal/imap and its callers — mirroring the teacher's own
// internal/models package, which keeps connection-scoped state as a plain
// struct of fields rather than behind an interface.
package models

// Progress is the collaborator named in spec.md §6: SetDownloadSize is
// called from the FETCH body handoff as soon as the "{SIZE}" literal is
// parsed, or with 0 when FETCH completes without a literal; AddBytes is
// called for every chunk handed to the body sink afterwards.
type Progress struct {
	DownloadSize int
	BytesSoFar   int
}

func (p *Progress) SetDownloadSize(n int) { p.DownloadSize = n }
func (p *Progress) AddBytes(k int)        { p.BytesSoFar += k }
