package models

import "testing"

func TestProgressZeroValue(t *testing.T) {
	var p Progress
	if p.DownloadSize != 0 {
		t.Errorf("expected DownloadSize 0 by default")
	}
	if p.BytesSoFar != 0 {
		t.Errorf("expected BytesSoFar 0 by default")
	}
}

func TestProgressAccumulates(t *testing.T) {
	var p Progress
	p.SetDownloadSize(100)
	p.AddBytes(30)
	p.AddBytes(70)

	if p.DownloadSize != 100 {
		t.Errorf("DownloadSize = %d, want 100", p.DownloadSize)
	}
	if p.BytesSoFar != 100 {
		t.Errorf("BytesSoFar = %d, want 100", p.BytesSoFar)
	}
}
