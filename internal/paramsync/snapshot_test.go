package paramsync

import (
	"testing"

	"github.com/muurk/wave/internal/painter"
)

func TestSnapshotStoreMonotonic(t *testing.T) {
	s := NewSnapshotStore(5)

	p := painter.Defaults()
	if !s.Add(p, 3, "first") {
		t.Fatal("Add(seq=3) rejected on empty store")
	}

	tests := []struct {
		seq  uint64
		want bool
	}{
		{2, false},
		{3, false},
		{7, true},
		{5, false},
		{8, true},
	}
	for _, tt := range tests {
		p.Speed = float64(tt.seq)
		if got := s.Add(p, tt.seq, ""); got != tt.want {
			t.Errorf("Add(seq=%d) = %v, want %v", tt.seq, got, tt.want)
		}
	}

	latest, ok := s.Latest()
	if !ok || latest.Seq != 8 || latest.Params.Speed != 8 {
		t.Errorf("Latest() = %+v, %v", latest, ok)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestSnapshotStoreBounded(t *testing.T) {
	s := NewSnapshotStore(3)
	for seq := uint64(1); seq <= 10; seq++ {
		s.Add(painter.Defaults(), seq, "")
	}

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("All() has %d entries, want 3", len(all))
	}
	for i, want := range []uint64{8, 9, 10} {
		if all[i].Seq != want {
			t.Errorf("All()[%d].Seq = %d, want %d", i, all[i].Seq, want)
		}
	}
}

func TestSnapshotStoreIsolation(t *testing.T) {
	s := NewSnapshotStore(0)
	p := painter.Defaults()
	s.Add(p, 1, "mount")

	p.SecondaryColors[0] = painter.RGB(1, 2, 3)
	latest, _ := s.Latest()
	if latest.Params.SecondaryColors[0] == painter.RGB(1, 2, 3) {
		t.Error("store shares the caller's palette")
	}

	all := s.All()
	all[0].Params.Painter = "changed"
	if latest, _ := s.Latest(); latest.Params.Painter == "changed" {
		t.Error("All() exposes stored snapshots")
	}
}

func TestSnapshotStoreEmpty(t *testing.T) {
	s := NewSnapshotStore(2)
	if _, ok := s.Latest(); ok {
		t.Error("Latest() on empty store returned ok")
	}
	if len(s.All()) != 0 {
		t.Error("All() on empty store is not empty")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"live", ModeLive, false},
		{" Manual ", ModeManual, false},
		{"auto", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}
