package kernel

import "testing"

func TestRenormEventPreservesNeverAndRebasesOthers(t *testing.T) {
	lastFired := []uint32{0, 100, 5000}
	lastVisited := []uint32{0, 4999, 5001}
	offset := uint32(5000)

	for i := range lastFired {
		RenormEvent(lastFired, lastVisited, uint32(i), offset)
	}

	want := []struct{ fired, visited uint32 }{
		{0, 0},
		{0, 0},
		{0, 1},
	}
	for i, w := range want {
		if lastFired[i] != w.fired {
			t.Errorf("lastFired[%d] = %d, want %d", i, lastFired[i], w.fired)
		}
		if lastVisited[i] != w.visited {
			t.Errorf("lastVisited[%d] = %d, want %d", i, lastVisited[i], w.visited)
		}
	}
}

func TestRenormClockSubtractsOffset(t *testing.T) {
	s := &PassState{}
	s.Clock.Store(10_000)
	RenormClock(s, 4_000)
	if got := s.Clock.Load(); got != 6_000 {
		t.Fatalf("clock = %d, want 6000", got)
	}
}
