package cpudispatch

import (
	"context"
	"testing"

	"github.com/tjamescouch/abnn/internal/kernel"
	"github.com/tjamescouch/abnn/internal/synapse"
)

func newTestGraph() *synapse.Graph {
	g := synapse.Build(4, 4, 0, 64)
	for i := range g.Synapses {
		g.Synapses[i] = synapse.Packed{
			Src: uint32(i % 4),
			Dst: 4 + uint32(i%4),
			W:   0.8,
		}
	}
	return g
}

func TestDispatchSingleThreadIsDeterministic(t *testing.T) {
	p := kernel.Defaults()

	run := func() (*synapse.Graph, *kernel.PassState) {
		g := newTestGraph()
		s := &kernel.PassState{ExploreScale: 1}
		s.Reset(1 << 20)
		d := New(1000, 1, 99)
		if _, err := d.Dispatch(context.Background(), g, p, s); err != nil {
			t.Fatalf("Dispatch: %v", err)
		}
		return g, s
	}

	g1, s1 := run()
	g2, s2 := run()

	if s1.Clock.Load() != s2.Clock.Load() {
		t.Fatalf("clock diverged: %d vs %d", s1.Clock.Load(), s2.Clock.Load())
	}
	for i := range g1.Synapses {
		if g1.Synapses[i].W != g2.Synapses[i].W {
			t.Fatalf("synapse %d weight diverged", i)
		}
	}
}

func TestDispatchReportsFiredCount(t *testing.T) {
	g := newTestGraph()
	p := kernel.Defaults()
	s := &kernel.PassState{ExploreScale: 1}
	s.Reset(5)
	d := New(2000, 4, 1)
	fired, err := d.Dispatch(context.Background(), g, p, s)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if fired < 0 || fired > 5 {
		t.Fatalf("fired = %d, want in [0,5] given budget 5", fired)
	}
}

func TestRenormaliseRebasesTimestamps(t *testing.T) {
	g := newTestGraph()
	for i := range g.LastFired {
		g.LastFired[i] = 10_000
		g.LastVisited[i] = 10_000
	}
	d := New(1, 4, 1)
	d.Renormalise(context.Background(), g, 6_000)
	for i, lf := range g.LastFired {
		if lf != 4_000 {
			t.Fatalf("LastFired[%d] = %d, want 4000", i, lf)
		}
	}
}
