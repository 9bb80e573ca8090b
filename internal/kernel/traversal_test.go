package kernel

import (
	"testing"

	"github.com/tjamescouch/abnn/internal/synapse"
)

func newTestGraph() *synapse.Graph {
	g := synapse.Build(2, 2, 0, 8)
	for i := range g.Synapses {
		g.Synapses[i] = synapse.Packed{Src: uint32(i % 2), Dst: 2 + uint32(i%2), W: 0.9}
	}
	return g
}

func runPass(g *synapse.Graph, p Params, s *PassState, passIndex uint32, events, seed uint32) {
	s.Reset(1 << 30)
	for e := uint32(0); e < events; e++ {
		TraversalEvent(g.Synapses, g.LastFired, g.LastVisited, p, s, passIndex, e, seed)
	}
}

func TestTraversalEventWeightStaysInBounds(t *testing.T) {
	g := newTestGraph()
	p := Defaults()
	s := &PassState{ExploreScale: 1}
	runPass(g, p, s, 0, 500, 42)
	for i, syn := range g.Synapses {
		if syn.W < p.WMin || syn.W > p.WMax {
			t.Fatalf("synapse %d weight %v out of [%v,%v]", i, syn.W, p.WMin, p.WMax)
		}
	}
}

func TestTraversalEventDeterministic(t *testing.T) {
	p := Defaults()

	g1 := newTestGraph()
	s1 := &PassState{ExploreScale: 1}
	runPass(g1, p, s1, 3, 200, 7)

	g2 := newTestGraph()
	s2 := &PassState{ExploreScale: 1}
	runPass(g2, p, s2, 3, 200, 7)

	if s1.Clock.Load() != s2.Clock.Load() {
		t.Fatalf("clocks diverged: %d vs %d", s1.Clock.Load(), s2.Clock.Load())
	}
	for i := range g1.Synapses {
		if g1.Synapses[i].W != g2.Synapses[i].W {
			t.Fatalf("synapse %d weight diverged: %v vs %v", i, g1.Synapses[i].W, g2.Synapses[i].W)
		}
	}
	for i := range g1.LastFired {
		if g1.LastFired[i] != g2.LastFired[i] || g1.LastVisited[i] != g2.LastVisited[i] {
			t.Fatalf("neuron %d timing diverged", i)
		}
	}
}

func TestTraversalEventBudgetCapsFirings(t *testing.T) {
	g := newTestGraph()
	p := Defaults()
	s := &PassState{ExploreScale: 1}
	s.Reset(3)
	for e := uint32(0); e < 500; e++ {
		TraversalEvent(g.Synapses, g.LastFired, g.LastVisited, p, s, 0, e, 1)
	}
	fired := 0
	for _, lf := range g.LastFired {
		if lf != 0 {
			fired++
		}
	}
	if fired > 3 {
		t.Fatalf("expected at most 3 neurons to have fired under a budget of 3, got %d", fired)
	}
}
