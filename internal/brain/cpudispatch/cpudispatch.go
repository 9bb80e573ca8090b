// Package cpudispatch runs the traversal and renormalisation kernels
// across goroutines, giving a fully-testable, deterministic execution
// path that the training harness uses by default (SPEC_FULL §4.4,
// C9), grounded on the teacher's own CPU fan-out in
// examples/axon/main.go.
package cpudispatch

import (
	"context"
	"sync/atomic"

	"github.com/emer/gosl/v2/threading"

	"github.com/tjamescouch/abnn/internal/kernel"
	"github.com/tjamescouch/abnn/internal/synapse"
	"github.com/tjamescouch/abnn/slbool"
)

// Dispatcher fans a pass's events out across goroutines. EventsPerPass
// is the number of independent traversal events per Dispatch call;
// NThreads is the number of goroutines threading.ParallelRun spawns;
// Seed is the fixed per-engine RNG seed that, together with the pass
// index and event index, makes every event's random draws a pure
// function of its coordinates (spec §5, P4 determinism).
type Dispatcher struct {
	EventsPerPass uint32
	NThreads      int
	Seed          uint32

	passIndex uint32
}

// New returns a Dispatcher ready to drive eventsPerPass events per
// pass across nThreads goroutines.
func New(eventsPerPass uint32, nThreads int, seed uint32) *Dispatcher {
	return &Dispatcher{EventsPerPass: eventsPerPass, NThreads: nThreads, Seed: seed}
}

// Dispatch runs one pass of EventsPerPass traversal events. With
// NThreads == 1 the pass runs single-goroutine, in ascending event
// order, which is the configuration the testable-properties suite
// (spec §8) exercises for provable determinism; larger NThreads trade
// that ordering guarantee for throughput, matching spec §5(a)'s "no
// ordering between threads beyond atomic operations".
func (d *Dispatcher) Dispatch(ctx context.Context, g *synapse.Graph, p kernel.Params, s *kernel.PassState) (int, error) {
	passIndex := atomic.AddUint32(&d.passIndex, 1) - 1
	var fired int64
	nThreads := d.NThreads
	if nThreads < 1 {
		nThreads = 1
	}
	threading.ParallelRun(func(st, ed int) {
		var local int64
		for e := st; e < ed; e++ {
			if slbool.IsTrue(kernel.TraversalEvent(g.Synapses, g.LastFired, g.LastVisited, p, s, passIndex, uint32(e), d.Seed)) {
				local++
			}
		}
		atomic.AddInt64(&fired, local)
	}, int(d.EventsPerPass), nThreads)
	return int(fired), nil
}

// Renormalise runs one RenormEvent per neuron across goroutines.
func (d *Dispatcher) Renormalise(ctx context.Context, g *synapse.Graph, offset uint32) {
	nThreads := d.NThreads
	if nThreads < 1 {
		nThreads = 1
	}
	threading.ParallelRun(func(st, ed int) {
		for ni := st; ni < ed; ni++ {
			kernel.RenormEvent(g.LastFired, g.LastVisited, uint32(ni), offset)
		}
	}, int(g.N), nThreads)
}
