package kernel

import (
	"math"
	"sync/atomic"

	"github.com/tjamescouch/abnn/internal/synapse"
	"github.com/tjamescouch/abnn/slbool"
	"github.com/tjamescouch/abnn/slrand"
)

//gosl: start traversal

// TraversalEvent executes one Monte-Carlo event of the traversal pass
// (spec §4.2, steps 1-7): edge selection, clock advance, visit
// recording, fire decision, firing effect and STDP weight update. It
// touches exactly one synapse and is safe to run concurrently with
// any number of other events against the same graph; clock,
// lastVisited, lastFired and the edge weight are all updated
// atomically. eventIndex and passIndex are the thread's coordinates
// within the dispatch; together with seed they are the entire input
// to the RNG, so the result is a pure function of them (spec §5: RNG
// output never depends on wall-clock or goroutine scheduling order).
// The result is slbool.Bool, not a plain bool: this is the one
// traversal-kernel value that crosses the CPU/GPU dispatch boundary as
// an output rather than an input.
func TraversalEvent(syn []synapse.Packed, lastFired, lastVisited []uint32, p Params, s *PassState, passIndex, eventIndex, seed uint32) (fired slbool.Bool) {
	counter := slrand.Uint2{X: passIndex, Y: eventIndex}
	edgeIdx := slrand.RandUint32(counter, seed) % uint32(len(syn))
	fireDraw := slrand.RandFloat(counter, seed+1)

	e := &syn[edgeIdx]
	src, dst := e.Src, e.Dst

	now := s.AdvanceClock()

	oldVisited := atomic.LoadUint32(&lastVisited[dst])
	atomic.StoreUint32(&lastVisited[dst], now)

	dtSpike := now - atomic.LoadUint32(&lastFired[src])
	dtVisit := now - oldVisited

	visitFactor := float32(math.Exp(-float64(dtVisit) / float64(p.TauVisit)))
	pFire := e.W * visitFactor * s.ExploreScale

	fire := dtSpike < uint32(p.TauPre) && fireDraw < pFire
	if fire && !s.TakeSpike() {
		fire = false
	}
	if fire {
		atomic.StoreUint32(&lastFired[dst], now)
	}
	fired = slbool.FromBool(fire)

	alphaLTP, alphaLTD := p.AlphaLTP, p.AlphaLTD
	if s.Flag == PassReward {
		rEff := s.Reward - s.RBar
		alphaLTP = p.AlphaLTP * max32(0, rEff)
		alphaLTD = p.AlphaLTD * max32(0, -rEff)
	}

	potentiate := dtSpike < uint32(p.TauPre)
	alpha := alphaLTD
	if potentiate {
		alpha = alphaLTP
	}
	atomicApplySTDP(&e.W, potentiate, alpha, p.WMin, p.WMax)
	return fired
}

//gosl: end traversal
