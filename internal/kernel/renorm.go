package kernel

import "sync/atomic"

//gosl: start renorm

// RenormEvent rebases a single neuron's timing entries against offset
// (spec §4.3): values at or below offset collapse to 0 ("never"),
// preserving that sentinel; values above offset shift down by it.
// Safe to run once per neuron, in parallel, with no ordering
// requirement between neurons.
func RenormEvent(lastFired, lastVisited []uint32, neuronIndex, offset uint32) {
	lf := atomic.LoadUint32(&lastFired[neuronIndex])
	if lf > offset {
		atomic.StoreUint32(&lastFired[neuronIndex], lf-offset)
	} else {
		atomic.StoreUint32(&lastFired[neuronIndex], 0)
	}

	lv := atomic.LoadUint32(&lastVisited[neuronIndex])
	if lv > offset {
		atomic.StoreUint32(&lastVisited[neuronIndex], lv-offset)
	} else {
		atomic.StoreUint32(&lastVisited[neuronIndex], 0)
	}
}

//gosl: end renorm

// RenormClock rebases the pass-level clock by offset, the one update
// in the renorm dispatch that is not per-neuron (spec §4.3: "clock -=
// offset"). It must only run after every RenormEvent call for this
// dispatch has completed, since offset is captured from the
// pre-renorm clock value.
func RenormClock(s *PassState, offset uint32) {
	s.Clock.Add(-offset)
}
