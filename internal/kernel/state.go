package kernel

import "sync/atomic"

// PassState is the global, per-pass mutable state the traversal kernel
// reads and writes. Clock and SpikeBudget are accessed with atomic
// read-modify-write from every event thread (CPU goroutines or GPU
// lanes); Reward, RBar, Flag and ExploreScale are written once by the
// host before a pass is dispatched and only read during it, so plain
// fields suffice for them.
type PassState struct {
	Clock       atomic.Uint32
	SpikeBudget atomic.Int32

	Reward       float32
	RBar         float32
	Flag         PassFlag
	ExploreScale float32
}

// Reset reinitialises the per-pass budget to kMaxSpikes, as step 6 of
// spec §4.4's encode_traversal requires before every dispatch.
func (s *PassState) Reset(maxSpikes int32) {
	s.SpikeBudget.Store(maxSpikes)
}

// TakeSpike atomically decrements the spike budget and reports
// whether a firing is still permitted (spec §4.2 step 4: "if
// atomic_fetch_sub(spikeBudget, 1) <= 0 abort fire"). Note the
// fetch-sub semantics: the pre-decrement value is what's tested.
func (s *PassState) TakeSpike() bool {
	prev := s.SpikeBudget.Add(-1) + 1
	return prev > 0
}

// AdvanceClock atomically increments the virtual clock and returns the
// new value, the "now" every event bases its decision on.
func (s *PassState) AdvanceClock() uint32 {
	return s.Clock.Add(1)
}
