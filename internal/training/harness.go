// Package training implements the per-pass training harness of spec
// §4.5: stimulus injection, teacher forcing, the GPU pass, smoothed
// loss, reward write-back, and teacher-rate annealing. It generalises
// the original's TrainingManager's isTraining_ singleton flag into an
// explicit, non-global Harness per spec.md §9's redesign note.
package training

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/tjamescouch/abnn/internal/brain"
	"github.com/tjamescouch/abnn/internal/kernel"
	"github.com/tjamescouch/abnn/internal/ratefilter"
	"github.com/tjamescouch/abnn/internal/stimulus"
	"github.com/tjamescouch/abnn/internal/tracelog"
)

// Config holds the tunables of spec §6.5 that govern the harness loop
// (as opposed to kernel.Params, which governs the traversal kernel).
type Config struct {
	EventsPerPass uint32

	InputRateHz float32
	TickSeconds float32

	WLoss               int
	KGain, RClip        float32
	ExploreAnnealFactor float32
	ExploreFloor        float32
	ExploreWarmupPasses int

	PeakDecay float32

	DiagnosticWindow    int
	DiagnosticThreshold float32
	TeacherRateDecay    float32
	TeacherRateFloor    float32

	LogEvery int

	RBarBeta float32
}

// DefaultConfig returns the tunables of spec §6.5's "typical" column.
func DefaultConfig(eventsPerPass uint32, nOutput int) Config {
	return Config{
		EventsPerPass:       eventsPerPass,
		InputRateHz:         1000,
		TickSeconds:         0.001,
		WLoss:               1000,
		KGain:               40,
		RClip:               0.3,
		ExploreAnnealFactor: 0.99997,
		ExploreFloor:        0.30,
		ExploreWarmupPasses: 2000,
		PeakDecay:           0.999,
		DiagnosticWindow:    1000,
		DiagnosticThreshold: 2.0,
		TeacherRateDecay:    0.9,
		TeacherRateFloor:    0.05,
		LogEvery:            100,
		RBarBeta:            0.98,
	}
}

// Harness owns the per-run training state of spec §4.5: the
// block-schedule cursor lives inside the stimulus.Provider; everything
// else (teacherRate, exploreScale, sliding loss window, diagnostic
// accumulators, rate filter) lives here.
type Harness struct {
	cfg   Config
	brain *brain.Brain
	stim  stimulus.Provider
	rng   *rand.Rand

	filter *ratefilter.Filter
	loss   tracelog.LossTracker
	tracer *tracelog.Tracer

	teacherRate  float32
	exploreScale float32
	rewardPasses int
	passCount    int

	maxObserved []float32
	spikeWindow []float32
	winPos      int
	lastLoss    float32

	teacherWeightDelta float32
	rewardWeightDelta  float32
	prevWeightSum      float32
}

// New builds a Harness over an already-constructed Brain. teacherRate
// and exploreScale start at 1, per spec's "ceiling" framing of
// teacherRate and exploreScale's upper bound.
func New(cfg Config, b *brain.Brain, stim stimulus.Provider, rng *rand.Rand, tracer *tracelog.Tracer) *Harness {
	nOutput := int(b.Graph.NOutput)
	return &Harness{
		cfg:          cfg,
		brain:        b,
		stim:         stim,
		rng:          rng,
		filter:       ratefilter.New(0.02, true, 20),
		tracer:       tracer,
		teacherRate:  1,
		exploreScale: 1,
		lastLoss:     0.25,
		maxObserved:  make([]float32, nOutput),
		spikeWindow:  make([]float32, nOutput),
		prevWeightSum: weightSum(b),
	}
}

func weightSum(b *brain.Brain) float32 {
	var sum float32
	for _, s := range b.Graph.Synapses {
		sum += abs32(s.W)
	}
	return sum
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Step runs one pass of spec §4.5's algorithm.
func (h *Harness) Step(ctx context.Context) error {
	input := h.stim.NextInput()
	expected := h.stim.NextExpected()

	h.brain.InjectInputs(input, h.cfg.InputRateHz, h.cfg.TickSeconds)

	target := float32(0)
	if len(expected) > 0 {
		target = expected[0]
	}
	if target < h.teacherRate {
		h.teacherRate = target
	}

	flag := kernel.PassTeacher
	if h.teacherRate <= 0.05 {
		flag = kernel.PassReward
		h.rewardPasses++
		if h.rewardPasses > h.cfg.ExploreWarmupPasses {
			h.exploreScale *= h.cfg.ExploreAnnealFactor
			if h.exploreScale < h.cfg.ExploreFloor {
				h.exploreScale = h.cfg.ExploreFloor
			}
		}
	}

	for o := range expected {
		p := expected[o] * h.teacherRate
		h.brain.ForceOutputFire(o, p)
	}

	h.brain.State.Flag = flag
	h.brain.State.ExploreScale = h.exploreScale

	if _, err := h.brain.Step(ctx, h.cfg.EventsPerPass); err != nil {
		return fmt.Errorf("training: step: %w", err)
	}

	h.accumulateWeightDelta(flag)

	fired := h.brain.ReadOutputs()
	raw := make([]float32, len(fired))
	for i, f := range fired {
		if f {
			raw[i] = 1
		}
	}
	smoothed := h.filter.Process(raw, float64(h.cfg.TickSeconds))

	normalized := make([]float32, len(smoothed))
	for i, v := range smoothed {
		if v > h.maxObserved[i] {
			h.maxObserved[i] = v
		} else {
			h.maxObserved[i] *= h.cfg.PeakDecay
		}
		if h.maxObserved[i] > 1e-6 {
			normalized[i] = v / h.maxObserved[i]
		}
	}

	for i, v := range normalized {
		h.spikeWindow[i] += v
	}
	h.winPos++

	if h.winPos >= h.cfg.WLoss {
		var sq float32
		for i, sum := range h.spikeWindow {
			avg := sum / float32(h.winPos)
			want := float32(0)
			if i < len(expected) {
				want = expected[i]
			}
			d := avg - want
			sq += d * d
		}
		lossVal := sq / float32(len(h.spikeWindow))

		reward := h.cfg.KGain * (h.lastLoss - lossVal) / (h.teacherRate + 0.02)
		if reward > h.cfg.RClip {
			reward = h.cfg.RClip
		} else if reward < -h.cfg.RClip {
			reward = -h.cfg.RClip
		}
		h.brain.State.Reward = reward
		h.brain.State.RBar = h.cfg.RBarBeta*h.brain.State.RBar + (1-h.cfg.RBarBeta)*reward

		ema := h.loss.Observe(lossVal)
		if h.tracer != nil {
			h.tracer.WriteFrame(expected, normalized)
		}

		h.lastLoss = lossVal
		for i := range h.spikeWindow {
			h.spikeWindow[i] = 0
		}
		h.winPos = 0

		_ = ema
	}

	h.passCount++
	if h.passCount%h.cfg.DiagnosticWindow == 0 {
		h.runDiagnosticWindow()
	}
	if h.passCount%h.cfg.LogEvery == 0 {
		tracelog.LogPassComplete(h.passCount, h.lastLoss, h.loss.EMA(), h.teacherRate, h.exploreScale)
	}

	return nil
}

func (h *Harness) accumulateWeightDelta(flag kernel.PassFlag) {
	cur := weightSum(h.brain)
	delta := abs32(cur - h.prevWeightSum)
	if flag == kernel.PassTeacher {
		h.teacherWeightDelta += delta
	} else {
		h.rewardWeightDelta += delta
	}
	h.prevWeightSum = cur
}

// runDiagnosticWindow implements spec §4.5 step 9: if reward-driven
// weight churn dominates teacher-driven churn, the teacher rate's
// ceiling is pulled down so exploration has room to consolidate.
func (h *Harness) runDiagnosticWindow() {
	if h.teacherWeightDelta > 0 {
		ratio := h.rewardWeightDelta / h.teacherWeightDelta
		if ratio >= h.cfg.DiagnosticThreshold {
			h.teacherRate *= h.cfg.TeacherRateDecay
			if h.teacherRate < h.cfg.TeacherRateFloor {
				h.teacherRate = h.cfg.TeacherRateFloor
			}
		}
	}
	h.teacherWeightDelta = 0
	h.rewardWeightDelta = 0
}

// TeacherRate returns the harness's current teacher-forcing ceiling.
func (h *Harness) TeacherRate() float32 { return h.teacherRate }

// ExploreScale returns the harness's current exploration scale.
func (h *Harness) ExploreScale() float32 { return h.exploreScale }

// LastLoss returns the most recently computed sliding-window loss.
func (h *Harness) LastLoss() float32 { return h.lastLoss }
