// Package stimulus implements the StimulusProvider boundary of spec
// §6.3 and its BlockSchedule provider, grounded on the original's
// stimulus-provider.h and functional-dataset.cpp.
package stimulus

import "math"

// Provider is the StimulusProvider boundary of spec §6.3.
type Provider interface {
	NextInput() []float32
	NextExpected() []float32
	Time() float64
}

// Block holds one constant output target, held for Passes passes, as
// the harness's block-schedule cursor of spec §4.5 cycles through.
type Block struct {
	Target float32
	Passes int
}

// BlockSchedule cycles through a list of constant target blocks,
// deriving NextInput from an analytic sine sweep across the input
// vector's spatial index, exactly as the original's FunctionalDataset
// did for bring-up before MNIST/text datasets (out of scope, per
// spec.md's Non-goals on dataset loaders).
type BlockSchedule struct {
	blocks  []Block
	nInput  int
	nOutput int

	dtSec  float64
	freqHz float64

	phase float64
	tSec  float64

	blockIdx       int
	inBlockCounter int
}

// NewBlockSchedule builds a schedule over blocks, producing nInput-
// wide input frames sampled every dtSec seconds from a freqHz sine
// sweep, and nOutput-wide expected frames broadcasting each block's
// target value.
func NewBlockSchedule(blocks []Block, nInput, nOutput int, dtSec, freqHz float64) *BlockSchedule {
	return &BlockSchedule{blocks: blocks, nInput: nInput, nOutput: nOutput, dtSec: dtSec, freqHz: freqHz}
}

// NextInput advances the sine sweep's phase and returns a fresh
// [0,1]-valued input frame, matching FunctionalDataset::next().
func (b *BlockSchedule) NextInput() []float32 {
	b.phase += b.freqHz * b.dtSec
	if b.phase > 1.0 {
		b.phase -= 1.0
	}
	b.tSec += b.dtSec

	v := make([]float32, b.nInput)
	for i := 0; i < b.nInput; i++ {
		x := float64(i) / float64(b.nInput)
		s := math.Sin(2.0 * math.Pi * (x + b.phase))
		v[i] = float32(0.5 * (s + 1.0))
	}
	return v
}

// NextExpected returns the current block's target value broadcast
// over every output, then advances the block cursor by one pass,
// wrapping to the next block when the current one is exhausted.
func (b *BlockSchedule) NextExpected() []float32 {
	if len(b.blocks) == 0 {
		return nil
	}
	target := b.blocks[b.blockIdx].Target

	b.inBlockCounter++
	if b.inBlockCounter >= b.blocks[b.blockIdx].Passes {
		b.inBlockCounter = 0
		b.blockIdx = (b.blockIdx + 1) % len(b.blocks)
	}

	out := make([]float32, b.nOutput)
	for i := range out {
		out[i] = target
	}
	return out
}

// Time returns the monotone stimulus clock in seconds.
func (b *BlockSchedule) Time() float64 { return b.tSec }
