// Package synapse owns the packed edge array and per-neuron timing
// state shared by the traversal and renormalisation kernels.
package synapse

import (
	"fmt"
	"math/rand/v2"
)

// Packed is a directed edge, 16 bytes, laid out to match the on-disk
// and on-GPU formats exactly. Pad is reserved; kernel code never
// writes it.
type Packed struct {
	Src, Dst uint32
	W, Pad   float32
}

// Interval is an inclusive [Lo, Hi] weight range used at construction
// time; Pad fields are always zeroed, never sampled.
type Interval struct {
	Lo, Hi float32
}

// Graph owns the synapse array and the per-neuron timing arrays that
// the traversal kernel reads and writes. Once Build has run,
// NInput, NOutput, NHidden and NSyn are immutable; reallocation
// requires constructing a new Graph.
type Graph struct {
	NInput, NOutput, NHidden uint32
	N                        uint32 // NInput + NOutput + NHidden
	NSyn                     uint32

	Synapses []Packed

	// LastFired[i] / LastVisited[i] are virtual-tick timestamps, 0
	// meaning "never". Stored as uint32 so the traversal kernel can
	// atomically increment/compare/store them without conversion.
	LastFired   []uint32
	LastVisited []uint32
}

// Build allocates a zeroed Graph of the given shape. Weights are not
// randomised; call RandomiseDenseIOPlusSparseHidden afterward to fill
// them in.
func Build(nIn, nOut, nHidden, nSyn uint32) *Graph {
	n := nIn + nOut + nHidden
	return &Graph{
		NInput:      nIn,
		NOutput:     nOut,
		NHidden:     nHidden,
		N:           n,
		NSyn:        nSyn,
		Synapses:    make([]Packed, nSyn),
		LastFired:   make([]uint32, n),
		LastVisited: make([]uint32, n),
	}
}

// RandomiseDenseIOPlusSparseHidden fills the dense nIn×nOut prefix of
// the synapse array (one edge per (input, output) pair, weights drawn
// from denseIO) followed by random hidden↔hidden edges filling the
// remainder (weights drawn from sparseHidden). If nSyn is smaller than
// nIn*nOut, only the first nSyn dense edges are written. rng is the
// host-side seeding source; it is independent of the kernel's
// per-event Philox RNG, which governs traversal, not construction.
func (g *Graph) RandomiseDenseIOPlusSparseHidden(rng *rand.Rand, denseIO, sparseHidden Interval) {
	idx := 0
	for i := uint32(0); i < g.NInput && idx < len(g.Synapses); i++ {
		for o := uint32(0); o < g.NOutput && idx < len(g.Synapses); o++ {
			g.Synapses[idx] = Packed{
				Src: i,
				Dst: g.NInput + o,
				W:   sampleUniform(rng, denseIO),
			}
			idx++
		}
	}
	if g.NHidden == 0 {
		for ; idx < len(g.Synapses); idx++ {
			g.Synapses[idx] = Packed{W: sampleUniform(rng, sparseHidden)}
		}
		return
	}
	hiddenLo := g.NInput + g.NOutput
	for ; idx < len(g.Synapses); idx++ {
		g.Synapses[idx] = Packed{
			Src: hiddenLo + uint32(rng.IntN(int(g.NHidden))),
			Dst: hiddenLo + uint32(rng.IntN(int(g.NHidden))),
			W:   sampleUniform(rng, sparseHidden),
		}
	}
}

func sampleUniform(rng *rand.Rand, iv Interval) float32 {
	return iv.Lo + rng.Float32()*(iv.Hi-iv.Lo)
}

// Validate checks invariant I1 (src, dst < N for every edge). It is
// called at construction/load boundaries only, never during a pass.
func (g *Graph) Validate() error {
	for i, s := range g.Synapses {
		if s.Src >= g.N || s.Dst >= g.N {
			return fmt.Errorf("synapse %d: src=%d dst=%d out of range for N=%d", i, s.Src, s.Dst, g.N)
		}
	}
	return nil
}
