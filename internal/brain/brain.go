// Package brain hosts the Brain bridge between the training harness
// and a traversal/renormalisation dispatcher, matching spec §4.4.
package brain

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/tjamescouch/abnn/internal/kernel"
	"github.com/tjamescouch/abnn/internal/persistence"
	"github.com/tjamescouch/abnn/internal/synapse"
)

// ErrShapeMismatch is returned by Load when a model file's header
// disagrees with the shape of the brain it is being loaded into
// (spec §7's ShapeMismatch kind); the caller should fall back to a
// freshly-built random graph rather than treat this as fatal.
var ErrShapeMismatch = persistence.ErrShapeMismatch

// renormThreshold is the clock value that triggers a renormalisation
// dispatch immediately after traversal (spec §6.5's kRenormThreshold).
const renormThreshold = 0xE000_0000

// outputWindow is the fixed W of spec §4.4's read_outputs rule,
// resolved in SPEC_FULL §4.4: the simplest, most conservative choice
// consistent with invariant I4.
const outputWindow = 1

// Dispatcher runs one pass of traversal events, and a renormalisation
// pass, against a graph. cpudispatch and gpudispatch are the two
// implementations; Brain's logic (budget reset, renorm chaining,
// output windowing) is identical over either.
type Dispatcher interface {
	Dispatch(ctx context.Context, g *synapse.Graph, p kernel.Params, s *kernel.PassState) (fired int, err error)
	Renormalise(ctx context.Context, g *synapse.Graph, offset uint32)
}

// Brain owns a synapse graph, the traversal parameters and per-pass
// state, and the dispatcher that actually runs events against them.
type Brain struct {
	Graph  *synapse.Graph
	Params kernel.Params
	State  kernel.PassState

	dispatcher Dispatcher
	rng        *rand.Rand
}

// New builds a Brain over an already-constructed graph. The caller is
// responsible for randomising the graph's weights (or loading a saved
// one) before the first Step.
func New(g *synapse.Graph, p kernel.Params, d Dispatcher, rng *rand.Rand) *Brain {
	b := &Brain{
		Graph:      g,
		Params:     p,
		dispatcher: d,
		rng:        rng,
	}
	b.State.ExploreScale = 1
	return b
}

// InjectInputs implements spec §4.4's inject_inputs: for each input
// neuron i, with probability hz*tickSeconds*vec[i], set lastFired[i]
// to the current clock. Must be called before Step for the pass it
// affects.
func (b *Brain) InjectInputs(vec []float32, hz, tickSeconds float32) {
	now := b.State.Clock.Load()
	for i := uint32(0); i < b.Graph.NInput && int(i) < len(vec); i++ {
		p := hz * tickSeconds * vec[i]
		if b.rng.Float32() < p {
			b.Graph.LastFired[i] = now
		}
	}
}

// ForceOutputFire implements the teacher-forcing half of spec §4.5
// step 5: for output neuron o, with probability p and provided the
// neuron has not fired within the last tick, force lastFired[o] to
// the current clock.
func (b *Brain) ForceOutputFire(o int, p float32) {
	idx := b.Graph.NInput + uint32(o)
	now := b.State.Clock.Load()
	if now-b.Graph.LastFired[idx] <= 1 {
		return
	}
	if b.rng.Float32() < p {
		b.Graph.LastFired[idx] = now
	}
}

// Step implements spec §4.4's encode_traversal: reset the spike
// budget, dispatch one pass of traversal events, and chain a
// renormalisation dispatch if the clock is approaching its wrap
// point. Named Step rather than EncodeTraversal per SPEC_FULL §4.4's
// idiomatic-Go renaming.
func (b *Brain) Step(ctx context.Context, eventsPerPass uint32) (fired int, err error) {
	b.State.Reset(int32(b.Params.KMaxSpikes))
	fired, err = b.dispatcher.Dispatch(ctx, b.Graph, b.Params, &b.State)
	if err != nil {
		return fired, fmt.Errorf("brain: dispatch: %w", err)
	}
	if b.State.Clock.Load() > renormThreshold {
		offset := b.State.Clock.Load()
		b.dispatcher.Renormalise(ctx, b.Graph, offset)
		kernel.RenormClock(&b.State, offset)
	}
	return fired, nil
}

// ReadOutputs implements spec §4.4's read_outputs: output neuron o
// "fired this pass" iff lastFired[nInput+o] falls within the last W
// ticks of the current clock.
func (b *Brain) ReadOutputs() []bool {
	now := b.State.Clock.Load()
	out := make([]bool, b.Graph.NOutput)
	for o := uint32(0); o < b.Graph.NOutput; o++ {
		lf := b.Graph.LastFired[b.Graph.NInput+o]
		out[o] = lf != 0 && now-lf < outputWindow
	}
	return out
}

// Save writes the model in the format of spec §6.1.
func (b *Brain) Save(w io.Writer) error {
	return persistence.Save(w, b.Graph)
}

// Load reads the model format of spec §6.1, verifying that the
// header agrees with this Brain's constructed shape. On a shape
// mismatch it returns ErrShapeMismatch and leaves the graph
// untouched, so the caller can fall back to a fresh random graph
// exactly as spec §6.1 prescribes.
func (b *Brain) Load(r io.Reader) error {
	return persistence.Load(r, b.Graph)
}
