// Package persistence implements the model.bnn binary format of spec
// §6.1: a little-endian header (nSyn, nNeuron) followed by the raw
// packed synapse array. There is no third-party binary-codec library
// anywhere in the retrieved examples, so this uses stdlib
// encoding/binary directly (documented in DESIGN.md).
package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/tjamescouch/abnn/internal/synapse"
)

// ErrShapeMismatch is returned by Load when the file's header
// disagrees with the shape of the graph passed in; spec §6.1: "the
// caller then falls back to a fresh random graph."
var ErrShapeMismatch = errors.New("persistence: model file shape does not match constructed graph")

// ErrIOFailure is the sentinel for spec §7's IOFailure kind: the model
// or trace file could not be opened. Callers wrap the underlying
// os.Open/os.Create error with this sentinel so the non-fatal
// "log and continue" policy can be expressed as errors.Is(err,
// persistence.ErrIOFailure) at the call site.
var ErrIOFailure = errors.New("persistence: io failure")

// Save writes g's synapse array in the format of spec §6.1.
func Save(w io.Writer, g *synapse.Graph) error {
	if err := binary.Write(w, binary.LittleEndian, g.NSyn); err != nil {
		return fmt.Errorf("persistence: write nSyn: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, g.N); err != nil {
		return fmt.Errorf("persistence: write nNeuron: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, g.Synapses); err != nil {
		return fmt.Errorf("persistence: write synapses: %w", err)
	}
	return nil
}

// Load reads a model file and, if its header matches g's shape,
// overwrites g.Synapses in place. On a shape mismatch it returns
// ErrShapeMismatch and leaves g untouched.
func Load(r io.Reader, g *synapse.Graph) error {
	var nSyn, n uint32
	if err := binary.Read(r, binary.LittleEndian, &nSyn); err != nil {
		return fmt.Errorf("persistence: read nSyn: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("persistence: read nNeuron: %w", err)
	}
	if nSyn != g.NSyn || n != g.N {
		return ErrShapeMismatch
	}
	syn := make([]synapse.Packed, nSyn)
	if err := binary.Read(r, binary.LittleEndian, syn); err != nil {
		return fmt.Errorf("persistence: read synapses: %w", err)
	}
	check := &synapse.Graph{N: n, NSyn: nSyn, Synapses: syn}
	if err := check.Validate(); err != nil {
		return fmt.Errorf("persistence: load: %w", err)
	}
	g.Synapses = syn
	return nil
}
