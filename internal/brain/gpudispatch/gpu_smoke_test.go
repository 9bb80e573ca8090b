//go:build gpu

package gpudispatch

import (
	"context"
	"testing"

	"github.com/tjamescouch/abnn/internal/kernel"
	"github.com/tjamescouch/abnn/internal/synapse"
)

// TestGPUDispatchSmoke requires a real Vulkan device and compiled
// shaders at ../../../shaders (the output of cmd/abnngen). It checks
// that one GPU pass runs and reports a non-negative firing count; it
// does not compare the result with the CPU dispatcher. It is never
// run by plain `go test ./...`.
func TestGPUDispatchSmoke(t *testing.T) {
	g := synapse.Build(4, 4, 0, 16)
	for i := range g.Synapses {
		g.Synapses[i] = synapse.Packed{Src: uint32(i % 4), Dst: 4 + uint32(i%4), W: 0.8}
	}
	p := kernel.Defaults()
	s := &kernel.PassState{ExploreScale: 1}
	s.Reset(1 << 16)

	d, err := New(1000, 64, "../../../shaders")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	fired, err := d.Dispatch(context.Background(), g, p, s)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if fired < 0 {
		t.Fatalf("fired = %d, want >= 0", fired)
	}
}
