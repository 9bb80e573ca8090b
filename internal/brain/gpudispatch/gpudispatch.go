//go:build gpu

// Package gpudispatch binds the traversal and renormalisation
// kernels, as compiled by cmd/abnngen, to a goki.dev/vgpu/v2 compute
// pipeline for production-scale eventsPerPass (SPEC_FULL §4.4, C10).
// It mirrors examples/axon/main.go's vars/sets/ComputeDispatch wiring
// exactly; the build tag matches the teacher's own limitation that
// this path needs a real Vulkan device and is never exercised by
// `go test` without one.
package gpudispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"goki.dev/vgpu/v2"

	"github.com/tjamescouch/abnn/internal/kernel"
	"github.com/tjamescouch/abnn/internal/synapse"
)

// ErrResourceFailure is spec §7's ResourceFailure kind: GPU pipeline
// or buffer creation failed. New returns it instead of a partially
// initialised Dispatcher. cmd/abnn runs on cpudispatch and does not
// call New.
var ErrResourceFailure = errors.New("gpudispatch: resource failure")

func init() {
	runtime.LockOSThread()
}

// deviceState mirrors kernel.PassState as a GPU-safe POD: the host
// struct carries atomics that have no meaning on the device, so the
// scalars are copied across this bridge type before and after every
// dispatch.
type deviceState struct {
	Clock        uint32
	SpikeBudget  int32
	Reward       float32
	RBar         float32
	Flag         uint32
	ExploreScale float32
	pad0, pad1   float32
}

// Dispatcher owns the GPU handle and pipelines for the traversal and
// renormalisation kernels. EventsPerPass and GroupSize determine the
// dispatch geometry the same way examples/axon/main.go derives nGps
// from n and gpuThreads.
type Dispatcher struct {
	EventsPerPass uint32
	GroupSize     int
	ShaderDir     string

	gp *vgpu.GPU
	sy *vgpu.System
	pl *vgpu.Pipeline

	renormSy *vgpu.System
	renormPl *vgpu.Pipeline
}

// New configures the headless compute GPU and loads the traversal and
// renormalisation pipelines from shaderDir (the output of `abnngen
// -out shaderDir`). A failure here is a spec §7 ResourceFailure: fatal
// at startup, never a partial-init state.
func New(eventsPerPass uint32, groupSize int, shaderDir string) (*Dispatcher, error) {
	if vgpu.InitNoDisplay() != nil {
		return nil, fmt.Errorf("vgpu init: %w", ErrResourceFailure)
	}
	gp := vgpu.NewComputeGPU()
	gp.Config("abnn")

	d := &Dispatcher{EventsPerPass: eventsPerPass, GroupSize: groupSize, ShaderDir: shaderDir, gp: gp}

	d.sy = gp.NewComputeSystem("abnn-traversal")
	d.pl = d.sy.NewPipeline("traversal")
	d.pl.AddShaderFile("traversal", vgpu.ComputeShader, shaderDir+"/traversal.spv")

	d.renormSy = gp.NewComputeSystem("abnn-renorm")
	d.renormPl = d.renormSy.NewPipeline("renorm")
	d.renormPl.AddShaderFile("renorm", vgpu.ComputeShader, shaderDir+"/renorm.spv")

	return d, nil
}

// Dispatch binds the graph and pass state to the traversal pipeline,
// runs EventsPerPass threads, and syncs the mutated buffers back.
func (d *Dispatcher) Dispatch(ctx context.Context, g *synapse.Graph, p kernel.Params, s *kernel.PassState) (int, error) {
	ds := deviceState{
		Clock:        s.Clock.Load(),
		SpikeBudget:  s.SpikeBudget.Load(),
		Reward:       s.Reward,
		RBar:         s.RBar,
		Flag:         uint32(s.Flag),
		ExploreScale: s.ExploreScale,
	}

	vars := d.sy.Vars()
	setParams := vars.AddSet()
	setState := vars.AddSet()
	setGraph := vars.AddSet()

	paramsVar := setParams.AddStruct("Params", int(unsafe.Sizeof(p)), 1, vgpu.Uniform, vgpu.ComputeShader)
	stateVar := setState.AddStruct("State", int(unsafe.Sizeof(ds)), 1, vgpu.Storage, vgpu.ComputeShader)
	synVar := setGraph.AddStruct("Synapses", int(unsafe.Sizeof(synapse.Packed{})), len(g.Synapses), vgpu.Storage, vgpu.ComputeShader)
	lastFiredVar := setGraph.AddStruct("LastFired", 4, len(g.LastFired), vgpu.Storage, vgpu.ComputeShader)
	lastVisitedVar := setGraph.AddStruct("LastVisited", 4, len(g.LastVisited), vgpu.Storage, vgpu.ComputeShader)

	setParams.ConfigVals(1)
	setState.ConfigVals(1)
	setGraph.ConfigVals(1)
	d.sy.Config()

	pv, _ := paramsVar.Vals.ValByIdxTry(0)
	pv.CopyFromBytes(unsafe.Pointer(&p))
	sv, _ := stateVar.Vals.ValByIdxTry(0)
	sv.CopyFromBytes(unsafe.Pointer(&ds))
	synv, _ := synVar.Vals.ValByIdxTry(0)
	synv.CopyFromBytes(unsafe.Pointer(&g.Synapses[0]))
	lfv, _ := lastFiredVar.Vals.ValByIdxTry(0)
	lfv.CopyFromBytes(unsafe.Pointer(&g.LastFired[0]))
	lvv, _ := lastVisitedVar.Vals.ValByIdxTry(0)
	lvv.CopyFromBytes(unsafe.Pointer(&g.LastVisited[0]))

	d.sy.Mem.SyncToGPU()
	vars.BindDynValIdx(0, "Params", 0)
	vars.BindDynValIdx(1, "State", 0)
	vars.BindDynValIdx(2, "Synapses", 0)
	vars.BindDynValIdx(3, "LastFired", 0)
	vars.BindDynValIdx(4, "LastVisited", 0)

	nGps := (int(d.EventsPerPass) + d.GroupSize - 1) / d.GroupSize
	cmd := d.sy.ComputeCmdBuff()
	d.sy.CmdResetBindVars(cmd, 0)
	d.pl.ComputeDispatch(cmd, nGps, 1, 1)
	d.sy.ComputeCmdEnd(cmd)
	d.sy.ComputeSubmitWait(cmd)

	d.sy.Mem.SyncValIdxFmGPU(1, "State", 0)
	sv.CopyToBytes(unsafe.Pointer(&ds))
	d.sy.Mem.SyncValIdxFmGPU(2, "Synapses", 0)
	synv.CopyToBytes(unsafe.Pointer(&g.Synapses[0]))
	d.sy.Mem.SyncValIdxFmGPU(3, "LastFired", 0)
	lfv.CopyToBytes(unsafe.Pointer(&g.LastFired[0]))
	d.sy.Mem.SyncValIdxFmGPU(4, "LastVisited", 0)
	lvv.CopyToBytes(unsafe.Pointer(&g.LastVisited[0]))

	s.Clock.Store(ds.Clock)
	s.SpikeBudget.Store(ds.SpikeBudget)

	fired := 0
	for _, lf := range g.LastFired {
		if lf == ds.Clock {
			fired++
		}
	}
	return fired, nil
}

// Renormalise binds the graph to the renorm pipeline and runs one
// thread per neuron.
func (d *Dispatcher) Renormalise(ctx context.Context, g *synapse.Graph, offset uint32) {
	vars := d.renormSy.Vars()
	set := vars.AddSet()
	lastFiredVar := set.AddStruct("LastFired", 4, len(g.LastFired), vgpu.Storage, vgpu.ComputeShader)
	lastVisitedVar := set.AddStruct("LastVisited", 4, len(g.LastVisited), vgpu.Storage, vgpu.ComputeShader)
	set.ConfigVals(1)
	d.renormSy.Config()

	lfv, _ := lastFiredVar.Vals.ValByIdxTry(0)
	lfv.CopyFromBytes(unsafe.Pointer(&g.LastFired[0]))
	lvv, _ := lastVisitedVar.Vals.ValByIdxTry(0)
	lvv.CopyFromBytes(unsafe.Pointer(&g.LastVisited[0]))

	d.renormSy.Mem.SyncToGPU()
	vars.BindDynValIdx(0, "LastFired", 0)
	vars.BindDynValIdx(1, "LastVisited", 0)

	cmd := d.renormSy.ComputeCmdBuff()
	d.renormSy.CmdResetBindVars(cmd, 0)
	d.renormPl.ComputeDispatch(cmd, len(g.LastFired), 1, 1)
	d.renormSy.ComputeCmdEnd(cmd)
	d.renormSy.ComputeSubmitWait(cmd)

	d.renormSy.Mem.SyncValIdxFmGPU(0, "LastFired", 0)
	lfv.CopyToBytes(unsafe.Pointer(&g.LastFired[0]))
	d.renormSy.Mem.SyncValIdxFmGPU(1, "LastVisited", 0)
	lvv.CopyToBytes(unsafe.Pointer(&g.LastVisited[0]))
}

// Close releases the GPU systems and handle, mirroring
// examples/axon/main.go's sy.Destroy()/gp.Destroy()/vgpu.Terminate().
func (d *Dispatcher) Close() {
	d.sy.Destroy()
	d.renormSy.Destroy()
	d.gp.Destroy()
	vgpu.Terminate()
}
