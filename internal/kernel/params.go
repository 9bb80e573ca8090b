package kernel

import "github.com/tjamescouch/abnn/sltype"

// PassFlag distinguishes a teacher-forced pass from a reward-modulated
// one; passed to the traversal kernel as a plain scalar so the same
// code path (CPU or GPU) branches on it at step 7 (reward modulation).
type PassFlag uint32

const (
	PassTeacher PassFlag = 0
	PassReward  PassFlag = 1
)

// Params holds the traversal kernel's compile-time-tunable constants
// (spec §6.5). It is POD: all fields are GPU-safe scalars, the same
// struct is bound unchanged on the CPU and GPU dispatch paths.
type Params struct {
	TauVisit   sltype.Float
	TauPre     sltype.Float
	AlphaLTP   sltype.Float
	AlphaLTD   sltype.Float
	WMin       sltype.Float
	WMax       sltype.Float
	KMaxSpikes sltype.Float
	pad1       sltype.Float
}

// Defaults returns the tunables table of spec §6.5, in the teacher's
// convention of a Defaults method rather than a package-level struct
// literal (examples/axon/layer.go's ActParams.Defaults). KMaxSpikes is
// the per-pass firing budget (I5/P1/S3) — distinct from eventsPerPass,
// the GPU traversal-thread count a caller picks independently.
func Defaults() Params {
	return Params{
		TauVisit:   40000,
		TauPre:     20000,
		AlphaLTP:   0.04,
		AlphaLTD:   0.02,
		WMin:       0.001,
		WMax:       1.0,
		KMaxSpikes: 256,
	}
}
