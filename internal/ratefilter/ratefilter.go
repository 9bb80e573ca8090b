// Package ratefilter implements the output smoothing stage of spec
// §4.6: a continuous-time IIR low-pass followed by an optional FIR
// moving average, grounded on the original's rate-filter.h.
package ratefilter

// Filter holds the IIR state and FIR history for one vector of rates.
// The zero value is not usable; construct with New.
type Filter struct {
	tauSec float64
	useFIR bool
	firLen int

	rate    []float32
	history [][]float32
}

// New returns a Filter with time constant tauSec (seconds). When
// useFIR is true, Process additionally applies a trailing moving
// average over the last firLen frames.
func New(tauSec float64, useFIR bool, firLen int) *Filter {
	return &Filter{tauSec: tauSec, useFIR: useFIR, firLen: firLen}
}

// SetFIRSize changes the FIR window length. Only safe to call before
// the first Process call: changing it afterward would leave history
// entries from a differently-sized window mixed into the average.
func (f *Filter) SetFIRSize(n int) {
	f.firLen = n
}

// Process filters raw with elapsed time dtSec and returns the
// filtered rate. The first call initializes the IIR state to raw
// itself, matching rate-filter.h's process().
func (f *Filter) Process(raw []float32, dtSec float64) []float32 {
	if f.rate == nil {
		f.rate = append([]float32(nil), raw...)
	}

	alpha := dtSec / (f.tauSec + dtSec)
	for i, r := range raw {
		f.rate[i] += float32(alpha) * (r - f.rate[i])
	}

	if !f.useFIR {
		return f.rate
	}

	frame := append([]float32(nil), f.rate...)
	f.history = append(f.history, frame)
	if len(f.history) > f.firLen {
		f.history = f.history[1:]
	}

	avg := make([]float32, len(raw))
	for _, h := range f.history {
		for i, v := range h {
			avg[i] += v
		}
	}
	inv := 1.0 / float32(len(f.history))
	for i := range avg {
		avg[i] *= inv
	}
	return avg
}
