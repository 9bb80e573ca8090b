package kernel

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// atomicApplySTDP performs the clamp-and-store half of spec §4.2 step
// 6: read the current weight, apply either the LTP or LTD update,
// clamp to [wMin, wMax], and retry on contention so the final store is
// atomic regardless of how many other events touch the same edge
// concurrently (spec §5: "weight updates use atomic clamp-and-store").
func atomicApplySTDP(w *float32, potentiate bool, alpha, wMin, wMax float32) {
	addr := (*uint32)(unsafe.Pointer(w))
	for {
		oldBits := atomic.LoadUint32(addr)
		oldW := math.Float32frombits(oldBits)
		var newW float32
		if potentiate {
			newW = oldW + alpha*(wMax-oldW)
		} else {
			newW = oldW - alpha*(oldW-wMin)
		}
		if newW < wMin {
			newW = wMin
		}
		if newW > wMax {
			newW = wMax
		}
		newBits := math.Float32bits(newW)
		if atomic.CompareAndSwapUint32(addr, oldBits, newBits) {
			return
		}
	}
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
