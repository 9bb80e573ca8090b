package kernel

import "math"

//gosl: start traversal

// visitFactor computes the decay applied to a fire probability based on
// how recently dst was last visited.
func visitFactor(dtVisit uint32, tauVisit float32) float32 {
	return float32(math.Exp(-float64(dtVisit) / float64(tauVisit)))
}

//gosl: end traversal

// note: only the traversal decision needs to cross into the shader

func defaults() float32 {
	return 1
}
