package distance

import "math"

// LogEpsilon is the floor added inside the logarithm of LogSimilarity.
const LogEpsilon = 1e-5

// LogSimilarity maps every dot product d in scores, in place, to
// log((1+d)/2 + LogEpsilon). For unit vectors (1+d)/2 lies in [0, 1]; a
// negative value can only come from unnormalised input and is clamped to 0 so
// the result stays finite.
func LogSimilarity(scores []float32) {
	for i, d := range scores {
		shifted := (1 + float64(d)) / 2
		if shifted < 0 {
			shifted = 0
		}
		scores[i] = float32(math.Log(shifted + LogEpsilon))
	}
}
