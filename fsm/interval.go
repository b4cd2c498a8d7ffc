package fsm

import (
	"math/rand"

	"github.com/milk9111/npcbrain/common"
)

// Interval is the re-evaluation period. A random interval is resampled
// uniformly in [Min, Max) after every evaluation; a fixed one always waits
// Min.
type Interval struct {
	Min    float64
	Max    float64
	Random bool
}

func FixedInterval(seconds float64) Interval {
	return Interval{Min: seconds, Max: seconds}
}

func RandomInterval(min, max float64) Interval {
	if max < min {
		min, max = max, min
	}
	return Interval{Min: min, Max: max, Random: true}
}

func (iv Interval) Sample(r *rand.Rand) float64 {
	if !iv.Random {
		return max(iv.Min, 0)
	}
	return max(common.RandRange(r, iv.Min, iv.Max), 0)
}
