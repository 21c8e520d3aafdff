package eval

import (
	"math"
	"math/rand"
	"sort"
)

// bootstrapCI resamples per-user outcomes with replacement, computes the
// pooled CTR of each replicate, and reads the median and the 2.5th/97.5th
// percentiles off the sorted replicates. lower <= median <= upper holds by
// construction.
func bootstrapCI(outcomes []userOutcome, samples int, rng *rand.Rand) (median, lower, upper float64) {
	if len(outcomes) == 0 || samples <= 0 {
		return 0, 0, 0
	}

	replicates := make([]float64, samples)
	n := len(outcomes)

	for b := range replicates {
		clicks, displays := 0, 0
		for i := 0; i < n; i++ {
			o := outcomes[rng.Intn(n)]
			clicks += o.clicks
			displays += o.displays
		}

		if displays > 0 {
			replicates[b] = float64(clicks) / float64(displays)
		}
	}

	sort.Float64s(replicates)

	return percentile(replicates, 50), percentile(replicates, 2.5), percentile(replicates, 97.5)
}

// percentile is nearest-rank over an already sorted slice.
func percentile(sorted []float64, p float64) float64 {
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
