package usermodel

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
)

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// softmax with max-subtraction for numerical stability.
func softmax(scores []float64) []float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	out := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func sampleMultinomial(probs []float64, rng *rand.Rand) int {
	u := rng.Float64()
	acc := 0.0
	for i, p := range probs {
		acc += p
		if u < acc {
			return i
		}
	}
	// floating-point slack lands on the last bucket
	return len(probs) - 1
}

// SamplePoisson draws from Poisson(mean) via Knuth's method. Fine for the
// small means used here.
func SamplePoisson(rng *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}

	l := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		k++
		p *= rng.Float64()
		if p <= l {
			return k - 1
		}
	}
}

// DeriveSeed deterministically hashes a base seed and a label into an
// independent sub-stream seed.
func DeriveSeed(base int64, label string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s|seed=%d", label, base)))
	return int64(h.Sum64())
}
