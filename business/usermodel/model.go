package usermodel

import (
	"fmt"
	"math/rand"
)

// Params are the generative-model coefficients. They come validated from the
// simulation config.
type Params struct {
	NumProducts int
	LatentDim   int
	UserStddev  float64
	ClickScale  float64
	ClickBias   float64
}

// Model owns the stochastic rules of user behavior: organic browsing choices
// and the click model. Product embeddings are drawn once, deterministically
// from the configured seed, so two models built from the same seed are
// identical.
type Model struct {
	params     Params
	embeddings [][]float64 // NumProducts x LatentDim
}

func New(params Params, seed int64) (*Model, error) {
	if params.NumProducts <= 0 {
		return nil, fmt.Errorf("usermodel: num products must be positive, got %d", params.NumProducts)
	}
	if params.LatentDim <= 0 {
		return nil, fmt.Errorf("usermodel: latent dim must be positive, got %d", params.LatentDim)
	}
	if params.UserStddev <= 0 {
		return nil, fmt.Errorf("usermodel: user stddev must be positive, got %g", params.UserStddev)
	}

	rng := rand.New(rand.NewSource(DeriveSeed(seed, "product-embeddings")))

	embeddings := make([][]float64, params.NumProducts)
	for k := range embeddings {
		row := make([]float64, params.LatentDim)
		for d := range row {
			row[d] = rng.NormFloat64()
		}
		embeddings[k] = row
	}

	return &Model{
		params:     params,
		embeddings: embeddings,
	}, nil
}

// UserState is the per-episode latent affinity vector. Sampled once at
// reset, discarded with the episode.
type UserState struct {
	Omega []float64
}

// SampleUserState draws a fresh latent vector from the episode stream.
func (m *Model) SampleUserState(rng *rand.Rand) UserState {
	omega := make([]float64, m.params.LatentDim)
	for d := range omega {
		omega[d] = rng.NormFloat64() * m.params.UserStddev
	}
	return UserState{Omega: omega}
}

// OrganicDistribution is the softmax over embedding affinities the user
// browses from.
func (m *Model) OrganicDistribution(u UserState) []float64 {
	scores := make([]float64, m.params.NumProducts)
	for k, emb := range m.embeddings {
		scores[k] = dot(emb, u.Omega)
	}
	return softmax(scores)
}

// SampleNextOrganic picks the next organically-viewed product.
func (m *Model) SampleNextOrganic(u UserState, rng *rand.Rand) int {
	return sampleMultinomial(m.OrganicDistribution(u), rng)
}

// ClickProbability is the logistic click model: a deterministic function of
// the latent state and the product, not of time.
func (m *Model) ClickProbability(u UserState, productIndex int) float64 {
	affinity := dot(m.embeddings[productIndex], u.Omega)
	return sigmoid(m.params.ClickScale*affinity + m.params.ClickBias)
}

// SampleClick is the Bernoulli draw over ClickProbability, returning 0 or 1.
func (m *Model) SampleClick(u UserState, productIndex int, rng *rand.Rand) float64 {
	if rng.Float64() < m.ClickProbability(u, productIndex) {
		return 1
	}
	return 0
}

func (m *Model) NumProducts() int {
	return m.params.NumProducts
}
