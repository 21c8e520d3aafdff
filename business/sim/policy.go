package sim

import (
	"fmt"
	"math/rand"

	"recosim/business/usermodel"
	"recosim/domain"
)

// Policy names accepted by config and the evaluation API.
const (
	PolicyUniform    = "uniform"
	PolicyPopularity = "popularity"
)

// Policy is the capability contract for anything that produces actions: a
// training hook fed offline log tuples and a decision hook queried online.
// Any conforming value is accepted, there is no class hierarchy.
type Policy interface {
	Train(obs domain.Observation, action *domain.Action, reward *float64, done bool)
	Act(obs domain.Observation, reward *float64, done bool) (*domain.Action, error)
}

// Snapshotter is the optional capability that lets the evaluation harness
// hand each parallel worker its own policy copy.
type Snapshotter interface {
	Snapshot() Policy
}

// NewPolicy builds one of the built-in baselines by name.
func NewPolicy(name string, numProducts int, seed int64) (Policy, error) {
	switch name {
	case PolicyUniform:
		return NewUniformPolicy(numProducts, seed), nil
	case PolicyPopularity:
		return NewPopularityPolicy(numProducts, seed), nil
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalidConfiguration, name)
	}
}

// NewDefaultPolicy builds the same logging policy an environment with this
// config uses internally for StepOffline. Driving an environment online with
// it reproduces the offline trace for the same seed.
func NewDefaultPolicy(cfg Config) (Policy, error) {
	return NewPolicy(cfg.DefaultPolicy, cfg.NumProducts, usermodel.DeriveSeed(cfg.RandomSeed, "logging-policy"))
}

// UniformPolicy recommends uniformly at random. It is the environment's
// default logging policy: its propensities are exact, which makes offline
// logs usable for importance-weighted evaluation.
type UniformPolicy struct {
	numProducts int
	seed        int64
	rng         *rand.Rand
	snapshots   int64
}

func NewUniformPolicy(numProducts int, seed int64) *UniformPolicy {
	return &UniformPolicy{
		numProducts: numProducts,
		seed:        seed,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (p *UniformPolicy) Train(obs domain.Observation, action *domain.Action, reward *float64, done bool) {
}

func (p *UniformPolicy) Act(obs domain.Observation, reward *float64, done bool) (*domain.Action, error) {
	idx := p.rng.Intn(p.numProducts)

	prop := 1.0 / float64(p.numProducts)
	perAction := make([]float64, p.numProducts)
	for i := range perAction {
		perAction[i] = prop
	}

	return &domain.Action{
		ProductIndex:        idx,
		Propensity:          prop,
		PropensityPerAction: perAction,
	}, nil
}

func (p *UniformPolicy) Snapshot() Policy {
	p.snapshots++
	sub := usermodel.DeriveSeed(p.seed, fmt.Sprintf("snapshot-%d", p.snapshots))
	return NewUniformPolicy(p.numProducts, sub)
}

// PopularityPolicy recommends proportionally to organic view counts with
// Laplace smoothing. The simplest baseline that actually uses the training
// hook.
type PopularityPolicy struct {
	numProducts int
	seed        int64
	rng         *rand.Rand
	counts      []float64
	total       float64
	snapshots   int64
}

func NewPopularityPolicy(numProducts int, seed int64) *PopularityPolicy {
	return &PopularityPolicy{
		numProducts: numProducts,
		seed:        seed,
		rng:         rand.New(rand.NewSource(seed)),
		counts:      make([]float64, numProducts),
	}
}

func (p *PopularityPolicy) Train(obs domain.Observation, action *domain.Action, reward *float64, done bool) {
	for _, ev := range obs {
		if ev.Kind != domain.EventOrganic {
			continue
		}
		p.counts[ev.ProductIndex]++
		p.total++
	}
}

func (p *PopularityPolicy) Act(obs domain.Observation, reward *float64, done bool) (*domain.Action, error) {
	// keep learning from what the user just browsed
	p.Train(obs, nil, reward, done)

	perAction := make([]float64, p.numProducts)
	denom := p.total + float64(p.numProducts)
	for i := range perAction {
		perAction[i] = (p.counts[i] + 1) / denom
	}

	idx := sampleIndex(perAction, p.rng)

	return &domain.Action{
		ProductIndex:        idx,
		Propensity:          perAction[idx],
		PropensityPerAction: perAction,
	}, nil
}

func (p *PopularityPolicy) Snapshot() Policy {
	p.snapshots++
	sub := usermodel.DeriveSeed(p.seed, fmt.Sprintf("snapshot-%d", p.snapshots))

	copied := NewPopularityPolicy(p.numProducts, sub)
	copy(copied.counts, p.counts)
	copied.total = p.total
	return copied
}

func sampleIndex(probs []float64, rng *rand.Rand) int {
	u := rng.Float64()
	acc := 0.0
	for i, pr := range probs {
		acc += pr
		if u < acc {
			return i
		}
	}
	return len(probs) - 1
}
