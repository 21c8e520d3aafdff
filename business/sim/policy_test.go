package sim

import (
	"errors"
	"testing"

	"recosim/domain"
)

func TestNewPolicy_UnknownName(t *testing.T) {
	if _, err := NewPolicy("linucb", 10, 1); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestUniformPolicy_ExactPropensities(t *testing.T) {
	const k = 8
	p := NewUniformPolicy(k, 1)

	for i := 0; i < 50; i++ {
		action, err := p.Act(nil, nil, false)
		if err != nil {
			t.Fatalf("act: %v", err)
		}

		if action.ProductIndex < 0 || action.ProductIndex >= k {
			t.Fatalf("index %d out of range", action.ProductIndex)
		}
		if action.Propensity != 1.0/k {
			t.Fatalf("propensity %g, want %g", action.Propensity, 1.0/k)
		}
		for _, pr := range action.PropensityPerAction {
			if pr != 1.0/k {
				t.Fatalf("per-action propensity %g, want %g", pr, 1.0/k)
			}
		}
	}
}

func TestUniformPolicy_SameSeedSameChoices(t *testing.T) {
	p1 := NewUniformPolicy(10, 7)
	p2 := NewUniformPolicy(10, 7)

	for i := 0; i < 100; i++ {
		a1, _ := p1.Act(nil, nil, false)
		a2, _ := p2.Act(nil, nil, false)
		if a1.ProductIndex != a2.ProductIndex {
			t.Fatalf("draw %d diverged: %d vs %d", i, a1.ProductIndex, a2.ProductIndex)
		}
	}
}

func TestPopularityPolicy_FollowsOrganicCounts(t *testing.T) {
	const k = 4
	p := NewPopularityPolicy(k, 1)

	// heavily skew the organic history toward product 2
	obs := make(domain.Observation, 0, 100)
	for i := 0; i < 100; i++ {
		obs = append(obs, domain.Event{Kind: domain.EventOrganic, ProductIndex: 2})
	}
	p.Train(obs, nil, nil, false)

	action, err := p.Act(nil, nil, false)
	if err != nil {
		t.Fatalf("act: %v", err)
	}

	best := 0
	for i, pr := range action.PropensityPerAction {
		if pr > action.PropensityPerAction[best] {
			best = i
		}
	}
	if best != 2 {
		t.Fatalf("most likely product is %d, want 2: %v", best, action.PropensityPerAction)
	}

	sum := 0.0
	for _, pr := range action.PropensityPerAction {
		if pr <= 0 {
			t.Fatalf("smoothed propensity %g not positive", pr)
		}
		sum += pr
	}
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("propensities sum to %g", sum)
	}
}

func TestPopularityPolicy_IgnoresBanditEvents(t *testing.T) {
	p := NewPopularityPolicy(3, 1)

	p.Train(domain.Observation{
		{Kind: domain.EventBandit, ProductIndex: 0, Reward: domain.RewardValue(1)},
	}, nil, nil, false)

	if p.total != 0 {
		t.Fatalf("bandit event counted as organic: total=%g", p.total)
	}
}

func TestSnapshot_IndependentCopies(t *testing.T) {
	p := NewPopularityPolicy(3, 1)
	p.Train(domain.Observation{{Kind: domain.EventOrganic, ProductIndex: 1}}, nil, nil, false)

	snap, ok := p.Snapshot().(*PopularityPolicy)
	if !ok {
		t.Fatal("snapshot is not a PopularityPolicy")
	}

	if snap.counts[1] != 1 || snap.total != 1 {
		t.Fatalf("snapshot lost counts: %v total=%g", snap.counts, snap.total)
	}

	// training the copy must not touch the original
	snap.Train(domain.Observation{{Kind: domain.EventOrganic, ProductIndex: 0}}, nil, nil, false)
	if p.counts[0] != 0 {
		t.Fatal("snapshot shares count storage with the original")
	}

	// consecutive snapshots get distinct sub-seeds
	s1 := p.Snapshot().(*PopularityPolicy)
	s2 := p.Snapshot().(*PopularityPolicy)
	if s1.seed == s2.seed {
		t.Fatal("consecutive snapshots share a seed")
	}
}
