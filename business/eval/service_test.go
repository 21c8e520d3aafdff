package eval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"recosim/business/sim"
	"recosim/domain"
)

type fakeConfigRepo struct {
	cfg domain.SimConfig
	set bool
	err error
}

func (r *fakeConfigRepo) GetConfig(ctx context.Context) (domain.SimConfig, bool, error) {
	return r.cfg, r.set, r.err
}

func TestServiceEvaluate_UsesStoredConfig(t *testing.T) {
	stored := sim.DefaultConfig()
	stored.NumProducts = 5
	s := NewService(&fakeConfigRepo{cfg: stored.ToDomain(), set: true}, sim.DefaultConfig(), NewHarness())

	result, err := s.Evaluate(context.Background(), sim.PolicyUniform, 0, 20, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.Displays <= 0 {
		t.Fatal("no displays recorded")
	}
}

// A failing or corrupt stored config must fail the evaluation, not silently
// fall back to the defaults.
func TestServiceEvaluate_StoredConfigErrorsPropagate(t *testing.T) {
	s := NewService(&fakeConfigRepo{err: errors.New("store down")}, sim.DefaultConfig(), NewHarness())
	_, err := s.Evaluate(context.Background(), sim.PolicyUniform, 0, 10, nil)
	if err == nil || !strings.Contains(err.Error(), "store down") {
		t.Fatalf("repository error swallowed: %v", err)
	}

	bad := sim.DefaultConfig().ToDomain()
	bad.NumProducts = 0
	s = NewService(&fakeConfigRepo{cfg: bad, set: true}, sim.DefaultConfig(), NewHarness())
	_, err = s.Evaluate(context.Background(), sim.PolicyUniform, 0, 10, nil)
	if !errors.Is(err, sim.ErrInvalidConfiguration) {
		t.Fatalf("corrupt stored config: expected ErrInvalidConfiguration, got %v", err)
	}
}
