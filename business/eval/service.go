package eval

import (
	"context"
	"fmt"

	"recosim/business/sim"
	"recosim/business/usermodel"
	"recosim/domain"
	"recosim/pkg/logger"
)

// ConfigRepository reads the operator-tuned simulation parameters, when any
// have been stored.
type ConfigRepository interface {
	GetConfig(ctx context.Context) (domain.SimConfig, bool, error)
}

// Service is the REST-facing evaluation use case: resolve a named built-in
// policy, build an environment and run the harness.
type Service struct {
	cfgRepo  ConfigRepository
	defaults sim.Config
	harness  *Harness
}

func NewService(cfgRepo ConfigRepository, defaults sim.Config, harness *Harness) *Service {
	if harness == nil {
		harness = NewHarness()
	}
	return &Service{
		cfgRepo:  cfgRepo,
		defaults: defaults,
		harness:  harness,
	}
}

func (s *Service) Evaluate(
	ctx context.Context,
	policyName string,
	numTrainUsers, numTestUsers int,
	overrides map[string]any,
) (domain.EvaluationResult, error) {

	if err := ctx.Err(); err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("context error: %w", err)
	}

	cfg, err := s.resolveConfig(ctx, overrides)
	if err != nil {
		return domain.EvaluationResult{}, err
	}

	env, err := sim.NewEnvironment(cfg)
	if err != nil {
		return domain.EvaluationResult{}, err
	}

	policy, err := sim.NewPolicy(policyName, cfg.NumProducts, usermodel.DeriveSeed(cfg.RandomSeed, "candidate-policy"))
	if err != nil {
		return domain.EvaluationResult{}, err
	}

	tid := sim.TraceIDFromContext(ctx)
	logger.Debug("evaluation_start",
		"trace_id", tid,
		"policy", policyName,
		"num_train_users", numTrainUsers,
		"num_test_users", numTestUsers,
		"random_seed", cfg.RandomSeed,
	)

	result, err := s.harness.Evaluate(ctx, env, policy, numTrainUsers, numTestUsers)
	if err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("evaluate policy %q: %w", policyName, err)
	}

	return result, nil
}

func (s *Service) resolveConfig(ctx context.Context, overrides map[string]any) (sim.Config, error) {
	base := s.defaults

	if s.cfgRepo != nil {
		d, ok, err := s.cfgRepo.GetConfig(ctx)
		if err != nil {
			return sim.Config{}, fmt.Errorf("load stored config: %w", err)
		}
		if ok {
			stored, err := sim.ConfigFromDomain(d)
			if err != nil {
				return sim.Config{}, fmt.Errorf("stored config: %w", err)
			}
			base = stored
		}
	}

	return base.Merge(overrides)
}
