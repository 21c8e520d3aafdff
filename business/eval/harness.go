package eval

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"recosim/business/sim"
	"recosim/business/usermodel"
	"recosim/domain"
	"recosim/pkg/logger"
)

const (
	defaultBootstrapSamples = 1000
	defaultWorkers          = 1
)

// Harness runs a policy through a training phase on offline logs and a test
// phase online, then bootstraps a confidence interval on click-through rate.
type Harness struct {
	// Workers >1 spreads test episodes across goroutines when the policy
	// supports Snapshot; each worker gets its own derived sub-seed and
	// policy copy, so the per-user outcome set stays seed-deterministic.
	Workers int

	BootstrapSamples int
}

func NewHarness() *Harness {
	return &Harness{
		Workers:          defaultWorkers,
		BootstrapSamples: defaultBootstrapSamples,
	}
}

// EvaluatePolicy is the convenience entry point with default harness
// settings.
func EvaluatePolicy(ctx context.Context, env *sim.Environment, policy sim.Policy, numTrainUsers, numTestUsers int) (domain.EvaluationResult, error) {
	return NewHarness().Evaluate(ctx, env, policy, numTrainUsers, numTestUsers)
}

type userOutcome struct {
	clicks   int
	displays int
}

// Evaluate trains the policy on numTrainUsers offline episodes, measures it
// online over numTestUsers episodes, and returns the bootstrap CTR summary.
// The environment's stream is rewound first, so repeated calls with the same
// configuration and a deterministic policy reproduce the same result.
func (h *Harness) Evaluate(ctx context.Context, env *sim.Environment, policy sim.Policy, numTrainUsers, numTestUsers int) (domain.EvaluationResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("context error: %w", err)
	}
	if numTrainUsers < 0 {
		return domain.EvaluationResult{}, fmt.Errorf("%w: num train users must not be negative", sim.ErrInvalidConfiguration)
	}
	if numTestUsers <= 0 {
		return domain.EvaluationResult{}, fmt.Errorf("%w: num test users must be positive", sim.ErrInvalidConfiguration)
	}

	env.ResetRandomSeed()

	// Phase 1: offline training. The policy is single-owner mutable state,
	// so this phase is strictly sequential.
	for u := 0; u < numTrainUsers; u++ {
		if err := ctx.Err(); err != nil {
			return domain.EvaluationResult{}, fmt.Errorf("train phase: user %d: %w", u, err)
		}

		env.Reset()
		if err := trainEpisode(env, policy); err != nil {
			return domain.EvaluationResult{}, fmt.Errorf("train phase: user %d: %w", u, err)
		}
	}

	// Phase 2: online testing.
	outcomes, err := h.testPhase(ctx, env, policy, numTestUsers)
	if err != nil {
		return domain.EvaluationResult{}, err
	}

	rng := rand.New(rand.NewSource(usermodel.DeriveSeed(env.Config().RandomSeed, "bootstrap")))
	median, lower, upper := bootstrapCI(outcomes, h.BootstrapSamples, rng)

	totalClicks, totalDisplays := 0, 0
	for _, o := range outcomes {
		totalClicks += o.clicks
		totalDisplays += o.displays
	}

	logger.Debug("evaluation_complete",
		"num_train_users", numTrainUsers,
		"num_test_users", numTestUsers,
		"displays", totalDisplays,
		"clicks", totalClicks,
		"median_ctr", median,
	)

	return domain.EvaluationResult{
		MedianCTR:     median,
		LowerCI:       lower,
		UpperCI:       upper,
		NumTrainUsers: numTrainUsers,
		NumTestUsers:  numTestUsers,
		Displays:      totalDisplays,
		Clicks:        totalClicks,
	}, nil
}

// trainEpisode drives one offline episode, feeding each
// (observation, action, reward, done) tuple to the policy's training hook.
func trainEpisode(env *sim.Environment, policy sim.Policy) error {
	first, err := env.StepOffline(nil, nil, false)
	if err != nil {
		return err
	}

	obs, reward, done := first.Observation, first.Reward, first.Done
	for !done {
		res, err := env.StepOffline(obs, reward, done)
		if err != nil {
			return err
		}

		policy.Train(obs, res.Action, res.Reward, res.Done)
		obs, reward, done = res.Observation, res.Reward, res.Done
	}

	return nil
}

func (h *Harness) testPhase(ctx context.Context, env *sim.Environment, policy sim.Policy, numTestUsers int) ([]userOutcome, error) {
	if h.Workers > 1 {
		if snap, ok := policy.(sim.Snapshotter); ok {
			return h.testParallel(ctx, env.Config(), snap, numTestUsers)
		}
	}

	outcomes := make([]userOutcome, numTestUsers)
	for u := 0; u < numTestUsers; u++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("test phase: user %d: %w", u, err)
		}

		env.Reset()
		outcome, err := testEpisode(env, policy)
		if err != nil {
			return nil, fmt.Errorf("test phase: user %d: %w", u, err)
		}
		outcomes[u] = outcome
	}

	return outcomes, nil
}

// testParallel fans test episodes out across workers, each on its own
// environment and policy copy. Outcomes land at their global user index, so
// aggregation does not depend on completion order.
func (h *Harness) testParallel(ctx context.Context, cfg sim.Config, snap sim.Snapshotter, numTestUsers int) ([]userOutcome, error) {
	workers := h.Workers
	if workers > numTestUsers {
		workers = numTestUsers
	}

	outcomes := make([]userOutcome, numTestUsers)
	errs := make([]error, workers)

	// snapshots taken sequentially before launch keep policy sub-seeds
	// deterministic
	policies := make([]sim.Policy, workers)
	for w := range policies {
		policies[w] = snap.Snapshot()
	}

	perWorker := numTestUsers / workers
	extra := numTestUsers % workers

	var wg sync.WaitGroup
	start := 0
	for w := 0; w < workers; w++ {
		count := perWorker
		if w < extra {
			count++
		}

		wg.Add(1)
		go func(w, start, count int) {
			defer wg.Done()

			workerCfg := cfg.Reseed(usermodel.DeriveSeed(cfg.RandomSeed, fmt.Sprintf("worker-%d", w)))
			workerEnv, err := sim.NewEnvironment(workerCfg)
			if err != nil {
				errs[w] = fmt.Errorf("test phase: worker %d: %w", w, err)
				return
			}

			for i := 0; i < count; i++ {
				if err := ctx.Err(); err != nil {
					errs[w] = fmt.Errorf("test phase: user %d: %w", start+i, err)
					return
				}

				workerEnv.Reset()
				outcome, err := testEpisode(workerEnv, policies[w])
				if err != nil {
					errs[w] = fmt.Errorf("test phase: user %d: %w", start+i, err)
					return
				}
				outcomes[start+i] = outcome
			}
		}(w, start, count)

		start += count
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return outcomes, nil
}

// testEpisode drives one online episode with the policy choosing actions and
// counts displays and clicks.
func testEpisode(env *sim.Environment, policy sim.Policy) (userOutcome, error) {
	res, err := env.Step(nil)
	if err != nil {
		return userOutcome{}, err
	}

	var out userOutcome
	obs, reward, done := res.Observation, res.Reward, res.Done
	for !done {
		action, err := policy.Act(obs, reward, done)
		if err != nil {
			return out, fmt.Errorf("policy act: %w", err)
		}

		res, err = env.Step(action)
		if err != nil {
			return out, err
		}

		out.displays++
		if res.Reward != nil && *res.Reward == 1 {
			out.clicks++
		}

		obs, reward, done = res.Observation, res.Reward, res.Done
	}

	return out, nil
}
