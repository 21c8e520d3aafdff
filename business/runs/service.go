package runs

import (
	"context"
	"fmt"
	"time"

	"recosim/business/sim"
	"recosim/domain"
	"recosim/pkg/logger"
	"recosim/pkg/metrics"

	"github.com/google/uuid"
)

const maxUsersPerRun = 10000

// RunRepository stores run summaries together with their event logs.
type RunRepository interface {
	SaveRun(ctx context.Context, run domain.SimulationRun, events []domain.Event) error
	GetRun(ctx context.Context, id string) (domain.SimulationRun, error)
	GetEvents(ctx context.Context, id string, offset, limit int) ([]domain.Event, error)
}

// ConfigRepository reads the operator-tuned simulation parameters, when any
// have been stored.
type ConfigRepository interface {
	GetConfig(ctx context.Context) (domain.SimConfig, bool, error)
}

// Service generates offline interaction logs: for each simulated user it
// drives an episode in offline mode, so every bandit event in the stored
// log carries the logging policy's true propensities.
type Service struct {
	repo      RunRepository
	cfgRepo   ConfigRepository
	defaults  sim.Config
	replayKey []byte
}

func NewService(repo RunRepository, cfgRepo ConfigRepository, defaults sim.Config, replayKey string) *Service {
	return &Service{
		repo:      repo,
		cfgRepo:   cfgRepo,
		defaults:  defaults,
		replayKey: []byte(replayKey),
	}
}

// Generate runs numUsers offline episodes under the resolved config, stores
// the run, and returns its summary plus a replay token that reproduces it.
func (s *Service) Generate(ctx context.Context, numUsers int, overrides map[string]any) (domain.SimulationRun, string, error) {
	if err := ctx.Err(); err != nil {
		return domain.SimulationRun{}, "", fmt.Errorf("context error: %w", err)
	}
	if numUsers <= 0 {
		return domain.SimulationRun{}, "", fmt.Errorf("%w: num users must be positive", sim.ErrInvalidConfiguration)
	}
	if numUsers > maxUsersPerRun {
		return domain.SimulationRun{}, "", fmt.Errorf("%w: num users exceeds limit of %d", sim.ErrInvalidConfiguration, maxUsersPerRun)
	}

	cfg, err := s.resolveConfig(ctx, overrides)
	if err != nil {
		return domain.SimulationRun{}, "", err
	}

	run, events, err := s.generate(cfg, numUsers)
	if err != nil {
		return domain.SimulationRun{}, "", err
	}

	token, err := s.sealReplayToken(replayPayload{Config: cfg, NumUsers: numUsers})
	if err != nil {
		return domain.SimulationRun{}, "", fmt.Errorf("seal replay token: %w", err)
	}

	if err := s.repo.SaveRun(ctx, run, events); err != nil {
		return domain.SimulationRun{}, "", fmt.Errorf("save run: %w", err)
	}

	tid := sim.TraceIDFromContext(ctx)
	logger.Debug("simulation_run",
		"trace_id", tid,
		"run_id", run.ID,
		"num_users", numUsers,
		"num_events", run.NumEvents,
		"displays", run.Displays,
		"clicks", run.Clicks,
		"random_seed", cfg.RandomSeed,
	)
	metrics.SimulateRequests.Inc()

	return run, token, nil
}

// Replay re-runs the exact simulation a replay token was issued for and
// stores it as a fresh run.
func (s *Service) Replay(ctx context.Context, token string) (domain.SimulationRun, error) {
	if err := ctx.Err(); err != nil {
		return domain.SimulationRun{}, fmt.Errorf("context error: %w", err)
	}

	payload, err := s.openReplayToken(token)
	if err != nil {
		return domain.SimulationRun{}, err
	}

	run, events, err := s.generate(payload.Config, payload.NumUsers)
	if err != nil {
		return domain.SimulationRun{}, err
	}

	if err := s.repo.SaveRun(ctx, run, events); err != nil {
		return domain.SimulationRun{}, fmt.Errorf("save run: %w", err)
	}

	logger.Debug("simulation_replay", "run_id", run.ID, "num_users", payload.NumUsers)

	return run, nil
}

func (s *Service) GetRun(ctx context.Context, id string) (domain.SimulationRun, error) {
	if err := ctx.Err(); err != nil {
		return domain.SimulationRun{}, fmt.Errorf("context error: %w", err)
	}
	return s.repo.GetRun(ctx, id)
}

func (s *Service) Events(ctx context.Context, id string, offset, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetEvents(ctx, id, offset, limit)
}

// generate is the deterministic core: same config and user count, same
// events.
func (s *Service) generate(cfg sim.Config, numUsers int) (domain.SimulationRun, []domain.Event, error) {
	env, err := sim.NewEnvironment(cfg)
	if err != nil {
		return domain.SimulationRun{}, nil, err
	}
	env.ResetRandomSeed()

	var events []domain.Event
	displays, clicks := 0, 0

	for u := 0; u < numUsers; u++ {
		env.Reset()

		res, err := env.StepOffline(nil, nil, false)
		if err != nil {
			return domain.SimulationRun{}, nil, fmt.Errorf("user %d: %w", u, err)
		}

		obs, reward, done := res.Observation, res.Reward, res.Done
		for !done {
			res, err = env.StepOffline(obs, reward, done)
			if err != nil {
				return domain.SimulationRun{}, nil, fmt.Errorf("user %d: %w", u, err)
			}
			obs, reward, done = res.Observation, res.Reward, res.Done
		}

		episode := env.Events()
		for _, ev := range episode {
			if ev.Kind == domain.EventBandit {
				displays++
				if ev.Reward != nil && *ev.Reward == 1 {
					clicks++
				}
			}
		}
		events = append(events, episode...)
	}

	ctr := 0.0
	if displays > 0 {
		ctr = float64(clicks) / float64(displays)
	}

	run := domain.SimulationRun{
		ID:          uuid.NewString(),
		RandomSeed:  cfg.RandomSeed,
		NumProducts: cfg.NumProducts,
		NumUsers:    numUsers,
		NumEvents:   len(events),
		Displays:    displays,
		Clicks:      clicks,
		CTR:         ctr,
		CreatedAt:   time.Now(),
	}

	return run, events, nil
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
