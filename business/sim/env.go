package sim

import (
	"fmt"
	"math/rand"

	"recosim/business/usermodel"
	"recosim/domain"

	"github.com/google/uuid"
)

// Episode phases.
const (
	phaseFresh = iota
	phaseAwaitingAction
	phaseTerminated
)

// Environment drives one simulated user's timeline at a time, interleaving
// organic browsing events with bandit decision points. All randomness comes
// from per-episode streams derived from the configured seed, so the same
// seed and action sequence replays bit-for-bit.
type Environment struct {
	cfg           Config
	model         *usermodel.Model
	defaultPolicy Policy

	episodeIndex int64
	rng          *rand.Rand
	user         usermodel.UserState
	userID       string

	phase      int
	now        int64
	stepsTaken int
	budget     int
	events     []domain.Event
}

// NewEnvironment validates the config, builds the latent user model and the
// default logging policy, and resets to the first episode. This is the
// factory the original exposed through a global registry.
func NewEnvironment(cfg Config) (*Environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	model, err := usermodel.New(usermodel.Params{
		NumProducts: cfg.NumProducts,
		LatentDim:   cfg.LatentDim,
		UserStddev:  cfg.UserStddev,
		ClickScale:  cfg.ClickScale,
		ClickBias:   cfg.ClickBias,
	}, cfg.RandomSeed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	policy, err := NewDefaultPolicy(cfg)
	if err != nil {
		return nil, err
	}

	e := &Environment{
		cfg:           cfg,
		model:         model,
		defaultPolicy: policy,
	}
	e.Reset()
	return e, nil
}

func (e *Environment) Config() Config {
	return e.cfg
}

// UserID is the opaque identifier of the current episode's user.
func (e *Environment) UserID() string {
	return e.userID
}

// Events returns a copy of the episode's event log so far.
func (e *Environment) Events() []domain.Event {
	out := make([]domain.Event, len(e.events))
	copy(out, e.events)
	return out
}

// Reset discards the current user and starts a fresh episode on the next
// derived sub-stream.
func (e *Environment) Reset() {
	seed := usermodel.DeriveSeed(e.cfg.RandomSeed, fmt.Sprintf("episode-%d", e.episodeIndex))
	e.episodeIndex++

	e.rng = rand.New(rand.NewSource(seed))

	// uuid drawn from the episode stream keeps user IDs reproducible
	uid, err := uuid.NewRandomFromReader(e.rng)
	if err != nil {
		// rand.Rand.Read cannot fail; keep the episode alive regardless
		uid = uuid.Nil
	}
	e.userID = uid.String()

	e.user = e.model.SampleUserState(e.rng)
	e.budget = e.sampleEpisodeLength()
	e.phase = phaseFresh
	e.now = 0
	e.stepsTaken = 0
	e.events = nil

	EpisodesTotal.Inc()
}

// ResetRandomSeed rewinds the deterministic stream to the configured seed:
// the next episode replays episode zero exactly. The logging policy is
// rebuilt too, so offline traces replay as well.
func (e *Environment) ResetRandomSeed() {
	e.episodeIndex = 0

	// the policy name was validated at construction, this cannot fail
	if policy, err := NewDefaultPolicy(e.cfg); err == nil {
		e.defaultPolicy = policy
	}

	e.Reset()
}

// Step advances the episode in online mode, with the caller supplying the
// action. The first call of an episode takes a null action and returns the
// initial organic batch with a nil reward.
func (e *Environment) Step(action *domain.Action) (domain.StepResult, error) {
	switch e.phase {
	case phaseTerminated:
		return domain.StepResult{}, fmt.Errorf("%w: call Reset before stepping again", ErrEpisodeTerminated)

	case phaseFresh:
		if action != nil {
			return domain.StepResult{}, fmt.Errorf("%w: the first decision point takes a null action", ErrInvalidAction)
		}

		obs := e.emitOrganicRun(usermodel.SamplePoisson(e.rng, e.cfg.OrganicRunMean))
		e.phase = phaseAwaitingAction

		return domain.StepResult{
			Observation: obs,
			Reward:      nil,
			Done:        false,
			Info:        map[string]any{},
		}, nil
	}

	if action == nil {
		return domain.StepResult{}, fmt.Errorf("%w: an action is required after the first decision point", ErrInvalidAction)
	}
	if action.ProductIndex < 0 || action.ProductIndex >= e.cfg.NumProducts {
		return domain.StepResult{}, fmt.Errorf("%w: product index %d out of range [0,%d)",
			ErrInvalidAction, action.ProductIndex, e.cfg.NumProducts)
	}

	reward := e.model.SampleClick(e.user, action.ProductIndex, e.rng)

	e.events = append(e.events, domain.Event{
		Timestamp:           e.nextTimestamp(),
		UserID:              e.userID,
		Kind:                domain.EventBandit,
		ProductIndex:        action.ProductIndex,
		Propensity:          action.Propensity,
		PropensityPerAction: action.PropensityPerAction,
		Reward:              domain.RewardValue(reward),
	})
	BanditStepsTotal.Inc()

	var obs domain.Observation
	if reward == 1 {
		// a click re-engages organic browsing, so the next observation
		// always carries at least one organic event
		obs = e.emitOrganicRun(1 + usermodel.SamplePoisson(e.rng, e.cfg.OrganicRunMean))
		ClicksTotal.Inc()
	} else {
		obs = domain.Observation{}
	}

	e.stepsTaken++
	done := e.stepsTaken >= e.budget
	if done {
		e.phase = phaseTerminated
	}

	return domain.StepResult{
		Observation: obs,
		Reward:      domain.RewardValue(reward),
		Done:        done,
		Info:        map[string]any{},
	}, nil
}

// StepOffline advances the same state machine, but the environment picks the
// action itself by sampling its default logging policy, so that generated
// logs carry known propensity scores.
func (e *Environment) StepOffline(prevObs domain.Observation, prevReward *float64, prevDone bool) (domain.OfflineStepResult, error) {
	if e.phase == phaseTerminated {
		return domain.OfflineStepResult{}, fmt.Errorf("%w: call Reset before stepping again", ErrEpisodeTerminated)
	}

	if e.phase == phaseFresh {
		res, err := e.Step(nil)
		if err != nil {
			return domain.OfflineStepResult{}, err
		}
		return domain.OfflineStepResult{Action: nil, StepResult: res}, nil
	}

	action, err := e.defaultPolicy.Act(prevObs, prevReward, prevDone)
	if err != nil {
		return domain.OfflineStepResult{}, fmt.Errorf("default policy: %w", err)
	}
	action.UserID = e.userID
	action.Timestamp = e.now

	res, err := e.Step(action)
	if err != nil {
		return domain.OfflineStepResult{}, err
	}

	return domain.OfflineStepResult{Action: action, StepResult: res}, nil
}

func (e *Environment) emitOrganicRun(length int) domain.Observation {
	obs := make(domain.Observation, 0, length)
	for i := 0; i < length; i++ {
		ev := domain.Event{
			Timestamp:    e.nextTimestamp(),
			UserID:       e.userID,
			Kind:         domain.EventOrganic,
			ProductIndex: e.model.SampleNextOrganic(e.user, e.rng),
		}
		e.events = append(e.events, ev)
		obs = append(obs, ev)
	}
	return obs
}

func (e *Environment) sampleEpisodeLength() int {
	if e.cfg.EpisodeLengthFixed > 0 {
		return e.cfg.EpisodeLengthFixed
	}
	n := usermodel.SamplePoisson(e.rng, e.cfg.EpisodeLengthMean)
	if n < 1 {
		n = 1
	}
	return n
}

func (e *Environment) nextTimestamp() int64 {
	ts := e.now
	e.now++
	return ts
}
