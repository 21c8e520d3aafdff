package domain

// EventKind distinguishes self-directed browsing from recommendation
// opportunities.
type EventKind string

const (
	EventOrganic EventKind = "organic"
	EventBandit  EventKind = "bandit"
)

// Event is one entry in a simulated user timeline. Immutable once emitted;
// timestamps are strictly increasing within an episode across both kinds.
type Event struct {
	Timestamp           int64     `json:"timestamp"`
	UserID              string    `json:"user_id"`
	Kind                EventKind `json:"kind"`
	ProductIndex        int       `json:"product_index"`
	Propensity          float64   `json:"propensity,omitempty"`
	PropensityPerAction []float64 `json:"propensity_per_action,omitempty"`

	// Reward is recorded on bandit events only, so that a stored run is a
	// self-contained training log.
	Reward *float64 `json:"reward,omitempty"`
}

// Observation is the batch of organic events accumulated since the last
// bandit decision. May be empty.
type Observation []Event

// Action is a recommendation taken at a bandit decision point. Propensity
// must equal the probability mass the acting policy assigned to the chosen
// product.
type Action struct {
	Timestamp           int64     `json:"timestamp"`
	UserID              string    `json:"user_id"`
	ProductIndex        int       `json:"product_index"`
	Propensity          float64   `json:"propensity"`
	PropensityPerAction []float64 `json:"propensity_per_action,omitempty"`
}

// StepResult is what one environment step hands back to the caller. Reward
// is nil only at the episode's first decision point.
type StepResult struct {
	Observation Observation    `json:"observation"`
	Reward      *float64       `json:"reward"`
	Done        bool           `json:"done"`
	Info        map[string]any `json:"info"`
}

// OfflineStepResult additionally carries the environment-chosen action, nil
// at the first decision point.
type OfflineStepResult struct {
	Action *Action `json:"action"`
	StepResult
}

func RewardValue(v float64) *float64 {
	return &v
}
