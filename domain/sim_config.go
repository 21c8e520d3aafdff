package domain

// SimConfig is the transport form of the simulation parameters, used by the
// admin API and stored by the config repository. The working type lives in
// business/sim.
type SimConfig struct {
	NumProducts        int     `json:"num_products" validate:"required,gt=0"`
	RandomSeed         int64   `json:"random_seed"`
	LatentDim          int     `json:"latent_dim" validate:"required,gt=0"`
	UserStddev         float64 `json:"user_stddev" validate:"required,gt=0"`
	EpisodeLengthMean  float64 `json:"episode_length_mean" validate:"gte=0"`
	EpisodeLengthFixed int     `json:"episode_length_fixed" validate:"gte=0"`
	OrganicRunMean     float64 `json:"organic_run_mean" validate:"gte=0"`
	ClickScale         float64 `json:"click_scale"`
	ClickBias          float64 `json:"click_bias"`
	DefaultPolicy      string  `json:"default_policy" validate:"required,oneof=uniform popularity"`
}
