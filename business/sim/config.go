package sim

import (
	"fmt"

	"recosim/domain"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds the validated, immutable simulation parameters.
type Config struct {
	NumProducts int   `json:"num_products" validate:"required,gt=0"`
	RandomSeed  int64 `json:"random_seed"`

	LatentDim  int     `json:"latent_dim" validate:"required,gt=0"`
	UserStddev float64 `json:"user_stddev" validate:"required,gt=0"`

	// Episode length in bandit decisions: Poisson(EpisodeLengthMean) with a
	// floor of one, or exactly EpisodeLengthFixed when that is set.
	EpisodeLengthMean  float64 `json:"episode_length_mean" validate:"gte=0"`
	EpisodeLengthFixed int     `json:"episode_length_fixed" validate:"gte=0"`

	// Mean of the Poisson organic-run length. The initial run may be empty;
	// a post-click run is 1+Poisson.
	OrganicRunMean float64 `json:"organic_run_mean" validate:"gte=0"`

	// Logistic click model coefficients.
	ClickScale float64 `json:"click_scale"`
	ClickBias  float64 `json:"click_bias"`

	// Name of the environment-owned logging policy used by StepOffline.
	DefaultPolicy string `json:"default_policy" validate:"required,oneof=uniform popularity"`
}

const (
	defaultNumProducts       = 10
	defaultRandomSeed        = 42
	defaultLatentDim         = 5
	defaultUserStddev        = 1.0
	defaultEpisodeLengthMean = 20.0
	defaultOrganicRunMean    = 3.0
	defaultClickScale        = 1.0
	defaultClickBias         = -4.0
)

func DefaultConfig() Config {
	return Config{
		NumProducts:       defaultNumProducts,
		RandomSeed:        defaultRandomSeed,
		LatentDim:         defaultLatentDim,
		UserStddev:        defaultUserStddev,
		EpisodeLengthMean: defaultEpisodeLengthMean,
		OrganicRunMean:    defaultOrganicRunMean,
		ClickScale:        defaultClickScale,
		ClickBias:         defaultClickBias,
		DefaultPolicy:     PolicyUniform,
	}
}

// NewConfig layers caller overrides key-by-key over the defaults. Unknown
// keys fail construction.
func NewConfig(overrides map[string]any) (Config, error) {
	return DefaultConfig().Merge(overrides)
}

// Merge returns a copy of c with the given overrides applied and validated.
func (c Config) Merge(overrides map[string]any) (Config, error) {
	for key, value := range overrides {
		var err error
		c, err = c.withOverride(key, value)
		if err != nil {
			return Config{}, err
		}
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) withOverride(key string, value any) (Config, error) {
	switch key {
	case "num_products":
		v, err := toInt(value)
		if err != nil {
			return c, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, key, err)
		}
		c.NumProducts = v
	case "random_seed":
		v, err := toInt64(value)
		if err != nil {
			return c, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, key, err)
		}
		c.RandomSeed = v
	case "latent_dim":
		v, err := toInt(value)
		if err != nil {
			return c, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, key, err)
		}
		c.LatentDim = v
	case "user_stddev":
		v, err := toFloat(value)
		if err != nil {
			return c, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, key, err)
		}
		c.UserStddev = v
	case "episode_length_mean":
		v, err := toFloat(value)
		if err != nil {
			return c, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, key, err)
		}
		c.EpisodeLengthMean = v
	case "episode_length_fixed":
		v, err := toInt(value)
		if err != nil {
			return c, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, key, err)
		}
		c.EpisodeLengthFixed = v
	case "organic_run_mean":
		v, err := toFloat(value)
		if err != nil {
			return c, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, key, err)
		}
		c.OrganicRunMean = v
	case "click_scale":
		v, err := toFloat(value)
		if err != nil {
			return c, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, key, err)
		}
		c.ClickScale = v
	case "click_bias":
		v, err := toFloat(value)
		if err != nil {
			return c, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, key, err)
		}
		c.ClickBias = v
	case "default_policy":
		v, ok := value.(string)
		if !ok {
			return c, fmt.Errorf("%w: %s: expected string, got %T", ErrInvalidConfiguration, key, value)
		}
		c.DefaultPolicy = v
	default:
		return c, fmt.Errorf("%w: unknown option %q", ErrInvalidConfiguration, key)
	}

	return c, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(&c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if c.EpisodeLengthMean <= 0 && c.EpisodeLengthFixed <= 0 {
		return fmt.Errorf("%w: one of episode_length_mean or episode_length_fixed must be positive", ErrInvalidConfiguration)
	}
	return nil
}

// Reseed returns a copy with a new seed, leaving everything else untouched.
// Used for reproducible repeated runs and worker sub-streams.
func (c Config) Reseed(seed int64) Config {
	c.RandomSeed = seed
	return c
}

// ConfigVariant is the explicit replacement for the original registry-style
// environment lookup: named presets, no global mutable state.
func ConfigVariant(name string) (Config, error) {
	switch name {
	case "reco-default":
		return DefaultConfig(), nil
	case "reco-small":
		cfg := DefaultConfig()
		cfg.NumProducts = 5
		cfg.LatentDim = 3
		cfg.EpisodeLengthMean = 8
		return cfg, nil
	default:
		return Config{}, fmt.Errorf("%w: unknown variant %q", ErrInvalidConfiguration, name)
	}
}

// ConfigFromDomain copies the transport form into a validated working config.
func ConfigFromDomain(d domain.SimConfig) (Config, error) {
	cfg := Config{
		NumProducts:        d.NumProducts,
		RandomSeed:         d.RandomSeed,
		LatentDim:          d.LatentDim,
		UserStddev:         d.UserStddev,
		EpisodeLengthMean:  d.EpisodeLengthMean,
		EpisodeLengthFixed: d.EpisodeLengthFixed,
		OrganicRunMean:     d.OrganicRunMean,
		ClickScale:         d.ClickScale,
		ClickBias:          d.ClickBias,
		DefaultPolicy:      d.DefaultPolicy,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) ToDomain() domain.SimConfig {
	return domain.SimConfig{
		NumProducts:        c.NumProducts,
		RandomSeed:         c.RandomSeed,
		LatentDim:          c.LatentDim,
		UserStddev:         c.UserStddev,
		EpisodeLengthMean:  c.EpisodeLengthMean,
		EpisodeLengthFixed: c.EpisodeLengthFixed,
		OrganicRunMean:     c.OrganicRunMean,
		ClickScale:         c.ClickScale,
		ClickBias:          c.ClickBias,
		DefaultPolicy:      c.DefaultPolicy,
	}
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("expected integer, got %g", v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", value)
	}
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("expected integer, got %g", v)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", value)
	}
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}
