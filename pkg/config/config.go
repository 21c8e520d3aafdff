package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Server ServerConfig
	JWT    JWTConfig
	Auth   AuthConfig
	Replay ReplayConfig
	Sim    SimDefaults
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type JWTConfig struct {
	SecretKey string
}

// AuthConfig holds the single operator account allowed to drive the
// simulation service.
type AuthConfig struct {
	OperatorUsername     string
	OperatorPasswordHash string
}

// ReplayConfig holds the AES key used to seal replay tokens.
type ReplayConfig struct {
	TokenKey string
}

// SimDefaults are the server-level defaults applied when a request does not
// override them.
type SimDefaults struct {
	RandomSeed  int64
	NumProducts int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	seed, err := strconv.ParseInt(getEnv("SIM_RANDOM_SEED", "42"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid SIM_RANDOM_SEED")
	}

	numProducts, err := strconv.Atoi(getEnv("SIM_NUM_PRODUCTS", "10"))
	if err != nil {
		return nil, errors.New("invalid SIM_NUM_PRODUCTS")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "RecoSim API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Auth: AuthConfig{
			OperatorUsername:     getEnv("OPERATOR_USERNAME", "operator"),
			OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		},
		Replay: ReplayConfig{
			TokenKey: getEnv("REPLAY_TOKEN_KEY", ""),
		},
		Sim: SimDefaults{
			RandomSeed:  seed,
			NumProducts: numProducts,
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Auth.OperatorPasswordHash == "" {
		return nil, errors.New("missing operator password hash")
	}

	switch len(cfg.Replay.TokenKey) {
	case 16, 24, 32:
	default:
		return nil, errors.New("replay token key must be 16, 24 or 32 bytes")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
