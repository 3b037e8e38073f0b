package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env is the process configuration read from environment variables.
type Env struct {
	ConfigPath    string        `env:"CARDDUEL_CONFIG"          envDefault:"./cardduel_config.json"`
	DBPath        string        `env:"CARDDUEL_DB"              envDefault:"./data/cardduel.db"`
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"CARDDUEL_OPENAI_BASE_URL"`
	AIModel       string        `env:"CARDDUEL_AI_MODEL"`
	AITimeout     time.Duration `env:"CARDDUEL_AI_TIMEOUT"      envDefault:"30s"`
	IdleTTL       time.Duration `env:"CARDDUEL_IDLE_TTL"        envDefault:"30m"`
}

// ParseEnv loads Env from the environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// AIEnabled reports whether a model key is configured.
func (e Env) AIEnabled() bool { return e.OpenAIAPIKey != "" }
