package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	TokenConfig
	OAuthConfig
	GatewayConfig
	StripeConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
	GetLogLevel() string
	IsProduction() bool
	IsDevelopment() bool
	GetRedisAddr() string
	GetRedisPassword() string
}

type mainConfig struct {
	vars envVars
}

var _ Config = mainConfig{}

// New loads the configuration from the process environment.
func New() (Config, error) {
	var vars envVars
	if err := env.Parse(&vars); err != nil {
		return nil, fmt.Errorf("[config New] parse env: %w", err)
	}
	return mainConfig{vars: vars}, nil
}

// NewFromMap loads the configuration from the given variables instead of the
// process environment. Unset variables take their defaults.
func NewFromMap(environment map[string]string) (Config, error) {
	var vars envVars
	if err := env.ParseWithOptions(&vars, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("[config NewFromMap] parse env: %w", err)
	}
	return mainConfig{vars: vars}, nil
}
