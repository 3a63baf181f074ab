package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

type envVars struct {
	Env      string `env:"ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"5000"`
	AppName  string `env:"APP_NAME" envDefault:"Gateway Auth"`
	BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:5000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecretKey       string `env:"JWT_SECRET_KEY" envDefault:"dev-jwt-secret-key-change-this"`
	JWTAlgorithm       string `env:"JWT_ALGORITHM" envDefault:"HS256"`
	JWTExpirationHours int    `env:"JWT_EXPIRATION_HOURS" envDefault:"24"`

	GoogleClientID      string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret  string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleAuthURL       string `env:"GOOGLE_AUTH_URL" envDefault:"https://accounts.google.com/o/oauth2/auth"`
	GoogleTokenURL      string `env:"GOOGLE_TOKEN_URL" envDefault:"https://oauth2.googleapis.com/token"`
	GoogleUserInfoURL   string `env:"GOOGLE_USERINFO_URL" envDefault:"https://www.googleapis.com/oauth2/v2/userinfo"`
	GoogleVerifyIDToken bool   `env:"GOOGLE_VERIFY_ID_TOKEN" envDefault:"true"`

	KongAdminURL     string        `env:"KONG_ADMIN_URL" envDefault:"http://localhost:8001"`
	KongGatewayURL   string        `env:"KONG_GATEWAY_URL" envDefault:"http://localhost:8000"`
	KongTimeout      time.Duration `env:"KONG_TIMEOUT" envDefault:"30s"`
	KongConsumerTags []string      `env:"KONG_CONSUMER_TAGS" envDefault:"free" envSeparator:","`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

func (c mainConfig) GetPort() string {
	port := c.vars.Port
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (c mainConfig) GetAppName() string {
	return c.vars.AppName
}

// GetBaseURL returns the externally visible URL of this service (e.g. "https://app.example.com").
// The OAuth redirect URI is derived from it.
func (c mainConfig) GetBaseURL() string {
	return strings.TrimRight(c.vars.BaseURL, "/")
}

func (c mainConfig) GetEnv() string {
	return strings.ToLower(c.vars.Env)
}

func (c mainConfig) GetLogLevel() string {
	return c.vars.LogLevel
}

func (c mainConfig) IsProduction() bool {
	return c.GetEnv() == EnvProduction
}

func (c mainConfig) IsDevelopment() bool {
	return c.GetEnv() == EnvDevelopment
}

func (c mainConfig) GetRedisAddr() string {
	return c.vars.RedisAddr
}

func (c mainConfig) GetRedisPassword() string {
	return c.vars.RedisPassword
}
