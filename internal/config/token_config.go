package config

import "time"

type TokenConfig interface {
	GetJWTSecretKey() string
	GetJWTAlgorithm() string
	GetJWTExpiry() time.Duration
	GetSessionCookieMaxAge() time.Duration
}

func (c mainConfig) GetJWTSecretKey() string {
	return c.vars.JWTSecretKey
}

func (c mainConfig) GetJWTAlgorithm() string {
	return c.vars.JWTAlgorithm
}

func (c mainConfig) GetJWTExpiry() time.Duration {
	return time.Duration(c.vars.JWTExpirationHours) * time.Hour
}

// GetSessionCookieMaxAge is fixed at 24 hours, independent of the token lifetime.
func (mainConfig) GetSessionCookieMaxAge() time.Duration {
	return 24 * time.Hour
}
