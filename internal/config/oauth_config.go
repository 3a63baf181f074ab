package config

import "time"

type OAuthConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleAuthURL() string
	GetGoogleTokenURL() string
	GetGoogleUserInfoURL() string
	GetGoogleVerifyIDToken() bool
	GetOAuthStateTimeout() time.Duration
}

func (c mainConfig) GetGoogleClientID() string {
	return c.vars.GoogleClientID
}

func (c mainConfig) GetGoogleClientSecret() string {
	return c.vars.GoogleClientSecret
}

func (c mainConfig) GetGoogleAuthURL() string {
	return c.vars.GoogleAuthURL
}

func (c mainConfig) GetGoogleTokenURL() string {
	return c.vars.GoogleTokenURL
}

func (c mainConfig) GetGoogleUserInfoURL() string {
	return c.vars.GoogleUserInfoURL
}

func (c mainConfig) GetGoogleVerifyIDToken() bool {
	return c.vars.GoogleVerifyIDToken
}

func (mainConfig) GetOAuthStateTimeout() time.Duration {
	return 10 * time.Minute
}
