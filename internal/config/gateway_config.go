package config

import (
	"time"

	"github.com/jrsteele09/go-gateway-auth/internal/utils"
)

type GatewayConfig interface {
	GetKongAdminURL() string
	GetKongGatewayURL() string
	GetKongTimeout() time.Duration
	GetKongConsumerTags() []string
}

func (c mainConfig) GetKongAdminURL() string {
	return c.vars.KongAdminURL
}

func (c mainConfig) GetKongGatewayURL() string {
	return c.vars.KongGatewayURL
}

func (c mainConfig) GetKongTimeout() time.Duration {
	return c.vars.KongTimeout
}

func (c mainConfig) GetKongConsumerTags() []string {
	return utils.TrimEmpty(c.vars.KongConsumerTags)
}
