package config

type StripeConfig interface {
	GetStripeSecretKey() string
	GetStripeWebhookSecret() string
}

func (c mainConfig) GetStripeSecretKey() string {
	return c.vars.StripeSecretKey
}

func (c mainConfig) GetStripeWebhookSecret() string {
	return c.vars.StripeWebhookSecret
}
