package config

import (
	"strings"

	"github.com/jrsteele09/go-gateway-auth/internal/utils"
)

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type AllowedOrigins map[string]struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

func (c mainConfig) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{}
	for _, o := range utils.TrimEmpty(c.vars.AllowedOrigins) {
		origins[o] = struct{}{}
	}
	return origins
}

func (mainConfig) GetAllowedMethods() string {
	return "GET, POST, DELETE"
}

func (mainConfig) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}
