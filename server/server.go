package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-gateway-auth/gateway"
	"github.com/jrsteele09/go-gateway-auth/identity"
	"github.com/jrsteele09/go-gateway-auth/internal/config"
	"github.com/jrsteele09/go-gateway-auth/provisioning"
	"github.com/jrsteele09/go-gateway-auth/server/authflowrepo"
	"github.com/jrsteele09/go-gateway-auth/token"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v82"
)

// IdentityProvider runs the authorization code flow against the external provider.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*identity.Claims, error)
}

// GatewayAccess manages a user's gateway consumer and keys, addressed by email.
type GatewayAccess interface {
	EnsureConsumer(ctx context.Context, user identity.Claims) provisioning.Outcome
	ListKeys(ctx context.Context, email string) ([]provisioning.Key, error)
	CreateKey(ctx context.Context, email, customKey string) (provisioning.Key, error)
	RevokeKey(ctx context.Context, email, keyID string) error
	ConsumerInfo(ctx context.Context, email string) (provisioning.ConsumerInfo, error)
	Deprovision(ctx context.Context, email string) error
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) (gateway.Status, error)
}

type WebhookProcessor interface {
	Configured() bool
	SupportedEvents() []string
	Verify(payload []byte, signature string) (stripe.Event, error)
	Process(ctx context.Context, event stripe.Event) error
}

var (
	_ IdentityProvider = (*identity.GoogleProvider)(nil)
	_ GatewayAccess    = (*provisioning.Provisioner)(nil)
	_ HealthChecker    = (*gateway.Client)(nil)
)

// Dependencies are the collaborators the server is wired with.
type Dependencies struct {
	Identity  IdentityProvider
	Tokens    *token.Codec
	Gateway   GatewayAccess
	Health    HealthChecker
	Webhooks  WebhookProcessor
	AuthState authflowrepo.Repo
}

func (d Dependencies) validate() error {
	var missing []string
	if d.Identity == nil {
		missing = append(missing, "identity provider")
	}
	if d.Tokens == nil {
		missing = append(missing, "token codec")
	}
	if d.Gateway == nil {
		missing = append(missing, "gateway access")
	}
	if d.Health == nil {
		missing = append(missing, "health checker")
	}
	if d.Webhooks == nil {
		missing = append(missing, "webhook processor")
	}
	if d.AuthState == nil {
		missing = append(missing, "auth state repo")
	}
	if len(missing) > 0 {
		return errors.New("missing " + strings.Join(missing, ", "))
	}
	return nil
}

type Server struct {
	env       string // Environment (e.g., "development", "production")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	identity  IdentityProvider
	tokens    *token.Codec
	gateway   GatewayAccess
	health    HealthChecker
	webhooks  WebhookProcessor
	authState authflowrepo.Repo
	pages     *pages
}

func New(config config.Config, deps Dependencies) (*Server, error) {
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("[Server New] %w", err)
	}

	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		identity:  deps.Identity,
		tokens:    deps.Tokens,
		gateway:   deps.Gateway,
		health:    deps.Health,
		webhooks:  deps.Webhooks,
		authState: deps.AuthState,
		pages:     pages,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes returns the registered route patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if !s.config.IsDevelopment() {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		log.Debug().Msg(colouredRoute(method, path))
	}
}

// externalURL builds an absolute URL for a path on this service.
func (s *Server) externalURL(path string) string {
	return s.config.GetBaseURL() + path
}
