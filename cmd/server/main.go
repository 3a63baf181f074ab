package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-gateway-auth/gateway"
	"github.com/jrsteele09/go-gateway-auth/identity"
	"github.com/jrsteele09/go-gateway-auth/internal/config"
	"github.com/jrsteele09/go-gateway-auth/provisioning"
	"github.com/jrsteele09/go-gateway-auth/server"
	"github.com/jrsteele09/go-gateway-auth/server/authflowrepo"
	"github.com/jrsteele09/go-gateway-auth/token"
	"github.com/jrsteele09/go-gateway-auth/webhooks"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	deps, closeDeps, err := buildDependencies(c)
	if err != nil {
		return err
	}
	defer closeDeps()

	handler, err := server.New(c, deps)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	if err := waitForStopSignal(serveErr); err != nil {
		return err
	}
	return shutdown(httpServer)
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// buildDependencies wires the identity provider, token codec, gateway access,
// webhooks and OAuth state store. The returned func releases the state store.
func buildDependencies(c config.Config) (server.Dependencies, func(), error) {
	noop := func() {}

	signer, err := token.NewHMACSigner(c.GetJWTSecretKey(), c.GetJWTAlgorithm())
	if err != nil {
		return server.Dependencies{}, noop, err
	}

	google, err := identity.NewGoogleProvider(identity.GoogleConfig{
		ClientID:      c.GetGoogleClientID(),
		ClientSecret:  c.GetGoogleClientSecret(),
		AuthURL:       c.GetGoogleAuthURL(),
		TokenURL:      c.GetGoogleTokenURL(),
		UserInfoURL:   c.GetGoogleUserInfoURL(),
		RedirectURL:   c.GetBaseURL() + server.RouteCallback,
		VerifyIDToken: c.GetGoogleVerifyIDToken(),
	})
	if err != nil {
		return server.Dependencies{}, noop, err
	}

	kong := gateway.NewClient(c.GetKongAdminURL(), gateway.WithTimeout(c.GetKongTimeout()))

	deps := server.Dependencies{
		Identity: google,
		Tokens:   token.NewCodec(signer, c.GetJWTExpiry()),
		Gateway:  provisioning.NewProvisioner(kong, c.GetKongConsumerTags()),
		Health:   kong,
		Webhooks: webhooks.NewService(c.GetStripeWebhookSecret()),
	}

	if c.GetRedisAddr() == "" {
		log.Warn().Msg("REDIS_ADDR not set, OAuth state is kept in memory")
		deps.AuthState = authflowrepo.NewInMemoryRepo()
		return deps, noop, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := authflowrepo.NewRedisClient(ctx, c.GetRedisAddr(), c.GetRedisPassword())
	if err != nil {
		return server.Dependencies{}, noop, err
	}
	deps.AuthState = authflowrepo.NewRedisRepo(client)
	return deps, func() {
		if err := client.Close(); err != nil {
			log.Err(err).Msg("closing redis client")
		}
	}, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal(serveErr <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)
	select {
	case <-stop:
		return nil
	case err := <-serveErr:
		return err
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
