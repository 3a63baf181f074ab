package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/go-gateway-auth/internal/errors"
	"github.com/jrsteele09/go-gateway-auth/internal/utils"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	googleIssuer  = "https://accounts.google.com"
	googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// GoogleConfig describes the Google OAuth2 client registration and endpoints.
type GoogleConfig struct {
	ClientID      string
	ClientSecret  string
	AuthURL       string
	TokenURL      string
	UserInfoURL   string
	RedirectURL   string
	VerifyIDToken bool
}

// GoogleProvider performs the authorization code flow against Google and
// resolves the user profile from the user-info endpoint.
type GoogleProvider struct {
	oauthConfig *oauth2.Config
	userInfoURL string
	verifier    *oidc.IDTokenVerifier
}

// googleUserInfo is the payload of the v2 user-info endpoint
type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func NewGoogleProvider(cfg GoogleConfig) (*GoogleProvider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("[identity NewGoogleProvider] google oauth config missing client id or secret")
	}
	if cfg.TokenURL == "" || cfg.UserInfoURL == "" || cfg.AuthURL == "" {
		return nil, fmt.Errorf("[identity NewGoogleProvider] google oauth config missing endpoints")
	}

	p := &GoogleProvider{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{oidc.ScopeOpenID, "email", "profile"},
		},
		userInfoURL: cfg.UserInfoURL,
	}

	if cfg.VerifyIDToken {
		// Keys are fetched lazily on the first verification
		keySet := oidc.NewRemoteKeySet(context.Background(), googleJWKSURL)
		p.verifier = oidc.NewVerifier(googleIssuer, keySet, &oidc.Config{ClientID: cfg.ClientID})
	}
	return p, nil
}

// AuthCodeURL builds the provider authorization URL for the given CSRF state.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades the authorization code for an access token and loads the user profile.
// When the provider returns an id_token and verification is enabled, the token is
// verified and its subject must match the profile id.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*Claims, error) {
	tok, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %w", apperrors.ErrIdentityExchange, err)
	}

	info, err := p.fetchUserInfo(ctx, tok)
	if err != nil {
		return nil, err
	}

	if rawIDToken, _ := tok.Extra("id_token").(string); rawIDToken != "" && p.verifier != nil {
		idToken, err := p.verifier.Verify(ctx, rawIDToken)
		if err != nil {
			return nil, fmt.Errorf("%w: id_token verification: %w", apperrors.ErrIdentityExchange, err)
		}
		if idToken.Subject != info.ID {
			return nil, fmt.Errorf("%w: id_token subject does not match user info", apperrors.ErrIdentityExchange)
		}
	}

	log.Debug().Str("subject", info.ID).Str("email", info.Email).Msg("google identity resolved")

	return &Claims{
		SubjectID:   info.ID,
		Email:       info.Email,
		DisplayName: info.Name,
		PictureURL:  utils.StringPtrOrNil(info.Picture),
	}, nil
}

func (p *GoogleProvider) fetchUserInfo(ctx context.Context, tok *oauth2.Token) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: user info request: %w", apperrors.ErrIdentityExchange, err)
	}

	resp, err := p.oauthConfig.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: user info: %w", apperrors.ErrIdentityExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: user info status %d: %s", apperrors.ErrIdentityExchange, resp.StatusCode, string(body))
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode user info: %w", apperrors.ErrIdentityExchange, err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, apperrors.ErrIncompleteClaims
	}
	return &info, nil
}
