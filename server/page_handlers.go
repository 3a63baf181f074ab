package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-gateway-auth/internal/utils"
	"github.com/jrsteele09/go-gateway-auth/provisioning"
	"github.com/jrsteele09/go-gateway-auth/token"
	"github.com/rs/zerolog/log"
)

type indexPageData struct {
	AppName string
	User    *token.Claims
}

// IndexHandler renders the landing page, greeting the user when the session cookie is valid
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := indexPageData{AppName: s.config.GetAppName()}
		if claims, ok := s.cookieClaims(r); ok {
			data.User = claims
		}
		s.render(w, http.StatusOK, s.pages.index, data)
	}
}

type dashboardPageData struct {
	AppName      string
	User         *token.Claims
	Picture      string
	Token        string
	GatewayURL   string
	Gateway      provisioning.ConsumerInfo
	GatewayError string
}

// DashboardHandler shows the user, their gateway access and their session token
func (s *Server) DashboardHandler() ClaimsHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, claims *token.Claims) {
		data := dashboardPageData{
			AppName:    s.config.GetAppName(),
			User:       claims,
			Picture:    utils.SafeDeref(claims.Picture),
			Token:      sessionToken(r),
			GatewayURL: s.config.GetKongGatewayURL(),
		}

		info, err := s.gateway.ConsumerInfo(r.Context(), claims.Email)
		if err != nil {
			log.Warn().Err(err).Str("email", claims.Email).Msg("Dashboard: gateway info unavailable")
			data.GatewayError = "the gateway could not be reached"
		} else {
			data.Gateway = info
		}
		s.render(w, http.StatusOK, s.pages.dashboard, data)
	}
}

type tokenPageData struct {
	AppName   string
	User      *token.Claims
	Token     string
	ExpiresAt string
	BaseURL   string
}

// GetTokenPageHandler shows the raw session token for API testing
func (s *Server) GetTokenPageHandler() ClaimsHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, claims *token.Claims) {
		s.render(w, http.StatusOK, s.pages.token, tokenPageData{
			AppName:   s.config.GetAppName(),
			User:      claims,
			Token:     sessionToken(r),
			ExpiresAt: claims.ExpiresAtTime().UTC().Format(time.RFC1123),
			BaseURL:   s.config.GetBaseURL(),
		})
	}
}

type pricingPlan struct {
	Name     string
	Price    string
	Requests string
}

type pricingPageData struct {
	AppName string
	User    *token.Claims
	Plans   []pricingPlan
}

var pricingPlans = []pricingPlan{
	{Name: "Free", Price: "$0", Requests: "1,000 / month"},
	{Name: "Pro", Price: "$29 / month", Requests: "100,000 / month"},
	{Name: "Enterprise", Price: "Contact us", Requests: "Unlimited"},
}

func (s *Server) PricingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := pricingPageData{AppName: s.config.GetAppName(), Plans: pricingPlans}
		if claims, ok := s.cookieClaims(r); ok {
			data.User = claims
		}
		s.render(w, http.StatusOK, s.pages.pricing, data)
	}
}

// NotFoundHandler renders the generic 404 page for unmatched routes
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, http.StatusNotFound, "Page not found")
	}
}

// sessionToken returns the raw session cookie. Only call it behind RequireCookieAuth.
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
