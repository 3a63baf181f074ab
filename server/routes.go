package server

import "net/http"

func (s *Server) initRoutes() {
	// PAGES
	s.RegisterRouteHandler("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RoutePricing, ChainMiddleware(s.PricingHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.RequireCookieAuth(s.DashboardHandler()), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteGetToken, ChainMiddleware(s.RequireCookieAuth(s.GetTokenPageHandler()), s.HTMLMiddleware()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleware()...))

	// API routes
	s.RegisterRouteHandler("GET "+RouteAPIGetAuthToken, ChainMiddleware(s.RequireCookieAuth(s.GetAuthTokenHandler()), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIProfile, ChainMiddleware(s.RequireBearerAuth(s.ProfileHandler()), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIProtected, ChainMiddleware(s.RequireBearerAuth(s.ProtectedHandler()), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIData, ChainMiddleware(s.RequireBearerAuth(s.DataHandler()), s.APIMiddleware()...))

	// Gateway key management for the signed in user
	s.RegisterRouteHandler("GET "+RouteAPIKeys, ChainMiddleware(s.RequireBearerAuth(s.ListKeysHandler()), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIKeys, ChainMiddleware(s.RequireBearerAuth(s.CreateKeyHandler()), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteAPIKey, ChainMiddleware(s.RequireBearerAuth(s.RevokeKeyHandler()), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIGateway, ChainMiddleware(s.RequireBearerAuth(s.GatewayInfoHandler()), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteAPIGateway, ChainMiddleware(s.RequireBearerAuth(s.DeprovisionHandler()), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {}, s.APIMiddleware()...))

	// Webhooks
	s.RegisterRouteHandler("POST "+RouteStripeWebhook, ChainMiddleware(s.StripeWebhookHandler(), s.LoggingMiddleware, s.RecoverMiddleware))
	s.RegisterRouteHandler("GET "+RouteStripeWebhookTest, ChainMiddleware(s.StripeWebhookTestHandler(), s.LoggingMiddleware, s.RecoverMiddleware))

	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.LoggingMiddleware, s.RecoverMiddleware))

	// Everything else
	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleware()...))
}
