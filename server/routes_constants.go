package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Pages
	RouteIndex     = "/{$}"
	RouteDashboard = "/dashboard"
	RouteGetToken  = "/get-token"
	RoutePricing   = "/pricing"

	// Auth Routes - Login & Logout
	RouteLogin    = "/login"
	RouteCallback = "/callback"
	RouteLogout   = "/logout"

	// API Routes
	RouteAPIGetAuthToken = "/api/get-auth-token"
	RouteAPIProfile      = "/api/profile"
	RouteAPIProtected    = "/api/protected"
	RouteAPIData         = "/api/data"
	RouteAPIKeys         = "/api/keys"
	RouteAPIKey          = "/api/keys/{keyID}"
	RouteAPIGateway      = "/api/gateway"

	// Payment provider webhooks
	RouteStripeWebhook     = "/stripe/webhook"
	RouteStripeWebhookTest = "/stripe/webhook/test"

	RouteHealth = "/health"
)
