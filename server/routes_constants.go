package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// OAuth2 Routes
	RouteOAuthToken     = "/oauth/token"
	RouteOAuthAuthorize = "/oauth/authorize"
	RouteOAuthInfo      = "/oauth/info"

	// Discovery Routes
	RouteWellKnownAuthServer        = "/.well-known/oauth-authorization-server"
	RouteWellKnownOpenIDConfig      = "/.well-known/openid-configuration"
	RouteWellKnownProtectedResource = "/.well-known/oauth-protected-resource"

	// Operational Routes
	RouteHealth = "/health"
)
