package server

func (s *Server) initRoutes() {
	// OAuth2 API routes
	s.RegisterRouteHandler("POST "+RouteOAuthToken, ChainMiddleware(s.Token(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteOAuthInfo, ChainMiddleware(s.Info(), s.APIMiddleware()...))

	// Interactive consent flow
	s.RegisterRouteHandler("GET "+RouteOAuthAuthorize, ChainMiddleware(s.Authorize(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteOAuthAuthorize, ChainMiddleware(s.Consent(), s.HTMLMiddleware()...))

	// Discovery metadata
	s.RegisterRouteHandler("GET "+RouteWellKnownAuthServer, ChainMiddleware(s.AuthorizationServerMetadata(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteWellKnownOpenIDConfig, ChainMiddleware(s.AuthorizationServerMetadata(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteWellKnownProtectedResource, ChainMiddleware(s.ProtectedResourceMetadata(), s.APIMiddleware()...))

	// Liveness
	s.RegisterRouteFunc("GET "+RouteHealth, s.Health())
}
