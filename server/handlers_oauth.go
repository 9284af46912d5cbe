package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/venetanji/simplemem-mcp/oauthmodel"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

// Token exchanges credentials, an authorization code or a refresh token for
// a signed access token. The body may be JSON or form encoded.
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenReq, err := parseTokenRequest(r)
		if err != nil {
			writeJSONError(w, "invalid_request", "Failed to parse request body", http.StatusBadRequest)
			return
		}

		tokenResponse, err := s.auth.Token(*tokenReq)
		if err != nil {
			writeTokenError(w, err)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		_ = json.NewEncoder(w).Encode(tokenResponse)
	}
}

// Info returns metadata about the presented bearer token.
func (s *Server) Info() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken, ok := bearerToken(r)
		if !ok {
			writeJSONError(w, "invalid_token", "Missing or malformed Authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := s.auth.TokenInfo(rawToken)
		if err != nil {
			writeJSONError(w, "invalid_token", "Token is invalid or expired", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"client_id":   claims.ClientID,
			"client_name": claims.ClientName,
			"issued_at":   claims.IssuedAt.Unix(),
			"expires_at":  claims.ExpiresAt.Unix(),
		})
	}
}

// Health is an unauthenticated liveness probe.
func (s *Server) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"service": "simplemem-mcp-oauth",
		})
	}
}

// AuthorizationServerMetadata serves the OAuth/OIDC discovery document so
// interactive clients can self-configure.
func (s *Server) AuthorizationServerMetadata() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		baseURL := s.config.GetBaseURL()

		resp := map[string]any{
			"issuer":                 baseURL,
			"authorization_endpoint": baseURL + RouteOAuthAuthorize,
			"token_endpoint":         baseURL + RouteOAuthToken,

			"response_types_supported": []string{"code"},
			"response_modes_supported": []string{"query"},

			"grant_types_supported": []string{
				"authorization_code",
				"client_credentials",
				"refresh_token",
			},

			// PKCE support
			"code_challenge_methods_supported": []string{"S256", "plain"},

			// Token endpoint auth methods
			"token_endpoint_auth_methods_supported": []string{
				"client_secret_post", // Credentials in POST body
				"none",               // For public clients with PKCE
			},
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "public, max-age=3600") // Cache for 1 hour
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// ProtectedResourceMetadata describes this server as an OAuth protected
// resource per RFC 9728.
func (s *Server) ProtectedResourceMetadata() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		baseURL := s.config.GetBaseURL()

		resp := map[string]any{
			"resource":                 baseURL,
			"authorization_servers":    []string{baseURL},
			"bearer_methods_supported": []string{"header"},
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// Helper functions

// parseTokenRequest accepts both the JSON body the original clients send
// and standard form encoding.
func parseTokenRequest(r *http.Request) (*oauthmodel.TokenRequest, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req oauthmodel.TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &oauthmodel.TokenRequest{
		GrantType:    oauthmodel.GrantType(r.FormValue("grant_type")),
		ClientID:     r.FormValue("client_id"),
		ClientSecret: r.FormValue("client_secret"),
		Code:         r.FormValue("code"),
		CodeVerifier: r.FormValue("code_verifier"),
		RedirectURI:  r.FormValue("redirect_uri"),
		RefreshToken: r.FormValue("refresh_token"),
		Scope:        r.FormValue("scope"),
	}, nil
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// writeTokenError maps service errors to the uniform OAuth error responses.
// The body never distinguishes which check failed.
func writeTokenError(w http.ResponseWriter, err error) {
	switch err {
	case oauthmodel.ErrUnsupportedGrantType:
		writeJSONError(w, "unsupported_grant_type", "Grant type is not supported", http.StatusBadRequest)
	case oauthmodel.ErrInvalidClient:
		writeJSONError(w, "invalid_client", "Invalid client credentials", http.StatusUnauthorized)
	case oauthmodel.ErrInvalidRequest:
		writeJSONError(w, "invalid_request", "Missing required parameters", http.StatusBadRequest)
	default:
		writeJSONError(w, "invalid_grant", "Grant could not be validated", http.StatusBadRequest)
	}
}

// writeJSONError writes an OAuth2 error response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
