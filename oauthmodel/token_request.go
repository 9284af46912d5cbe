package oauthmodel

import "strings"

// TokenRequest holds parameters for the OAuth2 token request.
// This represents the request body sent to the /oauth/token endpoint and
// supports the three grant types: client_credentials, authorization_code
// and refresh_token. Which fields are required depends on GrantType; the
// request is validated exhaustively before any store is consulted.
type TokenRequest struct {
	// GrantType selects the flow. Anything outside the three supported
	// values maps to ErrUnsupportedGrantType before dispatch.
	GrantType GrantType `json:"grant_type"`

	// ClientID identifies the OAuth2 client making the request.
	// Required for client_credentials; optional (informational) otherwise.
	ClientID string `json:"client_id,omitempty"`

	// ClientSecret is the plaintext secret issued once at client creation.
	// Required for client_credentials.
	// Security: never log or expose this value.
	ClientSecret string `json:"client_secret,omitempty"`

	// Code is the single-use authorization code produced by the consent flow.
	// Required for authorization_code.
	Code string `json:"code,omitempty"`

	// CodeVerifier is the PKCE verifier matching the code_challenge the
	// session was started with. Required for authorization_code.
	CodeVerifier string `json:"code_verifier,omitempty"`

	// RedirectURI must repeat the redirect_uri the session was started with.
	RedirectURI string `json:"redirect_uri,omitempty"`

	// RefreshToken is the previously issued refresh token.
	// Required for refresh_token. Consumed on use.
	RefreshToken string `json:"refresh_token,omitempty"`

	// Scope is echoed back in the response; it carries no semantics here.
	Scope string `json:"scope,omitempty"`
}

// Validate checks the request shape for its grant type. It does not touch
// any store; credential and code verification happen later so that shape
// errors and authentication errors stay distinguishable server-side.
func (r TokenRequest) Validate() error {
	if !r.GrantType.Supported() {
		return ErrUnsupportedGrantType
	}

	switch r.GrantType {
	case ClientCredentialsGrant:
		if strings.TrimSpace(r.ClientID) == "" || strings.TrimSpace(r.ClientSecret) == "" {
			return ErrInvalidRequest
		}
	case AuthorizationCodeGrant:
		if strings.TrimSpace(r.Code) == "" || strings.TrimSpace(r.CodeVerifier) == "" {
			return ErrInvalidRequest
		}
	case RefreshTokenGrant:
		if strings.TrimSpace(r.RefreshToken) == "" {
			return ErrInvalidRequest
		}
	}
	return nil
}
