package oauthmodel

// TokenResponse represents the response from an OAuth2 token request.
// This is the standard token endpoint response format defined in RFC 6749,
// returned for all three grant types.
type TokenResponse struct {
	// AccessToken is the signed JWT presented as "Authorization: Bearer <token>".
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer" in this implementation.
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds. The authoritative
	// expiry is the JWT's own "exp" claim; this is a hint for clients.
	ExpiresIn int `json:"expires_in"`

	// RefreshToken is a single-use token for obtaining a new pair without
	// re-presenting credentials. Rotated on every redemption.
	RefreshToken string `json:"refresh_token,omitempty"`

	// Scope echoes the requested scope, if any.
	Scope string `json:"scope,omitempty"`
}
