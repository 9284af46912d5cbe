package oauthmodel

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// ClientCredentialsGrant allows machine-to-machine authentication.
	// Used in: backend AI agents authenticating with a static client_id/secret pair.
	// Token request includes: client_id, client_secret
	// Returns: access_token (and a refresh_token)
	ClientCredentialsGrant GrantType = "client_credentials"

	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Used in: interactive consent flow (ChatGPT connectors and similar clients).
	// Token request includes: code, code_verifier, redirect_uri
	// Returns: access_token (and a refresh_token)
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for a new token pair.
	// Token request includes: refresh_token
	// Behavior: single use - the presented refresh token is consumed and a
	// rotated replacement is returned.
	RefreshTokenGrant GrantType = "refresh_token"
)

// Supported reports whether the grant type is one the token endpoint handles.
func (g GrantType) Supported() bool {
	switch g {
	case ClientCredentialsGrant, AuthorizationCodeGrant, RefreshTokenGrant:
		return true
	}
	return false
}

// CodeMethodType represents the PKCE (Proof Key for Code Exchange) challenge method.
// Used to bind an authorization code to the client that requested it.
type CodeMethodType string

const (
	// CodeMethodS256 indicates SHA-256 hashing is used for the code challenge.
	// Client sends: code_challenge = BASE64URL(SHA256(code_verifier))
	// Server validates: BASE64URL(SHA256(provided code_verifier)) == stored code_challenge
	CodeMethodS256 CodeMethodType = "S256"

	// CodeMethodPlain means no hashing, the verifier is compared directly.
	// Weaker than S256, kept for clients that cannot hash.
	CodeMethodPlain CodeMethodType = "plain"
)

// Valid reports whether the challenge method is one of the two supported values.
// An empty method defaults to plain per RFC 7636 and is accepted.
func (m CodeMethodType) Valid() bool {
	switch m {
	case CodeMethodS256, CodeMethodPlain, "":
		return true
	}
	return false
}
