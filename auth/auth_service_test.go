package auth_test

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/venetanji/simplemem-mcp/auth"
	"github.com/venetanji/simplemem-mcp/auth/sessions"
	"github.com/venetanji/simplemem-mcp/clients"
	"github.com/venetanji/simplemem-mcp/oauthmodel"
	"github.com/venetanji/simplemem-mcp/token"
)

const (
	testRedirectURI = "https://chatgpt.com/connector_platform_oauth_redirect"
	testVerifier    = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	testState       = "random-state-value"
)

// testFixture holds all test dependencies
type testFixture struct {
	clientStore  *clients.FileStore
	tokenManager *token.Manager
	sessionStore *sessions.Store
	service      *auth.AuthorizationService
	credentials  *clients.Credentials
}

// setupTestFixture creates a new test fixture with a registered client
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	clientStore, err := clients.OpenFileStore(t.TempDir())
	require.NoError(t, err)

	credentials, err := clientStore.Create("openai", "test integration")
	require.NoError(t, err)

	tokenManager := token.New(clientStore, token.NewHMACSigner([]byte("test-signing-key")),
		token.WithTokenExpiry(time.Hour, 30*24*time.Hour),
	)
	sessionStore := sessions.NewStore(sessions.AllowlistPolicy(false, []string{testRedirectURI}))

	service, err := auth.NewAuthorizationService(clientStore, tokenManager, sessionStore)
	require.NoError(t, err)

	return &testFixture{
		clientStore:  clientStore,
		tokenManager: tokenManager,
		sessionStore: sessionStore,
		service:      service,
		credentials:  credentials,
	}
}

func s256Challenge(verifier string) string {
	digest := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(digest[:])
}

func TestNewAuthorizationService_MissingDependencies(t *testing.T) {
	_, err := auth.NewAuthorizationService(nil, nil, nil)
	require.Error(t, err)
}

func TestToken_ClientCredentialsGrant(t *testing.T) {
	f := setupTestFixture(t)

	resp, err := f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.ClientCredentialsGrant,
		ClientID:     f.credentials.ClientID,
		ClientSecret: f.credentials.ClientSecret,
	})

	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "Bearer", resp.TokenType)
	require.Equal(t, 3600, resp.ExpiresIn)

	claims, err := f.tokenManager.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, f.credentials.ClientID, claims.ClientID)
}

func TestToken_WrongClientSecret(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.ClientCredentialsGrant,
		ClientID:     f.credentials.ClientID,
		ClientSecret: "wrong-secret",
	})
	require.ErrorIs(t, err, oauthmodel.ErrInvalidClient)
}

func TestToken_UnknownClient(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.ClientCredentialsGrant,
		ClientID:     "smc_missing",
		ClientSecret: f.credentials.ClientSecret,
	})
	require.ErrorIs(t, err, oauthmodel.ErrInvalidClient)
}

func TestToken_RevokedClientSameError(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.clientStore.Revoke(f.credentials.ClientID))

	_, err := f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.ClientCredentialsGrant,
		ClientID:     f.credentials.ClientID,
		ClientSecret: f.credentials.ClientSecret,
	})
	require.ErrorIs(t, err, oauthmodel.ErrInvalidClient)
}

func TestToken_UnsupportedGrantType(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Token(oauthmodel.TokenRequest{
		GrantType:    "password",
		ClientID:     f.credentials.ClientID,
		ClientSecret: f.credentials.ClientSecret,
	})
	require.ErrorIs(t, err, oauthmodel.ErrUnsupportedGrantType)
}

func TestToken_MissingParameters(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Token(oauthmodel.TokenRequest{
		GrantType: oauthmodel.ClientCredentialsGrant,
		ClientID:  f.credentials.ClientID,
	})
	require.ErrorIs(t, err, oauthmodel.ErrInvalidRequest)
}

func TestAuthorize_CreatesSession(t *testing.T) {
	f := setupTestFixture(t)

	session, err := f.service.Authorize(f.credentials.ClientID, testRedirectURI, s256Challenge(testVerifier), oauthmodel.CodeMethodS256, testState)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	name, err := f.service.SessionClientName(session.ID)
	require.NoError(t, err)
	require.Equal(t, "openai", name)
}

func TestAuthorize_InvalidClient(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Authorize("smc_missing", testRedirectURI, s256Challenge(testVerifier), oauthmodel.CodeMethodS256, testState)
	require.ErrorIs(t, err, oauthmodel.ErrInvalidClient)
}

func TestAuthorize_RevokedClientSameError(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.clientStore.Revoke(f.credentials.ClientID))

	_, err := f.service.Authorize(f.credentials.ClientID, testRedirectURI, s256Challenge(testVerifier), oauthmodel.CodeMethodS256, testState)
	require.ErrorIs(t, err, oauthmodel.ErrInvalidClient)
}

func TestAuthorize_InvalidRedirectURI(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Authorize(f.credentials.ClientID, "https://evil.example.com/cb", s256Challenge(testVerifier), oauthmodel.CodeMethodS256, testState)
	require.ErrorIs(t, err, oauthmodel.ErrInvalidRedirectURI)
	require.Equal(t, 0, f.sessionStore.Len())
}

func TestToken_ExchangeCodeSuccess(t *testing.T) {
	f := setupTestFixture(t)

	session, err := f.service.Authorize(f.credentials.ClientID, testRedirectURI, s256Challenge(testVerifier), oauthmodel.CodeMethodS256, testState)
	require.NoError(t, err)

	result, err := f.service.Approve(session.ID)
	require.NoError(t, err)
	require.NotEmpty(t, result.Code)
	require.Equal(t, testRedirectURI, result.RedirectURI)
	require.Equal(t, testState, result.State)

	resp, err := f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.AuthorizationCodeGrant,
		Code:         result.Code,
		CodeVerifier: testVerifier,
		RedirectURI:  testRedirectURI,
	})
	require.NoError(t, err)

	claims, err := f.tokenManager.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, f.credentials.ClientID, claims.ClientID)
}

func TestToken_InvalidCode(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.AuthorizationCodeGrant,
		Code:         "no-such-code",
		CodeVerifier: testVerifier,
	})
	require.ErrorIs(t, err, oauthmodel.ErrInvalidGrant)
}

func TestToken_WrongVerifierSameError(t *testing.T) {
	f := setupTestFixture(t)

	session, err := f.service.Authorize(f.credentials.ClientID, testRedirectURI, s256Challenge(testVerifier), oauthmodel.CodeMethodS256, testState)
	require.NoError(t, err)
	result, err := f.service.Approve(session.ID)
	require.NoError(t, err)

	_, err = f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.AuthorizationCodeGrant,
		Code:         result.Code,
		CodeVerifier: "wrong-verifier",
		RedirectURI:  testRedirectURI,
	})
	require.ErrorIs(t, err, oauthmodel.ErrInvalidGrant)
}

func TestRefreshToken_RotatesAndConsumes(t *testing.T) {
	f := setupTestFixture(t)

	first, err := f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.ClientCredentialsGrant,
		ClientID:     f.credentials.ClientID,
		ClientSecret: f.credentials.ClientSecret,
	})
	require.NoError(t, err)

	second, err := f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.RefreshTokenGrant,
		RefreshToken: first.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEmpty(t, second.AccessToken)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The first refresh token is consumed.
	_, err = f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.RefreshTokenGrant,
		RefreshToken: first.RefreshToken,
	})
	require.ErrorIs(t, err, oauthmodel.ErrInvalidGrant)

	// The rotated one still works.
	_, err = f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.RefreshTokenGrant,
		RefreshToken: second.RefreshToken,
	})
	require.NoError(t, err)
}

func TestRefreshToken_RevokedClient(t *testing.T) {
	f := setupTestFixture(t)

	resp, err := f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.ClientCredentialsGrant,
		ClientID:     f.credentials.ClientID,
		ClientSecret: f.credentials.ClientSecret,
	})
	require.NoError(t, err)

	require.NoError(t, f.clientStore.Revoke(f.credentials.ClientID))

	_, err = f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.RefreshTokenGrant,
		RefreshToken: resp.RefreshToken,
	})
	require.ErrorIs(t, err, oauthmodel.ErrInvalidGrant)
}

func TestDeny_ReturnsRedirectTarget(t *testing.T) {
	f := setupTestFixture(t)

	session, err := f.service.Authorize(f.credentials.ClientID, testRedirectURI, s256Challenge(testVerifier), oauthmodel.CodeMethodS256, testState)
	require.NoError(t, err)

	redirectURI, state, err := f.service.Deny(session.ID)
	require.NoError(t, err)
	require.Equal(t, testRedirectURI, redirectURI)
	require.Equal(t, testState, state)
	require.Equal(t, 0, f.sessionStore.Len())
}

func TestTokenInfo_ValidToken(t *testing.T) {
	f := setupTestFixture(t)

	resp, err := f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.ClientCredentialsGrant,
		ClientID:     f.credentials.ClientID,
		ClientSecret: f.credentials.ClientSecret,
	})
	require.NoError(t, err)

	claims, err := f.service.TokenInfo(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, f.credentials.ClientID, claims.ClientID)
	require.Equal(t, "openai", claims.ClientName)
}

func TestTokenInfo_CollapsesFailureCauses(t *testing.T) {
	f := setupTestFixture(t)

	resp, err := f.service.Token(oauthmodel.TokenRequest{
		GrantType:    oauthmodel.ClientCredentialsGrant,
		ClientID:     f.credentials.ClientID,
		ClientSecret: f.credentials.ClientSecret,
	})
	require.NoError(t, err)

	_, err = f.service.TokenInfo("garbage")
	require.ErrorIs(t, err, auth.InvalidAccessTokenErr)

	// A refresh token is not a valid bearer token either.
	_, err = f.service.TokenInfo(resp.RefreshToken)
	require.ErrorIs(t, err, auth.InvalidAccessTokenErr)
}
