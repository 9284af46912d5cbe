package oauthmodel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/venetanji/simplemem-mcp/oauthmodel"
)

func TestTokenRequest_Validate(t *testing.T) {
	t.Run("client credentials complete", func(t *testing.T) {
		req := oauthmodel.TokenRequest{
			GrantType:    oauthmodel.ClientCredentialsGrant,
			ClientID:     "smc_abc",
			ClientSecret: "secret",
		}
		require.NoError(t, req.Validate())
	})

	t.Run("client credentials missing secret", func(t *testing.T) {
		req := oauthmodel.TokenRequest{
			GrantType: oauthmodel.ClientCredentialsGrant,
			ClientID:  "smc_abc",
		}
		require.ErrorIs(t, req.Validate(), oauthmodel.ErrInvalidRequest)
	})

	t.Run("client credentials whitespace secret", func(t *testing.T) {
		req := oauthmodel.TokenRequest{
			GrantType:    oauthmodel.ClientCredentialsGrant,
			ClientID:     "smc_abc",
			ClientSecret: "   ",
		}
		require.ErrorIs(t, req.Validate(), oauthmodel.ErrInvalidRequest)
	})

	t.Run("authorization code complete", func(t *testing.T) {
		req := oauthmodel.TokenRequest{
			GrantType:    oauthmodel.AuthorizationCodeGrant,
			Code:         "some-code",
			CodeVerifier: "some-verifier",
		}
		require.NoError(t, req.Validate())
	})

	t.Run("authorization code missing verifier", func(t *testing.T) {
		req := oauthmodel.TokenRequest{
			GrantType: oauthmodel.AuthorizationCodeGrant,
			Code:      "some-code",
		}
		require.ErrorIs(t, req.Validate(), oauthmodel.ErrInvalidRequest)
	})

	t.Run("refresh token complete", func(t *testing.T) {
		req := oauthmodel.TokenRequest{
			GrantType:    oauthmodel.RefreshTokenGrant,
			RefreshToken: "some-refresh-token",
		}
		require.NoError(t, req.Validate())
	})

	t.Run("refresh token missing", func(t *testing.T) {
		req := oauthmodel.TokenRequest{GrantType: oauthmodel.RefreshTokenGrant}
		require.ErrorIs(t, req.Validate(), oauthmodel.ErrInvalidRequest)
	})

	t.Run("unsupported grant", func(t *testing.T) {
		req := oauthmodel.TokenRequest{GrantType: "password"}
		require.ErrorIs(t, req.Validate(), oauthmodel.ErrUnsupportedGrantType)
	})

	t.Run("empty grant", func(t *testing.T) {
		req := oauthmodel.TokenRequest{}
		require.ErrorIs(t, req.Validate(), oauthmodel.ErrUnsupportedGrantType)
	})
}

func TestCodeMethodType_Valid(t *testing.T) {
	require.True(t, oauthmodel.CodeMethodS256.Valid())
	require.True(t, oauthmodel.CodeMethodPlain.Valid())
	require.True(t, oauthmodel.CodeMethodType("").Valid())
	require.False(t, oauthmodel.CodeMethodType("S512").Valid())
}
