package auth

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/venetanji/simplemem-mcp/auth/sessions"
	"github.com/venetanji/simplemem-mcp/clients"
	apperrors "github.com/venetanji/simplemem-mcp/internal/errors"
	"github.com/venetanji/simplemem-mcp/oauthmodel"
	"github.com/venetanji/simplemem-mcp/token"
)

// AuthorizationService implements the two supported grant flows on top of
// the credential store, the token manager and the consent session store.
// Internal failure causes are logged here and collapsed to the protocol
// sentinels of oauthmodel before anything reaches a caller, so responses
// never distinguish unknown client from revoked client from wrong secret.
type AuthorizationService struct {
	clientStore  clients.Store
	tokenManager *token.Manager
	sessionStore *sessions.Store
}

// ConsentResult is what the consent handler needs to redirect the user
// agent back to the client.
type ConsentResult struct {
	Code        string
	RedirectURI string
	State       string
}

func NewAuthorizationService(clientStore clients.Store, tokenManager *token.Manager, sessionStore *sessions.Store) (*AuthorizationService, error) {
	if clientStore == nil || tokenManager == nil || sessionStore == nil {
		return nil, errors.New("auth.NewAuthorizationService: missing dependency")
	}
	return &AuthorizationService{
		clientStore:  clientStore,
		tokenManager: tokenManager,
		sessionStore: sessionStore,
	}, nil
}

// Token handles the /oauth/token exchange for all three grant types.
func (s *AuthorizationService) Token(req oauthmodel.TokenRequest) (*oauthmodel.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var clientID string
	switch req.GrantType {
	case oauthmodel.ClientCredentialsGrant:
		if !s.clientStore.VerifySecret(req.ClientID, req.ClientSecret) {
			log.Warn().Str("grant_type", string(req.GrantType)).Msg("client credential verification failed")
			return nil, oauthmodel.ErrInvalidClient
		}
		clientID = req.ClientID

	case oauthmodel.AuthorizationCodeGrant:
		resolved, err := s.sessionStore.Redeem(req.Code, req.CodeVerifier, req.RedirectURI)
		if err != nil {
			log.Warn().Err(err).Str("grant_type", string(req.GrantType)).Msg("code redemption failed")
			return nil, oauthmodel.ErrInvalidGrant
		}
		clientID = resolved

	case oauthmodel.RefreshTokenGrant:
		resolved, err := s.tokenManager.RedeemRefreshToken(req.RefreshToken)
		if err != nil {
			log.Warn().Err(err).Str("grant_type", string(req.GrantType)).Msg("refresh redemption failed")
			return nil, oauthmodel.ErrInvalidGrant
		}
		clientID = resolved

	default:
		return nil, oauthmodel.ErrUnsupportedGrantType
	}

	return s.generateTokenResponse(clientID, req.Scope)
}

func (s *AuthorizationService) generateTokenResponse(clientID, scope string) (*oauthmodel.TokenResponse, error) {
	accessToken, err := s.tokenManager.IssueAccessToken(clientID)
	if err != nil {
		log.Error().Err(err).Msg("access token issuance failed")
		return nil, oauthmodel.ErrInvalidGrant
	}
	refreshToken, err := s.tokenManager.IssueRefreshToken(clientID)
	if err != nil {
		log.Error().Err(err).Msg("refresh token issuance failed")
		return nil, oauthmodel.ErrInvalidGrant
	}

	return &oauthmodel.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenManager.AccessTokenExpiry().Seconds()),
		RefreshToken: refreshToken,
		Scope:        scope,
	}, nil
}

// Authorize begins an interactive consent session. The redirect policy and
// PKCE parameters are checked before any state is created; an unknown or
// revoked client is rejected with the same uniform error.
func (s *AuthorizationService) Authorize(clientID, redirectURI, codeChallenge string, method oauthmodel.CodeMethodType, state string) (*sessions.Session, error) {
	client, err := s.clientStore.Get(clientID)
	if err != nil || client.Revoked {
		log.Warn().Str("client_id", clientID).Msg("authorization attempt for unusable client")
		return nil, oauthmodel.ErrInvalidClient
	}

	session, err := s.sessionStore.Begin(clientID, redirectURI, codeChallenge, method, state)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidRedirectURI) {
			return nil, oauthmodel.ErrInvalidRedirectURI
		}
		return nil, err
	}
	return session, nil
}

// SessionClientName resolves the client display name for the consent page.
func (s *AuthorizationService) SessionClientName(sessionID string) (string, error) {
	session, err := s.sessionStore.Get(sessionID)
	if err != nil {
		return "", oauthmodel.ErrInvalidGrant
	}
	client, err := s.clientStore.Get(session.ClientID)
	if err != nil {
		return "", oauthmodel.ErrInvalidGrant
	}
	return client.Name, nil
}

// Approve records consent for a pending session and returns the redirect
// target along with the freshly minted single-use code.
func (s *AuthorizationService) Approve(sessionID string) (*ConsentResult, error) {
	session, err := s.sessionStore.Get(sessionID)
	if err != nil {
		log.Warn().Err(err).Msg("consent approval for unusable session")
		return nil, oauthmodel.ErrInvalidGrant
	}

	code, err := s.sessionStore.Approve(sessionID)
	if err != nil {
		log.Warn().Err(err).Msg("consent approval failed")
		return nil, oauthmodel.ErrInvalidGrant
	}

	return &ConsentResult{
		Code:        code,
		RedirectURI: session.RedirectURI,
		State:       session.State,
	}, nil
}

// Deny discards a pending session and returns where to send the user agent.
func (s *AuthorizationService) Deny(sessionID string) (redirectURI, state string, err error) {
	session, err := s.sessionStore.Get(sessionID)
	if err != nil {
		return "", "", oauthmodel.ErrInvalidGrant
	}
	s.sessionStore.Deny(sessionID)
	return session.RedirectURI, session.State, nil
}

// TokenInfo validates a bearer token and returns its claims. All failure
// causes collapse to InvalidAccessTokenErr for the caller; the cause is
// logged server-side.
func (s *AuthorizationService) TokenInfo(rawToken string) (*token.Claims, error) {
	claims, err := s.tokenManager.ValidateToken(rawToken)
	if err != nil {
		log.Debug().Err(err).Msg("token validation failed")
		return nil, InvalidAccessTokenErr
	}
	return claims, nil
}
