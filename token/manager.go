package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/venetanji/simplemem-mcp/clients"
	apperrors "github.com/venetanji/simplemem-mcp/internal/errors"
)

// Kind distinguishes access tokens from refresh tokens in the "type" claim.
type Kind string

const (
	KindAccess  Kind = "access_token"
	KindRefresh Kind = "refresh_token"
)

// Claims is the decoded, validated content of a token.
type Claims struct {
	ClientID   string
	ClientName string
	Kind       Kind
	IssuedAt   time.Time
	ExpiresAt  time.Time
	JTI        string
}

// Manager issues and validates signed, time-limited tokens. Tokens are
// stateless: nothing is stored per token beyond the signing key, and client
// revocation is enforced by re-checking the credential store on every
// validation rather than by a token blacklist.
type Manager struct {
	clientStore        clients.Store
	signer             Signer
	issuer             string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	leeway             time.Duration
	consumed           ConsumedTokenRegistry
	nowFunc            func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
		m.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithLeeway(leeway time.Duration) ManagerOption {
	return func(m *Manager) {
		m.leeway = leeway
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithConsumedTokenRegistry(registry ConsumedTokenRegistry) ManagerOption {
	return func(m *Manager) {
		m.consumed = registry
	}
}

func New(clientStore clients.Store, signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		clientStore: clientStore,
		signer:      signer,
		consumed:    NewInMemoryConsumedTokenRegistry(),
		nowFunc:     time.Now,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry <= 0 {
		m.accessTokenExpiry = time.Hour
	}
	if m.refreshTokenExpiry <= 0 {
		m.refreshTokenExpiry = 30 * 24 * time.Hour
	}
	if m.leeway <= 0 {
		m.leeway = time.Minute
	}
	return m
}

// AccessTokenExpiry returns the configured access token TTL.
func (m *Manager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

// IssueAccessToken builds and signs an access token for the client. Fails
// if the client is unknown or revoked.
func (m *Manager) IssueAccessToken(clientID string) (string, error) {
	return m.issue(clientID, KindAccess, m.accessTokenExpiry)
}

// IssueRefreshToken builds and signs a single-use refresh token.
func (m *Manager) IssueRefreshToken(clientID string) (string, error) {
	return m.issue(clientID, KindRefresh, m.refreshTokenExpiry)
}

func (m *Manager) issue(clientID string, kind Kind, ttl time.Duration) (string, error) {
	client, err := m.clientStore.Get(clientID)
	if err != nil {
		return "", errors.Wrap(err, "Manager.issue Get")
	}
	if client.Revoked {
		return "", apperrors.ErrClientRevoked
	}

	now := m.nowFunc()
	claims := jwt.MapClaims{
		"sub":  clientID,                     // The subject: the client this token asserts
		"name": client.Name,                  // Client display name, echoed by /oauth/info
		"type": string(kind),                 // access_token or refresh_token
		"iat":  now.Unix(),                   // Issued At
		"exp":  now.Add(ttl).Unix(),          // Expiry
		"jti":  uuid.New().String(),          // Unique token id, single-use tracking for refresh
	}
	if m.issuer != "" {
		claims["iss"] = m.issuer
	}

	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "Manager.issue Sign")
	}
	return signed, nil
}

// ValidateToken verifies the signature and expiry of an access token and
// re-checks that the referenced client still exists and is not revoked.
// Error causes are classified for logging; callers must present them
// uniformly to requesters.
func (m *Manager) ValidateToken(rawToken string) (*Claims, error) {
	claims, err := m.parse(rawToken)
	if err != nil {
		return nil, err
	}
	if claims.Kind != KindAccess {
		return nil, apperrors.ErrInvalidToken
	}
	if err := m.checkClient(claims.ClientID); err != nil {
		return nil, err
	}
	return claims, nil
}

// RedeemRefreshToken verifies a refresh token and consumes it, returning
// the client id it was issued to. A refresh token can be redeemed exactly
// once; concurrent redemption attempts yield a single winner.
func (m *Manager) RedeemRefreshToken(rawToken string) (string, error) {
	claims, err := m.parse(rawToken)
	if err != nil {
		return "", err
	}
	if claims.Kind != KindRefresh {
		return "", apperrors.ErrInvalidToken
	}
	if err := m.checkClient(claims.ClientID); err != nil {
		return "", err
	}
	if claims.JTI == "" || !m.consumed.Consume(claims.JTI, claims.ExpiresAt) {
		return "", apperrors.ErrRefreshTokenConsumed
	}
	return claims.ClientID, nil
}

// CleanupConsumedTokens drops registry entries whose tokens have expired.
func (m *Manager) CleanupConsumedTokens() {
	if m.consumed != nil {
		m.consumed.Cleanup()
	}
}

func (m *Manager) parse(rawToken string) (*Claims, error) {
	parsed, err := jwt.Parse(
		rawToken,
		m.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithLeeway(m.leeway),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !parsed.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrTokenMalformed
	}

	sub, _ := mapClaims["sub"].(string)
	name, _ := mapClaims["name"].(string)
	kind, _ := mapClaims["type"].(string)
	jti, _ := mapClaims["jti"].(string)
	iat, _ := mapClaims["iat"].(float64)
	exp, _ := mapClaims["exp"].(float64)

	if sub == "" || exp == 0 {
		return nil, apperrors.ErrTokenMalformed
	}

	return &Claims{
		ClientID:   sub,
		ClientName: name,
		Kind:       Kind(kind),
		IssuedAt:   time.Unix(int64(iat), 0).UTC(),
		ExpiresAt:  time.Unix(int64(exp), 0).UTC(),
		JTI:        jti,
	}, nil
}

func (m *Manager) checkClient(clientID string) error {
	client, err := m.clientStore.Get(clientID)
	if err != nil {
		return errors.Wrap(apperrors.ErrClientNotFound, clientID)
	}
	if client.Revoked {
		return errors.Wrap(apperrors.ErrClientRevoked, clientID)
	}
	return nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.Wrap(apperrors.ErrTokenExpired, err.Error())
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.Wrap(apperrors.ErrBadSignature, err.Error())
	case errors.Is(err, jwt.ErrTokenMalformed):
		return errors.Wrap(apperrors.ErrTokenMalformed, err.Error())
	default:
		return errors.Wrap(apperrors.ErrInvalidToken, err.Error())
	}
}
