package sessions

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	apperrors "github.com/venetanji/simplemem-mcp/internal/errors"
	"github.com/venetanji/simplemem-mcp/oauthmodel"
)

// RedirectPolicy decides whether a redirect URI may receive authorization
// codes. Evaluated before any session state is created.
type RedirectPolicy func(redirectURI string) bool

// AllowlistPolicy builds a RedirectPolicy from an explicit allowlist, or an
// allow-all policy when allowAny is set (development only).
func AllowlistPolicy(allowAny bool, allowed []string) RedirectPolicy {
	if allowAny {
		return func(string) bool { return true }
	}
	uris := make(map[string]struct{}, len(allowed))
	for _, uri := range allowed {
		uris[uri] = struct{}{}
	}
	return func(redirectURI string) bool {
		_, ok := uris[redirectURI]
		return ok
	}
}

// Store holds in-flight interactive consent sessions. Everything is in
// memory and guarded by a single mutex, which makes code redemption an
// atomic check-and-mark: two concurrent redemptions of the same code get
// exactly one success. Expired sessions are swept opportunistically on
// access.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session // by session id
	byCode   map[string]string   // code -> session id

	policy         RedirectPolicy
	consentTimeout time.Duration // window between begin and approve
	codeTimeout    time.Duration // window between approve and redeem
	nowFunc        func() time.Time
}

type StoreOption func(*Store)

func WithConsentTimeout(timeout time.Duration) StoreOption {
	return func(s *Store) {
		s.consentTimeout = timeout
	}
}

func WithCodeTimeout(timeout time.Duration) StoreOption {
	return func(s *Store) {
		s.codeTimeout = timeout
	}
}

func WithNowFunc(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowFunc = now
	}
}

func NewStore(policy RedirectPolicy, options ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		byCode:   make(map[string]string),
		policy:   policy,
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.consentTimeout <= 0 {
		s.consentTimeout = 15 * time.Minute
	}
	if s.codeTimeout <= 0 {
		s.codeTimeout = 10 * time.Minute
	}
	return s
}

// Begin starts a consent session after checking the redirect policy and the
// PKCE parameters. No state is created when either check fails.
func (s *Store) Begin(clientID, redirectURI, codeChallenge string, method oauthmodel.CodeMethodType, state string) (*Session, error) {
	if !s.policy(redirectURI) {
		return nil, apperrors.ErrInvalidRedirectURI
	}
	if codeChallenge == "" || !method.Valid() {
		return nil, oauthmodel.ErrInvalidCodeChallenge
	}

	now := s.nowFunc()
	session := &Session{
		ID:                  uuid.New().String(),
		ClientID:            clientID,
		RedirectURI:         redirectURI,
		CodeChallenge:       codeChallenge,
		CodeChallengeMethod: method,
		State:               state,
		Status:              StateStarted,
		CreatedAt:           now,
		ExpiresAt:           now.Add(s.consentTimeout),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(now)
	s.sessions[session.ID] = session

	copied := *session
	return &copied, nil
}

// Get returns a copy of the session, for rendering the consent page.
func (s *Store) Get(sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	if session.expired(s.nowFunc()) {
		return nil, apperrors.ErrSessionExpired
	}
	copied := *session
	return &copied, nil
}

// Approve records user consent and mints the single-use authorization code.
// Only a session in the started state can be approved, and only once; the
// code's own expiry countdown starts here.
func (s *Store) Approve(sessionID string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return "", apperrors.ErrSessionNotFound
	}
	now := s.nowFunc()
	if session.expired(now) {
		s.discard(session)
		return "", apperrors.ErrSessionExpired
	}
	if session.Status != StateStarted {
		return "", apperrors.ErrInvalidGrant
	}

	session.Code = code
	session.Status = StateApproved
	session.ExpiresAt = now.Add(s.codeTimeout)
	s.byCode[code] = session.ID
	return code, nil
}

// Deny discards a session without issuing a code.
func (s *Store) Deny(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		s.discard(session)
	}
}

// Redeem exchanges an authorization code plus PKCE verifier for the client
// id the session was started with. The code is consumed exactly once:
// unknown, already-consumed and expired codes all fail, and the consumed
// mark is set under the store lock before the result is returned.
func (s *Store) Redeem(code, verifier, redirectURI string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID, ok := s.byCode[code]
	if !ok {
		return "", apperrors.ErrInvalidCode
	}
	session := s.sessions[sessionID]
	if session == nil {
		return "", apperrors.ErrInvalidCode
	}
	if session.Consumed {
		return "", apperrors.ErrCodeConsumed
	}
	now := s.nowFunc()
	if session.expired(now) {
		s.discard(session)
		return "", apperrors.ErrSessionExpired
	}
	if redirectURI != "" && redirectURI != session.RedirectURI {
		return "", apperrors.ErrInvalidGrant
	}
	if !verifierMatches(verifier, session.CodeChallenge, session.CodeChallengeMethod) {
		return "", apperrors.ErrPKCEMismatch
	}

	session.Consumed = true
	session.Status = StateRedeemed
	clientID := session.ClientID
	s.discard(session)
	return clientID, nil
}

// Len reports the number of live sessions, for tests and diagnostics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// discard removes a session and its code index entry. Caller holds the lock.
func (s *Store) discard(session *Session) {
	if session.Code != "" {
		delete(s.byCode, session.Code)
	}
	delete(s.sessions, session.ID)
}

// sweep drops expired, unredeemed sessions. Caller holds the lock.
func (s *Store) sweep(now time.Time) {
	for _, session := range s.sessions {
		if session.expired(now) {
			s.discard(session)
		}
	}
}

func verifierMatches(verifier, challenge string, method oauthmodel.CodeMethodType) bool {
	if verifier == "" || challenge == "" {
		return false
	}

	var computed string
	switch method {
	case oauthmodel.CodeMethodS256:
		digest := sha256.Sum256([]byte(verifier))
		computed = base64.RawURLEncoding.EncodeToString(digest[:])
	default: // plain, or unset which defaults to plain per RFC 7636
		computed = verifier
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}

func generateCode() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "sessions.generateCode rand.Read")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
