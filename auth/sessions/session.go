package sessions

import (
	"time"

	"github.com/venetanji/simplemem-mcp/oauthmodel"
)

// State tracks where an interactive consent attempt is in its lifecycle.
// Terminal states (Redeemed, Expired) have no outgoing transitions.
type State string

const (
	StateStarted  State = "started"
	StateApproved State = "approved"
	StateRedeemed State = "redeemed"
	StateExpired  State = "expired"
)

// Session is the ephemeral in-memory state of one interactive consent flow
// attempt: the PKCE challenge, the redirect target, and - once consent is
// given - the single-use authorization code.
type Session struct {
	ID                  string
	ClientID            string
	RedirectURI         string
	CodeChallenge       string
	CodeChallengeMethod oauthmodel.CodeMethodType
	State               string // opaque client CSRF value, echoed on redirect
	Code                string // set on approval, single use
	Status              State
	CreatedAt           time.Time
	ExpiresAt           time.Time
	Consumed            bool
}

func (s *Session) expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
