package server

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/venetanji/simplemem-mcp/oauthmodel"
)

// consentTemplate is the minimal consent page. The session id travels in
// the form body, never in a URL the client could observe.
var consentTemplate = template.Must(template.New("consent").Parse(`<!DOCTYPE html>
<html>
<head><title>Authorize {{.ClientName}}</title></head>
<body>
  <h1>Authorization Request</h1>
  <p><strong>{{.ClientName}}</strong> is requesting access to your memory server.</p>
  <form method="post" action="{{.Action}}">
    <input type="hidden" name="session_id" value="{{.SessionID}}">
    <button type="submit" name="decision" value="approve">Approve</button>
    <button type="submit" name="decision" value="deny">Deny</button>
  </form>
</body>
</html>
`))

type consentPageData struct {
	ClientName string
	SessionID  string
	Action     string
}

// Authorize begins the interactive consent flow: validates the client, the
// redirect policy and the PKCE parameters, creates a session and renders
// the consent page. Rejected requests never create session state.
func (s *Server) Authorize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		responseType := query.Get("response_type")
		if responseType != "" && responseType != "code" {
			http.Error(w, "unsupported response_type", http.StatusBadRequest)
			return
		}

		session, err := s.auth.Authorize(
			query.Get("client_id"),
			query.Get("redirect_uri"),
			query.Get("code_challenge"),
			oauthmodel.CodeMethodType(query.Get("code_challenge_method")),
			query.Get("state"),
		)
		if err != nil {
			http.Error(w, "Invalid authorization request", http.StatusBadRequest)
			return
		}

		clientName, err := s.auth.SessionClientName(session.ID)
		if err != nil {
			http.Error(w, "Invalid authorization request", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		_ = consentTemplate.Execute(w, consentPageData{
			ClientName: clientName,
			SessionID:  session.ID,
			Action:     RouteOAuthAuthorize,
		})
	}
}

// Consent handles the consent form submission. Approval mints the
// single-use code and redirects the user agent back to the client;
// denial redirects with error=access_denied.
func (s *Server) Consent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		sessionID := r.FormValue("session_id")
		if r.FormValue("decision") != "approve" {
			redirectURI, state, err := s.auth.Deny(sessionID)
			if err != nil {
				http.Error(w, "Invalid consent submission", http.StatusBadRequest)
				return
			}
			redirectWithParams(w, r, redirectURI, url.Values{
				"error": []string{"access_denied"},
				"state": []string{state},
			})
			return
		}

		result, err := s.auth.Approve(sessionID)
		if err != nil {
			http.Error(w, "Invalid consent submission", http.StatusBadRequest)
			return
		}

		params := url.Values{"code": []string{result.Code}}
		if result.State != "" {
			params.Set("state", result.State)
		}
		redirectWithParams(w, r, result.RedirectURI, params)
	}
}

// redirectWithParams appends query parameters to the callback URI and
// redirects the user agent there.
func redirectWithParams(w http.ResponseWriter, r *http.Request, callbackURI string, params url.Values) {
	u, err := url.Parse(callbackURI)
	if err != nil {
		http.Error(w, "invalid redirect URI", http.StatusBadRequest)
		return
	}

	q := u.Query()
	for key, values := range params {
		for _, value := range values {
			if value != "" {
				q.Set(key, value)
			}
		}
	}
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}
