package config

import (
	"os"
	"strings"
)

type SecurityConfig interface {
	GetAllowAnyRedirectURI() bool
	GetAllowedRedirectURIs() []string
}

// Default redirect allowlist covers the ChatGPT connector callback URIs,
// the clients this server was built for.
var defaultAllowedRedirectURIs = []string{
	"https://chatgpt.com/connector_platform_oauth_redirect",
	"https://chat.openai.com/connector_platform_oauth_redirect",
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetAllowAnyRedirectURI reports whether redirect validation is disabled.
// Development only; never set this in production.
func (Security) GetAllowAnyRedirectURI() bool {
	value := strings.ToLower(os.Getenv("SIMPLEMEM_OAUTH_ALLOW_ANY_REDIRECT_URI"))
	switch value {
	case "1", "true", "yes":
		return true
	}
	return false
}

// GetAllowedRedirectURIs returns the redirect allowlist. If
// SIMPLEMEM_OAUTH_ALLOWED_REDIRECT_URIS is set (comma-separated) it replaces
// the built-in defaults entirely.
func (Security) GetAllowedRedirectURIs() []string {
	raw := os.Getenv("SIMPLEMEM_OAUTH_ALLOWED_REDIRECT_URIS")
	if raw == "" {
		return defaultAllowedRedirectURIs
	}

	uris := make([]string, 0)
	for _, uri := range strings.Split(raw, ",") {
		if uri = strings.TrimSpace(uri); uri != "" {
			uris = append(uris, uri)
		}
	}
	return uris
}
