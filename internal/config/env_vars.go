package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	baseURLVar     = "BASE_URL"
	oauthDirVar    = "SIMPLEMEM_OAUTH_DIR"
	apiEndpointVar = "SIMPLEMEM_API_ENDPOINT"
	apiURLAliasVar = "SIMPLEMEM_API_URL"

	defaultAPIEndpoint = "http://localhost:8000"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "SimpleMem MCP")
}

// GetBaseURL returns the base URL for the OAuth server (e.g. "https://auth.example.com").
// This is used for issuer URLs and all discovery endpoint metadata.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

// GetOAuthDir returns the directory holding the client registry and signing
// key. Defaults to ~/.simplemem-mcp/oauth.
func (EnvVars) GetOAuthDir() string {
	if dir := os.Getenv(oauthDirVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".simplemem-mcp", "oauth")
	}
	return filepath.Join(home, ".simplemem-mcp", "oauth")
}

// GetAPIEndpoint returns the upstream simplemem-api endpoint.
// SIMPLEMEM_API_URL is accepted as an alias.
func (EnvVars) GetAPIEndpoint() string {
	if endpoint := os.Getenv(apiEndpointVar); endpoint != "" {
		return endpoint
	}
	return GetEnv(apiURLAliasVar, defaultAPIEndpoint)
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
