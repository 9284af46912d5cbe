package config

import (
	"os"
	"strconv"
	"time"
)

type OAuthConfig interface {
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetAuthCodeTimeout() time.Duration
	GetTokenLeeway() time.Duration
	GetCodeGenerationLength() int
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GetAccessTokenExpiry returns the access token TTL.
// SIMPLEMEM_TOKEN_TTL is a duration in seconds; defaults to one hour.
func (OAuth) GetAccessTokenExpiry() time.Duration {
	return secondsEnv("SIMPLEMEM_TOKEN_TTL", time.Hour)
}

// GetRefreshTokenExpiry returns the refresh token TTL, defaulting to 30 days.
func (OAuth) GetRefreshTokenExpiry() time.Duration {
	return secondsEnv("SIMPLEMEM_REFRESH_TOKEN_TTL", 30*24*time.Hour)
}

// GetAuthCodeTimeout returns how long an approved authorization code remains
// redeemable. Minutes, not hours.
func (OAuth) GetAuthCodeTimeout() time.Duration {
	return secondsEnv("SIMPLEMEM_AUTH_CODE_TTL", 10*time.Minute)
}

// GetTokenLeeway returns the clock-skew tolerance applied when verifying
// token expiry and issue time.
func (OAuth) GetTokenLeeway() time.Duration {
	return secondsEnv("SIMPLEMEM_TOKEN_LEEWAY", 60*time.Second)
}

func (OAuth) GetCodeGenerationLength() int {
	return 32 // 32 bytes = 256 bits
}

func secondsEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
