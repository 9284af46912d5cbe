package auth

import "errors"

var (
	InvalidClientErr        = errors.New("invalid client")
	InvalidGrantErr         = errors.New("invalid grant")
	InvalidRedirectErr      = errors.New("invalid redirect uri")
	UnsupportedGrantTypeErr = errors.New("unsupported grant type")
	InvalidAccessTokenErr   = errors.New("invalid access token")
)
