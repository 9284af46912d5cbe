package oauthmodel

import "errors"

var (
	ErrUnsupportedGrantType = errors.New("unsupported grant type")
	ErrInvalidClient        = errors.New("invalid client credentials")
	ErrInvalidGrant         = errors.New("invalid grant")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInvalidRedirectURI   = errors.New("redirect uri not allowed")
	ErrInvalidCodeChallenge = errors.New("invalid code challenge")
)
