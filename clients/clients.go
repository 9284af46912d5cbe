package clients

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// ClientIDPrefix marks generated client identifiers so they are recognizable
// in logs and configuration.
const ClientIDPrefix = "smc_"

const (
	clientIDBytes = 16
	secretBytes   = 48
)

// Client is a registered OAuth caller. The plaintext secret is returned
// exactly once at creation time; only the bcrypt hash is ever stored.
type Client struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	SecretHash  string     `json:"secret_hash"`
	CreatedAt   time.Time  `json:"created_at"`
	Revoked     bool       `json:"revoked"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

// Summary is the externally visible view of a client. It never carries
// secret material in any form.
type Summary struct {
	ID          string    `json:"client_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Revoked     bool      `json:"revoked"`
}

// Credentials is the one-time creation result holding the plaintext secret.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
}

// Summary returns the secretless view of the client.
func (c *Client) Summary() Summary {
	return Summary{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		Revoked:     c.Revoked,
	}
}

// NewClientID generates a prefixed, cryptographically random client id.
func NewClientID() (string, error) {
	suffix, err := randomToken(clientIDBytes)
	if err != nil {
		return "", errors.Wrap(err, "clients.NewClientID")
	}
	return ClientIDPrefix + suffix, nil
}

// NewClientSecret generates a cryptographically random plaintext secret.
func NewClientSecret() (string, error) {
	secret, err := randomToken(secretBytes)
	if err != nil {
		return "", errors.Wrap(err, "clients.NewClientSecret")
	}
	return secret, nil
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashSecret hashes a plaintext client secret for storage.
func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckSecretHash compares a plaintext secret against a stored hash.
// bcrypt's comparison is constant time.
func CheckSecretHash(secret, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	return err == nil
}
