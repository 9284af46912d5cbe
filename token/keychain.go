package token

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	apperrors "github.com/venetanji/simplemem-mcp/internal/errors"
)

const (
	signingKeyFileName = "secret_key.txt"
	signingKeyBytes    = 64 // 512 bits of entropy before encoding
)

// GetOrCreateSigningKey loads the process-wide token signing key from dir,
// generating and persisting one with owner-only permissions on first use.
// The key's lifetime is the lifetime of the file, not the process; rotating
// it (deleting the file) invalidates every previously issued token.
func GetOrCreateSigningKey(dir string) ([]byte, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(apperrors.ErrStorage, err.Error())
	}

	path := filepath.Join(dir, signingKeyFileName)
	data, err := os.ReadFile(path)
	if err == nil {
		key := strings.TrimSpace(string(data))
		if key == "" {
			return nil, errors.Wrap(apperrors.ErrStorage, "signing key file is empty")
		}
		return []byte(key), nil
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrap(apperrors.ErrStorage, err.Error())
	}

	buf := make([]byte, signingKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, errors.Wrap(err, "token.GetOrCreateSigningKey rand.Read")
	}
	key := base64.RawURLEncoding.EncodeToString(buf)

	// Write-new-then-rename so a concurrent starter never reads half a key.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(key), 0o600); err != nil {
		return nil, errors.Wrap(apperrors.ErrStorage, err.Error())
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, errors.Wrap(apperrors.ErrStorage, err.Error())
	}

	return []byte(key), nil
}
