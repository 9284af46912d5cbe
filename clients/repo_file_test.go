package clients_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/venetanji/simplemem-mcp/clients"
	apperrors "github.com/venetanji/simplemem-mcp/internal/errors"
)

func openTestStore(t *testing.T) (*clients.FileStore, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := clients.OpenFileStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestCreate_ReturnsUsableCredentials(t *testing.T) {
	store, _ := openTestStore(t)

	credentials, err := store.Create("openai", "OpenAI integration")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(credentials.ClientID, clients.ClientIDPrefix))
	require.NotEmpty(t, credentials.ClientSecret)
	require.Equal(t, "openai", credentials.Name)

	require.True(t, store.VerifySecret(credentials.ClientID, credentials.ClientSecret))
}

func TestCreate_SecretsAreUnique(t *testing.T) {
	store, _ := openTestStore(t)

	first, err := store.Create("a", "")
	require.NoError(t, err)
	second, err := store.Create("b", "")
	require.NoError(t, err)

	require.NotEqual(t, first.ClientID, second.ClientID)
	require.NotEqual(t, first.ClientSecret, second.ClientSecret)
}

func TestVerifySecret_UniformFailure(t *testing.T) {
	store, _ := openTestStore(t)

	credentials, err := store.Create("openai", "")
	require.NoError(t, err)

	require.False(t, store.VerifySecret(credentials.ClientID, "wrong-secret"))
	require.False(t, store.VerifySecret("smc_does-not-exist", credentials.ClientSecret))
	require.False(t, store.VerifySecret("", ""))
}

func TestRevoke_ClientStopsVerifying(t *testing.T) {
	store, _ := openTestStore(t)

	credentials, err := store.Create("openai", "")
	require.NoError(t, err)
	require.True(t, store.VerifySecret(credentials.ClientID, credentials.ClientSecret))

	require.NoError(t, store.Revoke(credentials.ClientID))
	require.False(t, store.VerifySecret(credentials.ClientID, credentials.ClientSecret))

	record, err := store.Get(credentials.ClientID)
	require.NoError(t, err)
	require.True(t, record.Revoked)
	require.NotNil(t, record.RevokedAt)
}

func TestRevoke_IsIdempotent(t *testing.T) {
	store, _ := openTestStore(t)

	credentials, err := store.Create("openai", "")
	require.NoError(t, err)

	require.NoError(t, store.Revoke(credentials.ClientID))
	require.NoError(t, store.Revoke(credentials.ClientID))
}

func TestRevoke_UnknownClient(t *testing.T) {
	store, _ := openTestStore(t)

	err := store.Revoke("smc_missing")
	require.ErrorIs(t, err, apperrors.ErrClientNotFound)
}

func TestList_SummariesCarryNoSecrets(t *testing.T) {
	store, _ := openTestStore(t)

	credentials, err := store.Create("openai", "OpenAI integration")
	require.NoError(t, err)

	summaries, err := store.List()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, credentials.ClientID, summaries[0].ID)
	require.Equal(t, "openai", summaries[0].Name)
	require.False(t, summaries[0].Revoked)

	encoded, err := json.Marshal(summaries[0])
	require.NoError(t, err)
	require.NotContains(t, string(encoded), credentials.ClientSecret)
	require.NotContains(t, string(encoded), "secret")
}

func TestOpenFileStore_PersistsAcrossReopen(t *testing.T) {
	store, dir := openTestStore(t)

	credentials, err := store.Create("openai", "")
	require.NoError(t, err)
	require.NoError(t, store.Revoke(credentials.ClientID))

	reopened, err := clients.OpenFileStore(dir)
	require.NoError(t, err)

	record, err := reopened.Get(credentials.ClientID)
	require.NoError(t, err)
	require.Equal(t, "openai", record.Name)
	require.True(t, record.Revoked)
	require.False(t, reopened.VerifySecret(credentials.ClientID, credentials.ClientSecret))
}

func TestOpenFileStore_RegistryFileIsOwnerOnly(t *testing.T) {
	store, dir := openTestStore(t)

	_, err := store.Create("openai", "")
	require.NoError(t, err)

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	fileInfo, err := os.Stat(filepath.Join(dir, "clients.json"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fileInfo.Mode().Perm())
}

func TestOpenFileStore_StoresHashesNotSecrets(t *testing.T) {
	store, dir := openTestStore(t)

	credentials, err := store.Create("openai", "")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "clients.json"))
	require.NoError(t, err)
	require.NotContains(t, string(data), credentials.ClientSecret)
	require.Contains(t, string(data), "$2a$") // bcrypt hash marker
}
