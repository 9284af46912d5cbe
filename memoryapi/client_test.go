package memoryapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/venetanji/simplemem-mcp/memoryapi"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *memoryapi.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return memoryapi.NewClient(ts.URL)
}

func TestHealth(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/health", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":                "ok",
			"version":               "1.2.3",
			"simplemem_initialized": true,
		})
	})

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", status.Status)
	require.Equal(t, "1.2.3", status.Version)
	require.True(t, status.Initialized)
}

func TestAddDialogue_OmitsEmptyTimestamp(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/dialogue", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "user", payload["speaker"])
		require.Equal(t, "hello", payload["content"])
		_, hasTimestamp := payload["timestamp"]
		require.False(t, hasTimestamp)

		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	require.NoError(t, client.AddDialogue(context.Background(), "user", "hello", ""))
}

func TestQuery(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "what happened?", payload["query"])
		_ = json.NewEncoder(w).Encode(map[string]string{"answer": "nothing much"})
	})

	result, err := client.Query(context.Background(), "what happened?")
	require.NoError(t, err)
	require.Equal(t, "nothing much", result.Answer)
}

func TestRetrieve_PassesLimit(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/retrieve", r.URL.Path)
		require.Equal(t, "5", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"entry_id": "e1", "lossless_restatement": "first"},
			{"entry_id": "e2", "lossless_restatement": "second"},
		})
	})

	entries, err := client.Retrieve(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "e1", entries[0].EntryID)
	require.Equal(t, "second", entries[1].LosslessRestatement)
}

func TestDo_NonOKStatus(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Health(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
}
