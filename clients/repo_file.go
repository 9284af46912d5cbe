package clients

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	apperrors "github.com/venetanji/simplemem-mcp/internal/errors"
)

const registryFileName = "clients.json"

// FileStore is a file-backed Store. The whole credential set lives in a
// single JSON file inside an owner-only directory; every mutation rewrites
// the file via write-new-then-rename so a crash mid-write cannot corrupt it.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	records map[string]*Client

	// dummyHash is compared against when a client is unknown or revoked so
	// that verification takes the same time on every failure path.
	dummyHash string

	nowFunc func() time.Time
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(now func() time.Time) FileStoreOption {
	return func(s *FileStore) {
		s.nowFunc = now
	}
}

// OpenFileStore loads (or initializes) the client registry under dir.
// The directory is created with owner-only traversal if absent.
func OpenFileStore(dir string, options ...FileStoreOption) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(apperrors.ErrStorage, err.Error())
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return nil, errors.Wrap(apperrors.ErrStorage, err.Error())
	}

	secret, err := NewClientSecret()
	if err != nil {
		return nil, err
	}
	dummyHash, err := HashSecret(secret)
	if err != nil {
		return nil, errors.Wrap(err, "clients.OpenFileStore dummy hash")
	}

	s := &FileStore{
		path:      filepath.Join(dir, registryFileName),
		records:   make(map[string]*Client),
		dummyHash: dummyHash,
		nowFunc:   time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(apperrors.ErrStorage, err.Error())
	}

	records := make(map[string]*Client)
	if err := json.Unmarshal(data, &records); err != nil {
		return errors.Wrap(apperrors.ErrStorage, err.Error())
	}
	for id, record := range records {
		record.ID = id
		s.records[id] = record
	}
	return nil
}

// persist writes the whole credential set atomically. Caller must hold the
// write lock.
func (s *FileStore) persist() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return errors.Wrap(apperrors.ErrStorage, err.Error())
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(apperrors.ErrStorage, err.Error())
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return nil
}

// Create registers a new client, persists the registry and returns the
// credentials with the plaintext secret.
func (s *FileStore) Create(name, description string) (*Credentials, error) {
	clientID, err := NewClientID()
	if err != nil {
		return nil, err
	}
	secret, err := NewClientSecret()
	if err != nil {
		return nil, err
	}
	secretHash, err := HashSecret(secret)
	if err != nil {
		return nil, errors.Wrap(err, "FileStore.Create hash")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[clientID] = &Client{
		ID:          clientID,
		Name:        name,
		Description: description,
		SecretHash:  secretHash,
		CreatedAt:   s.nowFunc().UTC(),
	}

	if err := s.persist(); err != nil {
		delete(s.records, clientID)
		return nil, err
	}

	return &Credentials{
		ClientID:     clientID,
		ClientSecret: secret,
		Name:         name,
		Description:  description,
	}, nil
}

// Get retrieves a client record by id.
func (s *FileStore) Get(clientID string) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[clientID]
	if !ok {
		return nil, apperrors.ErrClientNotFound
	}
	copied := *record
	return &copied, nil
}

// List returns summaries of every client, oldest first.
func (s *FileStore) List() ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]Summary, 0, len(s.records))
	for _, record := range s.records {
		summaries = append(summaries, record.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Revoke marks a client revoked and persists. Idempotent for clients that
// are already revoked.
func (s *FileStore) Revoke(clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[clientID]
	if !ok {
		return apperrors.ErrClientNotFound
	}
	if record.Revoked {
		return nil
	}

	revokedAt := s.nowFunc().UTC()
	record.Revoked = true
	record.RevokedAt = &revokedAt

	if err := s.persist(); err != nil {
		record.Revoked = false
		record.RevokedAt = nil
		return err
	}
	return nil
}

// VerifySecret checks the plaintext secret against the stored hash. Unknown
// and revoked clients are run against a dummy hash so the failure is not
// distinguishable by timing.
func (s *FileStore) VerifySecret(clientID, secret string) bool {
	s.mu.RLock()
	record, ok := s.records[clientID]
	var hash string
	if ok && !record.Revoked {
		hash = record.SecretHash
	} else {
		ok = false
		hash = s.dummyHash
	}
	s.mu.RUnlock()

	return CheckSecretHash(secret, hash) && ok
}

var _ Store = (*FileStore)(nil)
