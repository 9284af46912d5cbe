package clients

// Store is the credential store: a durable mapping of client identity to
// hashed secret and metadata. Implementations must be safe for concurrent
// use and must persist every mutation atomically.
type Store interface {
	// Create registers a new client and returns its credentials, including
	// the plaintext secret. The secret is not retrievable afterwards.
	Create(name, description string) (*Credentials, error)

	// Get retrieves a client record by id.
	Get(clientID string) (*Client, error)

	// List returns secretless summaries of every registered client.
	List() ([]Summary, error)

	// Revoke permanently excludes a client from authentication. Revoking an
	// already-revoked client succeeds silently; there is no un-revoke.
	Revoke(clientID string) error

	// VerifySecret checks a plaintext secret against the stored hash.
	// It fails closed: unknown, revoked and wrong-secret outcomes are
	// indistinguishable to the caller.
	VerifySecret(clientID, secret string) bool
}
