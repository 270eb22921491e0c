package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/campusmart/webclient/internal/core/domain"
)

// MemoryCredentialRepository implements domain.CredentialRepository with a
// mutex-guarded map. It backs tests and the no-database dev mode; records do
// not survive a restart.
//
// The identity is kept JSON-encoded, like the pgx implementation, so
// corrupt-record behavior can be exercised in tests.
type MemoryCredentialRepository struct {
	mu      sync.Mutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	accessToken string
	identity    []byte
}

// NewMemoryCredentialRepository creates an empty MemoryCredentialRepository.
func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{records: make(map[string]memoryRecord)}
}

// Save persists the token and identity for the given sid.
func (r *MemoryCredentialRepository) Save(ctx context.Context, sid string, creds domain.Credentials) error {
	userJSON, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[sid] = memoryRecord{accessToken: creds.AccessToken, identity: userJSON}
	return nil
}

// SaveIdentity updates only the cached identity for sid.
func (r *MemoryCredentialRepository) SaveIdentity(ctx context.Context, sid string, user *domain.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[sid]
	if !ok {
		return nil
	}
	rec.identity = userJSON
	r.records[sid] = rec
	return nil
}

// Get returns the credentials for sid, or (nil, nil) when absent.
func (r *MemoryCredentialRepository) Get(ctx context.Context, sid string) (*domain.Credentials, error) {
	r.mu.Lock()
	rec, ok := r.records[sid]
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}

	creds := domain.Credentials{AccessToken: rec.accessToken}
	if len(rec.identity) > 0 && string(rec.identity) != "null" {
		var user domain.User
		if err := json.Unmarshal(rec.identity, &user); err != nil {
			return nil, fmt.Errorf("decode identity for sid %q: %w", sid, domain.ErrCorruptIdentity)
		}
		creds.User = &user
	}
	return &creds, nil
}

// Delete removes the record for sid.
func (r *MemoryCredentialRepository) Delete(ctx context.Context, sid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, sid)
	return nil
}

// CorruptIdentity overwrites the stored identity for sid with bytes that do
// not decode. Test helper for the storage-corruption path.
func (r *MemoryCredentialRepository) CorruptIdentity(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[sid]
	if !ok {
		return
	}
	rec.identity = []byte("{not json")
	r.records[sid] = rec
}
