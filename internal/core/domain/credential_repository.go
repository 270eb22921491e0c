package domain

import (
	"context"
	"errors"
)

// ErrCorruptIdentity indicates the persisted identity record could not be
// decoded. Callers treat the browser as unauthenticated and clear the record.
var ErrCorruptIdentity = errors.New("corrupt persisted identity")

// Credentials is the persisted session record for one browser: the opaque
// bearer token plus the locally cached identity. The two fields are the
// durable analog of the storage keys `access_token` and `user`; no
// transactional guarantee across them is part of the contract.
type Credentials struct {
	AccessToken string
	User        *User
}

// CredentialRepository defines the data-access contract for persisted
// session credentials, keyed by browser session ID.
// Implementations live in internal/core/repository (Core layer).
type CredentialRepository interface {
	// Save persists the token and identity for the given sid, replacing any
	// prior record.
	Save(ctx context.Context, sid string, creds Credentials) error

	// SaveIdentity updates only the cached identity, leaving the token
	// untouched. No-op when sid has no record.
	SaveIdentity(ctx context.Context, sid string, user *User) error

	// Get returns the credentials for sid.
	// Returns (nil, nil) when sid has no record. Returns an error wrapping
	// ErrCorruptIdentity when a record exists but its identity is unreadable.
	Get(ctx context.Context, sid string) (*Credentials, error)

	// Delete removes the record for sid. Deleting an absent sid is not an
	// error.
	Delete(ctx context.Context, sid string) error
}
