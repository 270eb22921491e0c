package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusmart/webclient/internal/core/domain"
)

// PgxCredentialRepository implements domain.CredentialRepository using
// pgxpool. One row per browser session; the identity is stored as JSONB.
type PgxCredentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository creates a new PgxCredentialRepository.
func NewCredentialRepository(pool *pgxpool.Pool) *PgxCredentialRepository {
	return &PgxCredentialRepository{pool: pool}
}

// Save persists the token and identity for the given sid, replacing any
// prior record.
func (r *PgxCredentialRepository) Save(ctx context.Context, sid string, creds domain.Credentials) error {
	userJSON, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	query := `
		INSERT INTO client_credentials (sid, access_token, identity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (sid) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    identity = EXCLUDED.identity,
		    updated_at = now()
	`
	_, err = r.pool.Exec(ctx, query, sid, creds.AccessToken, userJSON)
	return err
}

// SaveIdentity updates only the cached identity for sid. No-op when sid has
// no record.
func (r *PgxCredentialRepository) SaveIdentity(ctx context.Context, sid string, user *domain.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	query := `UPDATE client_credentials SET identity = $2, updated_at = now() WHERE sid = $1`
	_, err = r.pool.Exec(ctx, query, sid, userJSON)
	return err
}

// Get returns the credentials for sid.
// Returns (nil, nil) when sid has no record.
func (r *PgxCredentialRepository) Get(ctx context.Context, sid string) (*domain.Credentials, error) {
	query := `SELECT access_token, identity FROM client_credentials WHERE sid = $1`

	var token string
	var userJSON []byte
	err := r.pool.QueryRow(ctx, query, sid).Scan(&token, &userJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	creds := domain.Credentials{AccessToken: token}
	if len(userJSON) > 0 && string(userJSON) != "null" {
		var user domain.User
		if err := json.Unmarshal(userJSON, &user); err != nil {
			return nil, fmt.Errorf("decode identity for sid %q: %w", sid, domain.ErrCorruptIdentity)
		}
		creds.User = &user
	}

	return &creds, nil
}

// Delete removes the record for sid. Deleting an absent sid is not an error.
func (r *PgxCredentialRepository) Delete(ctx context.Context, sid string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM client_credentials WHERE sid = $1`, sid)
	return err
}
