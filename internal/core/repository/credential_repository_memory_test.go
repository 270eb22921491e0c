package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmart/webclient/internal/core/domain"
)

func TestMemorySaveGetRoundTrip(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	ctx := context.Background()

	user := &domain.User{ID: "U1", Email: "a@b.com", Name: "Ann", Gender: domain.GenderFemale, Hostel: "Kailash"}
	require.NoError(t, repo.Save(ctx, "s1", domain.Credentials{AccessToken: "T1", User: user}))

	creds, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "T1", creds.AccessToken)
	require.NotNil(t, creds.User)
	assert.Equal(t, "Kailash", creds.User.Hostel)
}

func TestMemoryGetAbsentSID(t *testing.T) {
	repo := NewMemoryCredentialRepository()

	creds, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestMemorySaveWithoutIdentity(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "s1", domain.Credentials{AccessToken: "T1"}))

	creds, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "T1", creds.AccessToken)
	assert.Nil(t, creds.User, "token present, identity pending")
}

func TestMemorySaveIdentityUpdatesExistingRecord(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "s1", domain.Credentials{AccessToken: "T1"}))
	require.NoError(t, repo.SaveIdentity(ctx, "s1", &domain.User{ID: "U1", Name: "Ann"}))

	creds, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, creds.User)
	assert.Equal(t, "Ann", creds.User.Name)
}

func TestMemorySaveIdentityWithoutTokenIsNoop(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveIdentity(ctx, "s1", &domain.User{ID: "U1"}))

	creds, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, creds, "identity without a token is never stored")
}

func TestMemoryDeleteIsIdempotent(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "s1", domain.Credentials{AccessToken: "T1"}))
	require.NoError(t, repo.Delete(ctx, "s1"))
	require.NoError(t, repo.Delete(ctx, "s1"))

	creds, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestMemoryCorruptIdentitySurfacesSentinel(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "s1", domain.Credentials{
		AccessToken: "T1",
		User:        &domain.User{ID: "U1"},
	}))
	repo.CorruptIdentity("s1")

	_, err := repo.Get(ctx, "s1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCorruptIdentity)
}
