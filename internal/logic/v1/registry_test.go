package v1

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmart/webclient/internal/core/domain"
	"github.com/campusmart/webclient/internal/core/repository"
)

func newTestRegistry(t *testing.T, store domain.CredentialRepository) *Registry {
	t.Helper()
	r := NewRegistry(&fakeAPI{me: serverUser()}, store, time.Hour)
	t.Cleanup(r.Close)
	return r
}

func TestRegistryReturnsSameManagerPerSID(t *testing.T) {
	r := newTestRegistry(t, repository.NewMemoryCredentialRepository())

	m1 := r.Manager("s1")
	m2 := r.Manager("s1")
	other := r.Manager("s2")

	assert.Same(t, m1, m2)
	assert.NotSame(t, m1, other)
}

func TestRegistryEvictsIdleManagers(t *testing.T) {
	r := newTestRegistry(t, repository.NewMemoryCredentialRepository())

	old := r.Manager("s1")
	r.evictIdle(time.Now().Add(2 * time.Hour))

	assert.NotSame(t, old, r.Manager("s1"), "idle manager replaced after eviction")
}

func TestRegistryForceLogoutClearsLiveManager(t *testing.T) {
	store := seededStore(t, "s1", domain.Credentials{AccessToken: "T1", User: serverUser()})
	r := newTestRegistry(t, store)

	m := r.Manager("s1")
	m.Initialize(context.Background())
	require.True(t, m.ViewState().IsAuthenticated)

	r.ForceLogout(WithBrowserSession(context.Background(), "s1"))

	assert.False(t, m.ViewState().IsAuthenticated)
	creds, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestRegistryForceLogoutWithoutManagerClearsStorage(t *testing.T) {
	store := seededStore(t, "s1", domain.Credentials{AccessToken: "T1", User: serverUser()})
	r := newTestRegistry(t, store)

	r.ForceLogout(WithBrowserSession(context.Background(), "s1"))

	creds, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestRegistryForceLogoutWithoutSIDIsNoop(t *testing.T) {
	store := seededStore(t, "s1", domain.Credentials{AccessToken: "T1", User: serverUser()})
	r := newTestRegistry(t, store)

	r.ForceLogout(context.Background())

	creds, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotNil(t, creds, "no sid on the context, nothing to clear")
}
