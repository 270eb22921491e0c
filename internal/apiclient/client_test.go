package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmart/webclient/internal/core/domain"
)

func TestGetCurrentUserSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/me", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(domain.User{ID: "U1", Email: "a@b.com", Name: "Ann"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	user, err := c.GetCurrentUser(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer T1", gotAuth)
	assert.Equal(t, "U1", user.ID)
}

func TestUnauthorizedInvokesHookAndReturnsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	hookCalls := 0
	c := New(srv.URL, WithOnUnauthorized(func(ctx context.Context) { hookCalls++ }))

	_, err := c.GetCurrentUser(context.Background(), "expired")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, hookCalls)
}

func TestNonOKResponseMapsToStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListProducts(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Status)
	assert.Contains(t, statusErr.Body, "boom")
}

func TestGetGoogleAuthURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/google/login", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"), "login URL fetch is unauthenticated")
		json.NewEncoder(w).Encode(map[string]string{"auth_url": "https://accounts.example.com/auth?x=1"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	url, err := c.GetGoogleAuthURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example.com/auth?x=1", url)
}

func TestCallbackURLForwardsCodeOpaquely(t *testing.T) {
	c := New("http://api.internal/api/v1/")
	assert.Equal(t, "http://api.internal/api/v1/auth/google/callback?code=abc123", c.CallbackURL("abc123"))
}

func TestCreateProductSendsMultipartFormWithImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer T1", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Desk Lamp", r.FormValue("name"))
		assert.Equal(t, "450", r.FormValue("price"))
		assert.Equal(t, "Aravali", r.FormValue("location"))
		assert.Equal(t, "electronics", r.FormValue("category"))
		assert.Equal(t, "barely used", r.FormValue("description"))
		require.Len(t, r.MultipartForm.File["images"], 2)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(domain.Product{ID: "P1", Name: "Desk Lamp"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	created, err := c.CreateProduct(context.Background(), "T1",
		domain.NewProduct{
			Name:        "Desk Lamp",
			Price:       450,
			Location:    "Aravali",
			Category:    "electronics",
			Description: "barely used",
		},
		[]ImageUpload{
			{Filename: "front.jpg", Content: strings.NewReader("jpegdata-1")},
			{Filename: "back.jpg", Content: strings.NewReader("jpegdata-2")},
		})
	require.NoError(t, err)
	assert.Equal(t, "P1", created.ID)
}

func TestLogoutReturnsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/logout", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	c := New(srv.URL)
	require.NoError(t, c.Logout(context.Background(), "T1"))

	srv.Close()
	assert.Error(t, c.Logout(context.Background(), "T1"), "dead upstream surfaces as an error for the caller to swallow")
}
