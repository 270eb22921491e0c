package v1

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/campusmart/webclient/internal/apiclient"
	"github.com/campusmart/webclient/internal/core/domain"
	"github.com/campusmart/webclient/internal/profile"
	"github.com/campusmart/webclient/middleware"
)

// State of the session lifecycle for one browser.
type State string

const (
	StateUninitialized   State = "uninitialized"
	StateInitializing    State = "initializing"
	StateUnauthenticated State = "unauthenticated"
	// StateAuthenticating means the login redirect has been dispatched. The
	// browser is navigating away; for this page instance the state is
	// effectively terminal.
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateLoggingOut     State = "logging_out"
)

// SessionAPI is the slice of the marketplace API the session manager needs.
type SessionAPI interface {
	GetGoogleAuthURL(ctx context.Context) (string, error)
	GetCurrentUser(ctx context.Context, token string) (*domain.User, error)
	UpdateProfile(ctx context.Context, token string, patch domain.ProfilePatch) (*domain.User, error)
	Logout(ctx context.Context, token string) error
}

// CallbackParams is the payload of the OAuth success route. All four fields
// are required; the token is opaque and never decoded.
type CallbackParams struct {
	Token  string
	UserID string
	Email  string
	Name   string
}

// Manager owns the authentication state for a single browser session: the
// state machine, the persisted credentials, and the operations the view
// layer invokes. Dependencies are injected via the constructor — no global
// state.
//
// Every state-mutating operation captures the generation counter before
// suspending on I/O and re-checks it before committing, so a completion
// that raced a forced logout (or any later clear) discards its write
// instead of resurrecting superseded state.
type Manager struct {
	sid   string
	api   SessionAPI
	store domain.CredentialRepository

	mu        sync.Mutex
	gen       uint64
	state     State
	user      *domain.User
	token     string
	isLoading bool
}

// NewManager creates a Manager for the given browser session ID.
func NewManager(sid string, api SessionAPI, store domain.CredentialRepository) *Manager {
	return &Manager{
		sid:   sid,
		api:   api,
		store: store,
		state: StateUninitialized,
	}
}

// SID returns the browser session ID this manager serves.
func (m *Manager) SID() string { return m.sid }

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ViewState returns the derived view of the session for the view layer.
// The bearer token is never part of it.
func (m *Manager) ViewState() domain.AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()

	var user *domain.User
	if m.user != nil {
		u := *m.user
		user = &u
	}
	return domain.AuthState{
		User:            user,
		IsAuthenticated: user != nil,
		IsLoading:       m.isLoading,
	}
}

// Token returns the bearer token for authenticated-request decoration.
// It must not be surfaced to view code.
func (m *Manager) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

// Initialize restores the session from persisted credentials and validates
// it against the API. Idempotent: only the first call does work. It never
// returns an error to the caller; failures are logged and degrade to an
// unauthenticated (or optimistically stale) session. Always ends with
// IsLoading false.
func (m *Manager) Initialize(ctx context.Context) {
	ctx, span := middleware.StartSpan(ctx, "session.initialize", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()
	ctx = WithBrowserSession(ctx, m.sid)
	logger := zerolog.Ctx(ctx)

	m.mu.Lock()
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return
	}
	m.state = StateInitializing
	m.isLoading = true
	gen := m.gen
	m.mu.Unlock()

	creds, err := m.store.Get(ctx, m.sid)
	if err != nil {
		if errors.Is(err, domain.ErrCorruptIdentity) {
			logger.Warn().Err(err).Msg("Persisted identity unreadable, clearing storage")
			if delErr := m.store.Delete(ctx, m.sid); delErr != nil {
				logger.Error().Err(delErr).Msg("Failed to clear corrupt credentials")
			}
		} else {
			logger.Error().Err(err).Msg("Failed to read persisted credentials")
		}
		m.finishInit(gen, nil, "")
		return
	}
	if creds == nil || creds.AccessToken == "" {
		m.finishInit(gen, nil, "")
		return
	}

	// Optimistically adopt the cached identity before validating.
	m.mu.Lock()
	if m.gen == gen {
		m.token = creds.AccessToken
		m.user = creds.User
	}
	m.mu.Unlock()

	user, err := m.api.GetCurrentUser(ctx, creds.AccessToken)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			logger.Info().Msg("Persisted token rejected, clearing session")
			span.SetAttributes(attribute.Bool("session.restored", false))
			m.clear(ctx)
			return
		}
		// Transient failure: keep the optimistic state rather than log the
		// user out over a network blip.
		logger.Warn().Err(err).Msg("Identity validation unavailable, keeping cached session")
		m.finishInit(gen, creds.User, creds.AccessToken)
		return
	}

	// Server identity wins over the cached record.
	m.finishInit(gen, user, creds.AccessToken)
	if err := m.store.SaveIdentity(ctx, m.sid, user); err != nil {
		logger.Error().Err(err).Msg("Failed to persist refreshed identity")
	}
	span.SetAttributes(attribute.Bool("session.restored", true))
	logger.Info().Str("user_id", user.ID).Msg("Session restored")
}

// finishInit commits the initialization result unless a concurrent clear
// superseded it, and always drops the loading flag.
func (m *Manager) finishInit(gen uint64, user *domain.User, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return
	}
	m.user = user
	m.token = token
	if user != nil {
		m.state = StateAuthenticated
	} else {
		m.state = StateUnauthenticated
	}
	m.isLoading = false
}

// Login fetches the provider authorization URL and transitions to
// Authenticating. The caller performs the actual redirect; from this page
// instance's perspective the navigation is irreversible. On failure the
// loading flag is reset, the session stays unauthenticated, and the error
// is returned for the caller to surface.
func (m *Manager) Login(ctx context.Context) (string, error) {
	ctx, span := middleware.StartSpan(ctx, "session.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()
	ctx = WithBrowserSession(ctx, m.sid)

	m.mu.Lock()
	gen := m.gen
	m.isLoading = true
	m.mu.Unlock()

	authURL, err := m.api.GetGoogleAuthURL(ctx)
	if err != nil {
		span.RecordError(err)
		m.mu.Lock()
		if m.gen == gen {
			m.isLoading = false
		}
		m.mu.Unlock()
		return "", fmt.Errorf("fetch auth url: %w", err)
	}

	m.mu.Lock()
	if m.gen == gen {
		m.state = StateAuthenticating
	}
	m.mu.Unlock()
	span.AddEvent("login.redirect_dispatched")
	return authURL, nil
}

// Logout ends the session. The remote logout call is best-effort — its
// failure is logged and swallowed — and storage plus in-memory state are
// cleared unconditionally afterwards. Logout never fails from the caller's
// perspective.
func (m *Manager) Logout(ctx context.Context) {
	ctx, span := middleware.StartSpan(ctx, "session.logout", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()
	ctx = WithBrowserSession(ctx, m.sid)

	m.mu.Lock()
	m.isLoading = true
	m.state = StateLoggingOut
	token := m.token
	m.mu.Unlock()

	if token != "" {
		if err := m.api.Logout(ctx, token); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("Remote logout failed, clearing local session anyway")
			span.RecordError(err)
		}
	}

	m.clear(ctx)
	span.AddEvent("session.cleared")
}

// RefreshUser re-fetches the identity from the API and replaces the
// in-memory session. No-op unless authenticated. A confirmed token
// rejection forces logout; a transient failure keeps the stale session.
func (m *Manager) RefreshUser(ctx context.Context) {
	ctx, span := middleware.StartSpan(ctx, "session.refresh_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()
	ctx = WithBrowserSession(ctx, m.sid)
	logger := zerolog.Ctx(ctx)

	m.mu.Lock()
	if m.user == nil || m.token == "" {
		m.mu.Unlock()
		return
	}
	gen := m.gen
	token := m.token
	m.mu.Unlock()

	user, err := m.api.GetCurrentUser(ctx, token)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, apiclient.ErrUnauthorized) {
			m.clear(ctx)
			return
		}
		logger.Warn().Err(err).Msg("Identity refresh failed, keeping current session")
		return
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.user = user
	m.mu.Unlock()

	if err := m.store.SaveIdentity(ctx, m.sid, user); err != nil {
		logger.Error().Err(err).Msg("Failed to persist refreshed identity")
	}
}

// UpdateUser merges a gender/hostel patch into the session, enforcing the
// hostel-requires-gender rule, persists the result, and best-effort
// propagates it to the API. The merged identity is returned.
func (m *Manager) UpdateUser(ctx context.Context, patch domain.ProfilePatch) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "session.update_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()
	ctx = WithBrowserSession(ctx, m.sid)
	logger := zerolog.Ctx(ctx)

	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("update profile: %w", ErrNotAuthenticated)
	}
	updated := *m.user
	if err := profile.ApplyPatch(&updated, patch); err != nil {
		m.mu.Unlock()
		span.SetAttributes(attribute.Bool("profile.valid", false))
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	m.user = &updated
	gen := m.gen
	token := m.token
	m.mu.Unlock()

	if err := m.store.SaveIdentity(ctx, m.sid, &updated); err != nil {
		logger.Error().Err(err).Msg("Failed to persist profile update")
	}

	// Propagate to the server; its copy wins when it answers.
	serverUser, err := m.api.UpdateProfile(ctx, token, patch)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			m.clear(ctx)
			return nil, fmt.Errorf("update profile: %w", ErrNotAuthenticated)
		}
		logger.Warn().Err(err).Msg("Server profile update failed, keeping local merge")
		result := updated
		return &result, nil
	}

	m.mu.Lock()
	if m.gen == gen {
		m.user = serverUser
	}
	m.mu.Unlock()
	if err := m.store.SaveIdentity(ctx, m.sid, serverUser); err != nil {
		logger.Error().Err(err).Msg("Failed to persist server profile")
	}
	result := *serverUser
	return &result, nil
}

// CompleteAuth consumes the OAuth success payload: it validates the four
// required fields, persists token and identity, commits the in-memory
// state, and performs the authoritative identity refresh. A missing field
// is a hard error with no state or storage mutation.
func (m *Manager) CompleteAuth(ctx context.Context, params CallbackParams) error {
	ctx, span := middleware.StartSpan(ctx, "session.complete_auth", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()
	ctx = WithBrowserSession(ctx, m.sid)
	logger := zerolog.Ctx(ctx)

	for _, p := range []struct{ name, value string }{
		{"token", params.Token},
		{"user_id", params.UserID},
		{"email", params.Email},
		{"name", params.Name},
	} {
		if p.value == "" {
			span.SetAttributes(attribute.Bool("callback.valid", false))
			return fmt.Errorf("%w: %s", ErrMissingCallbackParam, p.name)
		}
	}

	user := &domain.User{
		ID:         params.UserID,
		Email:      params.Email,
		Name:       params.Name,
		IsVerified: true,
		CreatedAt:  time.Now().UTC(),
	}

	if err := m.store.Save(ctx, m.sid, domain.Credentials{
		AccessToken: params.Token,
		User:        user,
	}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("persist credentials: %w", err)
	}

	m.mu.Lock()
	m.token = params.Token
	m.user = user
	m.state = StateAuthenticated
	m.isLoading = false
	m.mu.Unlock()

	span.SetAttributes(attribute.String("user.id", user.ID))
	span.AddEvent("user.authenticated")
	logger.Info().Str("user_id", user.ID).Msg("OAuth handshake completed")

	// Authoritative refresh: the server's identity record supersedes the
	// query-string one. A rejection here clears the session again.
	m.RefreshUser(ctx)
	return nil
}

// ForceLogout unconditionally clears storage and in-memory state. Invoked
// by the unauthorized interceptor; it wins over any in-flight operation.
func (m *Manager) ForceLogout(ctx context.Context) {
	zerolog.Ctx(ctx).Info().Str("sid", m.sid).Msg("Forced logout")
	m.clear(ctx)
}

// clear deletes persisted credentials and resets in-memory state. Bumping
// the generation makes any in-flight completion discard its write.
func (m *Manager) clear(ctx context.Context) {
	if err := m.store.Delete(ctx, m.sid); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to clear persisted credentials")
	}

	m.mu.Lock()
	m.gen++
	m.token = ""
	m.user = nil
	m.state = StateUnauthenticated
	m.isLoading = false
	m.mu.Unlock()
}
