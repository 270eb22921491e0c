package v1

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusmart/webclient/internal/core/domain"
)

// Registry hands out one Manager per browser session ID and evicts managers
// that have been idle longer than the configured TTL. Eviction drops only
// the in-memory manager; persisted credentials stay put, so a returning
// browser re-initializes from the store.
type Registry struct {
	api     SessionAPI
	store   domain.CredentialRepository
	idleTTL time.Duration

	mu       sync.Mutex
	managers map[string]*registryEntry

	stopOnce sync.Once
	stopCh   chan struct{}
}

type registryEntry struct {
	manager  *Manager
	lastSeen time.Time
}

// NewRegistry creates a Registry and starts its cleanup worker.
func NewRegistry(api SessionAPI, store domain.CredentialRepository, idleTTL time.Duration) *Registry {
	r := &Registry{
		api:      api,
		store:    store,
		idleTTL:  idleTTL,
		managers: make(map[string]*registryEntry),
		stopCh:   make(chan struct{}),
	}
	go r.cleanupLoop(time.Minute)
	return r
}

// NewSID generates a fresh browser session ID.
func NewSID() string {
	return uuid.NewString()
}

// Manager returns the Manager for sid, creating it on first use.
func (r *Registry) Manager(sid string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.managers[sid]
	if !ok {
		entry = &registryEntry{manager: NewManager(sid, r.api, r.store)}
		r.managers[sid] = entry
	}
	entry.lastSeen = time.Now()
	return entry.manager
}

// ForceLogout clears the session identified by the browser session ID on
// ctx. It is the target of the API client's unauthorized hook and may fire
// concurrently with any other operation; the clear wins.
func (r *Registry) ForceLogout(ctx context.Context) {
	sid, ok := BrowserSessionFromContext(ctx)
	if !ok {
		return
	}

	r.mu.Lock()
	entry, present := r.managers[sid]
	r.mu.Unlock()

	if present {
		entry.manager.ForceLogout(ctx)
		return
	}
	// No live manager; still make sure nothing stays persisted.
	if err := r.store.Delete(ctx, sid); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to clear persisted credentials")
	}
}

// Close stops the cleanup worker.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

func (r *Registry) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.evictIdle(time.Now())
		}
	}
}

func (r *Registry) evictIdle(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for sid, entry := range r.managers {
		if now.Sub(entry.lastSeen) > r.idleTTL {
			delete(r.managers, sid)
		}
	}
}
