package session

import (
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"hotel-autopilot/relay"
)

// Browser is the slice of the browser capability the registry needs for
// teardown. playwright.Browser satisfies it.
type Browser interface {
	Close(options ...playwright.BrowserCloseOptions) error
}

// Session owns the live resources for one (clientID, site) key.
type Session struct {
	Browser    Browser
	StopStream relay.CleanupFunc
}

// Registry is the authoritative shared map from (clientID, site) to live
// resources. Entries are never evicted implicitly: callers delete them when
// resources are released, and release is idempotent so a disconnect handler
// racing a completion handler cannot double-close a browser.
type Registry struct {
	log *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{log: log, sessions: make(map[string]*Session)}
}

func (r *Registry) Set(clientID, site string, s *Session) {
	r.mu.Lock()
	r.sessions[relay.Key(clientID, site)] = s
	r.mu.Unlock()
}

func (r *Registry) Get(clientID, site string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[relay.Key(clientID, site)]
	return s, ok
}

func (r *Registry) Has(clientID, site string) bool {
	_, ok := r.Get(clientID, site)
	return ok
}

func (r *Registry) Delete(clientID, site string) {
	r.mu.Lock()
	delete(r.sessions, relay.Key(clientID, site))
	r.mu.Unlock()
}

// UpdateStream swaps the key's stream cleanup handle, returning false when
// the entry no longer exists (client already released). The caller must then
// stop the stream it just started.
func (r *Registry) UpdateStream(clientID, site string, stop relay.CleanupFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[relay.Key(clientID, site)]
	if !ok {
		return false
	}
	s.StopStream = stop
	return true
}

// Release stops the key's stream, closes its browser and removes the entry.
// A second call for the same key is a no-op; the presence check and the
// delete happen under one lock acquisition.
func (r *Registry) Release(clientID, site string) {
	key := relay.Key(clientID, site)

	r.mu.Lock()
	s, ok := r.sessions[key]
	if ok {
		delete(r.sessions, key)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	if s.StopStream != nil {
		s.StopStream()
	}
	if s.Browser != nil {
		if err := s.Browser.Close(); err != nil {
			// Browser may already be gone. Cleanup failures are logged
			// and swallowed, never re-thrown.
			r.log.Warn("browser close failed", zap.String("key", key), zap.Error(err))
		}
	}
	r.log.Info("session released", zap.String("key", key))
}

// ReleaseClient releases every session belonging to the client in one pass.
func (r *Registry) ReleaseClient(clientID string) {
	prefix := relay.Key(clientID, "")

	r.mu.Lock()
	var keys []string
	for key := range r.sessions {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	r.mu.Unlock()

	for _, key := range keys {
		site := key[len(prefix):]
		r.Release(clientID, site)
	}
}

// Len reports the number of live sessions. An entry left behind after its
// browser closed is a leak; this exists so tests and diagnostics can see it.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
