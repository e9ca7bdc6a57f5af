package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/andressep95/estate-admin/internal/client"
	"github.com/andressep95/estate-admin/internal/domain"
	"github.com/andressep95/estate-admin/internal/repository"
)

const (
	DefaultExpirySkew    = 60 * time.Second
	DefaultCheckInterval = 60 * time.Second
)

// AuthClient performs the admin login round-trip.
type AuthClient interface {
	AdminLogin(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
}

// TokenDecoder decides whether a stored token is still usable.
type TokenDecoder interface {
	IsExpired(token string, now time.Time, skew time.Duration) bool
}

// SessionManagerConfig zero values select the defaults.
type SessionManagerConfig struct {
	ExpirySkew    time.Duration
	CheckInterval time.Duration
	Clock         clockwork.Clock
}

// SessionManager owns the single admin session of the process. The store is
// the source of truth; the in-memory fields are a cache filled by Restore
// and kept in step by Login, Logout and CheckExpiration.
type SessionManager struct {
	store    repository.KeyValueStore
	auth     AuthClient
	decoder  TokenDecoder
	clock    clockwork.Clock
	skew     time.Duration
	interval time.Duration

	mu            sync.RWMutex
	token         string
	principal     domain.Principal
	authenticated bool
	loading       bool

	restoreOnce sync.Once
}

func NewSessionManager(
	store repository.KeyValueStore,
	auth AuthClient,
	decoder TokenDecoder,
	cfg SessionManagerConfig,
) *SessionManager {
	if cfg.ExpirySkew <= 0 {
		cfg.ExpirySkew = DefaultExpirySkew
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	return &SessionManager{
		store:    store,
		auth:     auth,
		decoder:  decoder,
		clock:    cfg.Clock,
		skew:     cfg.ExpirySkew,
		interval: cfg.CheckInterval,
		loading:  true,
	}
}

// Restore loads the persisted session. Only the first call does any work.
func (m *SessionManager) Restore(ctx context.Context) {
	m.restoreOnce.Do(func() {
		defer func() {
			m.mu.Lock()
			m.loading = false
			m.mu.Unlock()
		}()

		token, hasToken := m.read(ctx, domain.KeyAdminToken)
		data, hasData := m.read(ctx, domain.KeyAdminData)

		if !hasToken || !hasData {
			if hasToken || hasData {
				log.Println("[SESSION] Partial session found in store, clearing...")
				m.clearStore(ctx)
			}
			return
		}

		if m.decoder.IsExpired(token, m.clock.Now(), m.skew) {
			log.Println("[SESSION] Stored token is expired, clearing...")
			m.clearStore(ctx)
			return
		}

		principal, err := parsePrincipal(data)
		if err != nil {
			log.Printf("[SESSION] Error parsing admin data: %v", err)
			m.clearStore(ctx)
			return
		}

		m.mu.Lock()
		m.token = token
		m.principal = principal
		m.authenticated = true
		m.mu.Unlock()

		log.Printf("[SESSION] Restored session for %s", principal.Email())
	})
}

// Login exchanges credentials for a session. It never returns an error;
// every failure is reported in the result.
func (m *SessionManager) Login(ctx context.Context, email, password string) domain.LoginResult {
	resp, err := m.auth.AdminLogin(ctx, domain.LoginRequest{Email: email, Password: password})
	if err != nil {
		log.Printf("[SESSION] Admin login error: %v", err)

		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.ServerError != "" {
			return domain.LoginResult{Error: apiErr.ServerError}
		}
		if errors.Is(err, client.ErrInvalidResponse) {
			return domain.LoginResult{Error: domain.MsgLoginFailed}
		}
		return domain.LoginResult{Error: domain.MsgNetworkError}
	}

	if !resp.Success {
		if resp.Error != "" {
			return domain.LoginResult{Error: resp.Error}
		}
		return domain.LoginResult{Error: domain.MsgLoginFailed}
	}

	if resp.Token == "" {
		log.Println("[SESSION] Login response has no token")
		return domain.LoginResult{Error: domain.MsgLoginFailed}
	}

	// adminData keeps the backend's own serialization, compacted.
	data := "{}"
	if raw := bytes.TrimSpace(resp.Admin); len(raw) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			log.Printf("[SESSION] Login response has an unreadable admin object: %v", err)
			return domain.LoginResult{Error: domain.MsgLoginFailed}
		}
		data = buf.String()
	}
	principal, err := parsePrincipal(data)
	if err != nil {
		log.Printf("[SESSION] Login response has an unreadable admin object: %v", err)
		return domain.LoginResult{Error: domain.MsgLoginFailed}
	}

	if err := m.store.Set(ctx, domain.KeyAdminToken, resp.Token); err != nil {
		log.Printf("[SESSION] Failed to persist token: %v", err)
		return domain.LoginResult{Error: "Failed to save session"}
	}
	if err := m.store.Set(ctx, domain.KeyAdminData, data); err != nil {
		log.Printf("[SESSION] Failed to persist admin data: %v", err)
		m.clearStore(ctx)
		return domain.LoginResult{Error: "Failed to save session"}
	}

	m.mu.Lock()
	m.token = resp.Token
	m.principal = principal
	m.authenticated = true
	m.loading = false
	m.mu.Unlock()

	log.Printf("[SESSION] Admin %s logged in", principal.Email())

	return domain.LoginResult{Success: true, Message: resp.Message}
}

// Logout clears the persisted and cached session. Safe to call repeatedly.
func (m *SessionManager) Logout(ctx context.Context) {
	m.clearStore(ctx)

	m.mu.Lock()
	m.token = ""
	m.principal = nil
	m.authenticated = false
	m.mu.Unlock()
}

// CheckExpiration logs out if the stored token is expired or unreadable and
// reports whether it did. It reads the store, not the cache.
func (m *SessionManager) CheckExpiration(ctx context.Context) bool {
	token, ok := m.read(ctx, domain.KeyAdminToken)
	if !ok {
		m.dropOrphanedPrincipal(ctx)
		return false
	}

	if m.decoder.IsExpired(token, m.clock.Now(), m.skew) {
		log.Println("[SESSION] Token expired, logging out...")
		m.Logout(ctx)
		return true
	}

	return false
}

// GetToken returns the stored admin token without checking expiry.
func (m *SessionManager) GetToken(ctx context.Context) (string, bool) {
	return m.read(ctx, domain.KeyAdminToken)
}

// Session returns a snapshot of the cached session.
func (m *SessionManager) Session() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return domain.Session{
		Token:         m.token,
		Principal:     clonePrincipal(m.principal),
		Authenticated: m.authenticated,
		Loading:       m.loading,
		State:         m.stateLocked(),
	}
}

func (m *SessionManager) State() domain.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked()
}

func (m *SessionManager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

func (m *SessionManager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *SessionManager) Principal() domain.Principal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clonePrincipal(m.principal)
}

func (m *SessionManager) stateLocked() domain.SessionState {
	switch {
	case m.loading:
		return domain.SessionStateRestoring
	case m.authenticated:
		return domain.SessionStateAuthenticated
	default:
		return domain.SessionStateAnonymous
	}
}

// dropOrphanedPrincipal heals a store where the token vanished but the
// admin data was left behind.
func (m *SessionManager) dropOrphanedPrincipal(ctx context.Context) {
	_, hasData := m.read(ctx, domain.KeyAdminData)

	m.mu.Lock()
	cached := m.authenticated || m.principal != nil
	m.token = ""
	m.principal = nil
	m.authenticated = false
	m.mu.Unlock()

	if hasData {
		log.Println("[SESSION] Admin data without token, clearing...")
		repository.RemoveKeys(ctx, m.store, domain.KeyAdminData)
	} else if cached {
		log.Println("[SESSION] Token removed externally, session is now anonymous")
	}
}

func (m *SessionManager) clearStore(ctx context.Context) {
	repository.RemoveKeys(ctx, m.store, domain.SessionKeys...)
}

func (m *SessionManager) read(ctx context.Context, key string) (string, bool) {
	value, ok, err := m.store.Get(ctx, key)
	if err != nil {
		log.Printf("[SESSION] Failed to read %s: %v", key, err)
		return "", false
	}
	// An empty value counts as missing.
	return value, ok && value != ""
}

// parsePrincipal fails only on invalid JSON. Valid JSON that is not an
// object caches as an empty principal.
func parsePrincipal(data string) (domain.Principal, error) {
	if data == "" {
		return domain.Principal{}, nil
	}
	if !json.Valid([]byte(data)) {
		return nil, errors.New("admin data is not valid JSON")
	}
	var principal domain.Principal
	if err := json.Unmarshal([]byte(data), &principal); err != nil || principal == nil {
		return domain.Principal{}, nil
	}
	return principal, nil
}

func clonePrincipal(p domain.Principal) domain.Principal {
	if p == nil {
		return nil
	}
	out := make(domain.Principal, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
