package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"urzis-pass/internal/storage"
)

// Store persists the Session in a storage.Provider and mirrors the last
// read or write in memory.
type Store struct {
	provider storage.Provider

	mu      sync.RWMutex
	current Session

	logger *slog.Logger
}

func NewStore(provider storage.Provider) *Store {
	return &Store{
		provider: provider,
		logger:   slog.With("component", "session"),
	}
}

// Read loads the session from storage. It never fails: a storage error is
// treated the same as a missing key. A token without a tenant (or the other
// way round) is reported as no token and no tenant.
func (s *Store) Read(ctx context.Context) Session {
	sess := Session{
		ServerURL: s.get(ctx, KeyServerURL),
		Token:     s.get(ctx, KeyToken),
		Tenant:    s.get(ctx, KeyTenant),
	}
	if sess.Token == "" || sess.Tenant == "" {
		sess.Token, sess.Tenant = "", ""
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	return sess
}

// Current returns the in-memory mirror without touching storage.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// WriteServerURL normalises and stores url. An empty url clears it.
func (s *Store) WriteServerURL(ctx context.Context, url string) error {
	url = NormalizeServerURL(url)

	if url == "" {
		if err := s.provider.Delete(ctx, KeyServerURL); err != nil {
			return fmt.Errorf("clear server url: %w", err)
		}
	} else if err := s.provider.Set(ctx, KeyServerURL, url); err != nil {
		return fmt.Errorf("store server url: %w", err)
	}

	s.mu.Lock()
	s.current.ServerURL = url
	s.mu.Unlock()

	s.logger.Debug("Server URL updated", "server_url", url)
	return nil
}

// WriteSession stores token and tenant together. If either is empty both are removed.
func (s *Store) WriteSession(ctx context.Context, token, tenant string) error {
	if token == "" || tenant == "" {
		return s.Clear(ctx)
	}

	if err := s.provider.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := s.provider.Set(ctx, KeyTenant, tenant); err != nil {
		// Do not leave a token behind without its tenant
		s.provider.Delete(ctx, KeyToken)
		return fmt.Errorf("store tenant: %w", err)
	}

	s.mu.Lock()
	s.current.Token, s.current.Tenant = token, tenant
	s.mu.Unlock()

	s.logger.Debug("Session stored", "tenant", tenant)
	return nil
}

// Clear removes token and tenant. The server URL outlives a logout.
func (s *Store) Clear(ctx context.Context) error {
	err := s.provider.Delete(ctx, KeyToken, KeyTenant)

	s.mu.Lock()
	s.current.Token, s.current.Tenant = "", ""
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Debug("Session cleared")
	return nil
}

func (s *Store) get(ctx context.Context, key string) string {
	value, ok, err := s.provider.Get(ctx, key)
	if err != nil {
		s.logger.Debug("Session key unreadable, treating as unset", "key", key, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return value
}
