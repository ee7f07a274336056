// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/danielhkuo/transit-dashboard/auth"
	"github.com/danielhkuo/transit-dashboard/engine"
)

// Session is one dashboard engine plus the context its acquisitions run under.
// The context is cancelled when the session is evicted.
type Session struct {
	*engine.Engine

	ctx    context.Context
	cancel context.CancelFunc
}

// Reload starts a new acquisition in the background after a failed one.
func (s *Session) Reload() error {
	return s.Start(s.ctx)
}

// Manager keeps live sessions keyed by token. Sessions expire after ttl
// without access; the least recently used session is dropped once size is
// reached.
type Manager struct {
	sessions *expirable.LRU[string, *Session]
	sources  engine.Sources
	opts     []engine.Option

	// vote requests still in flight for evicted sessions
	draining sync.WaitGroup
}

func NewManager(sources engine.Sources, size int, ttl time.Duration, opts ...engine.Option) *Manager {
	m := &Manager{
		sources: sources,
		opts:    opts,
	}
	m.sessions = expirable.NewLRU[string, *Session](size, m.evicted, ttl)
	return m
}

// evicted runs under the LRU's lock and must not call back into it.
func (m *Manager) evicted(token string, s *Session) {
	s.cancel()
	m.draining.Add(1)
	go func() {
		defer m.draining.Done()
		s.Wait()
	}()
	slog.Debug("session evicted")
}

// Create registers a new session and starts loading its data.
func (m *Manager) Create() (string, *Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		Engine: engine.New(m.sources, m.opts...),
		ctx:    ctx,
		cancel: cancel,
	}
	m.sessions.Add(token, s)

	if err := s.Start(ctx); err != nil {
		return "", nil, err
	}

	slog.Info("session created", "sessions", m.sessions.Len())
	return token, s, nil
}

// Get returns a live session and renews its expiry.
func (m *Manager) Get(token string) (*Session, bool) {
	s, ok := m.sessions.Get(token)
	if !ok {
		return nil, false
	}
	m.sessions.Add(token, s)
	return s, true
}

func (m *Manager) Len() int {
	return m.sessions.Len()
}

// Close drops every session and waits for their outstanding vote requests.
func (m *Manager) Close() {
	m.sessions.Purge()
	m.draining.Wait()
}
