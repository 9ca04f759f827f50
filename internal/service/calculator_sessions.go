package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"valora/internal/valuation"
)

var ErrTooManySessions = errors.New("session limit reached")

// Session is one live calculator wizard, addressed by its autosave token.
type Session struct {
	Calculator *valuation.Calculator
	Saver      *valuation.Autosaver

	mu         sync.Mutex
	lastAccess time.Time
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastAccess = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// SessionManager keeps the live calculator sessions in memory. Sessions
// are created on demand, addressed by token and reaped after the TTL.
type SessionManager struct {
	Engine  *valuation.Engine
	Table   valuation.MultipleTable
	Client  valuation.PersistenceClient
	Logger  *zap.Logger
	Flags   *SystemSettingsService
	TTL     time.Duration
	MaxOpen int

	Debounce time.Duration
	Timeout  time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func (m *SessionManager) NewSession() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = make(map[string]*Session)
	}
	if m.MaxOpen > 0 && len(m.sessions) >= m.MaxOpen {
		return nil, ErrTooManySessions
	}

	client := m.Client
	if m.Flags != nil && !m.Flags.IsEnabled(context.Background(), FeatureAutosave, true) {
		client = nil
	}
	saver := valuation.NewAutosaver(client, m.Logger, m.Debounce, m.Timeout)
	sess := &Session{
		Calculator: valuation.NewCalculator(m.Engine, m.Table, saver),
		Saver:      saver,
		lastAccess: time.Now(),
	}
	m.sessions[saver.Token()] = sess
	return sess, nil
}

func (m *SessionManager) Get(token string) (*Session, bool) {
	m.mu.Lock()
	sess, ok := m.sessions[token]
	m.mu.Unlock()
	if ok {
		sess.touch()
	}
	return sess, ok
}

// Reset rotates a session's token and re-keys it, so the old token stops
// resolving.
func (m *SessionManager) Reset(token string) (*Session, bool) {
	m.mu.Lock()
	sess, ok := m.sessions[token]
	if !ok {
		m.mu.Unlock()
		return nil, false
	}
	delete(m.sessions, token)
	m.mu.Unlock()

	sess.Calculator.Reset()
	sess.touch()

	m.mu.Lock()
	m.sessions[sess.Saver.Token()] = sess
	m.mu.Unlock()
	return sess, true
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Run reaps idle sessions on a ticker until the context ends.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) error {
	if m == nil {
		return nil
	}
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		if n := m.RunOnce(ctx); n > 0 && m.Logger != nil {
			m.Logger.Info("reaped idle calculator sessions", zap.Int("count", n))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (m *SessionManager) RunOnce(ctx context.Context) int {
	if m == nil {
		return 0
	}
	if m.Flags != nil && !m.Flags.IsEnabled(ctx, FeatureSessionGC, true) {
		return 0
	}
	ttl := m.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	var stale []string
	for token, sess := range m.sessions {
		if sess.idleSince().Before(cutoff) {
			stale = append(stale, token)
		}
	}
	for _, token := range stale {
		delete(m.sessions, token)
	}
	m.mu.Unlock()
	return len(stale)
}
