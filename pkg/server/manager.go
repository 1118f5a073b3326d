package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lattice-dev/lattice/pkg/runtime"
	"github.com/lattice-dev/lattice/pkg/vdom"
)

// ErrTooManySessions is returned when MaxSessions is reached.
var ErrTooManySessions = errors.New("server: session limit reached")

// SessionManager tracks live sessions and prunes idle ones.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg     *SessionConfig
	max     int
	logger  *slog.Logger
	metrics *Metrics
}

// NewSessionManager returns an empty manager. max of 0 means no limit.
func NewSessionManager(cfg *SessionConfig, max int, logger *slog.Logger, metrics *Metrics) *SessionManager {
	if cfg == nil {
		cfg = DefaultSessionConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		max:      max,
		logger:   logger,
		metrics:  metrics,
	}
}

// Create mounts a new session for root and registers it.
func (m *SessionManager) Create(root *runtime.Component, props vdom.Props) (*Session, error) {
	m.mu.Lock()
	if m.max > 0 && len(m.sessions) >= m.max {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	m.mu.Unlock()

	s, err := NewSession(newSessionID(), root, props, m.cfg, m.logger, m.metrics)
	if err != nil {
		return nil, err
	}
	s.onClose = m.drop

	m.mu.Lock()
	m.sessions[s.ID()] = s
	count := len(m.sessions)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SessionsTotal.Inc()
		m.metrics.ActiveSessions.Set(float64(count))
	}
	return s, nil
}

// Get returns the session with the given ID, or nil.
func (m *SessionManager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *SessionManager) drop(s *Session) {
	m.mu.Lock()
	delete(m.sessions, s.ID())
	count := len(m.sessions)
	m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.ActiveSessions.Set(float64(count))
	}
}

// Prune closes sessions idle longer than maxIdle and reports how many
// were closed.
func (m *SessionManager) Prune(maxIdle time.Duration) int {
	m.mu.RLock()
	var idle []*Session
	for _, s := range m.sessions {
		if s.IdleFor() > maxIdle {
			idle = append(idle, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range idle {
		m.logger.Debug("pruning idle session", "session", s.ID(), "idle", s.IdleFor())
		s.Close()
	}
	return len(idle)
}

// CloseAll shuts every session down, used during server shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()
	for _, s := range all {
		s.Close()
	}
}

func newSessionID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// fall back to a time-derived ID rather than crash.
		return hex.EncodeToString([]byte(time.Now().String()))[:32]
	}
	return hex.EncodeToString(b[:])
}
