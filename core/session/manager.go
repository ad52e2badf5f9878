package session

import (
	"sync"

	"cutroom/config"
	"cutroom/core/autocut"
	"cutroom/logger"
)

// Manager owns the sessions, one per project, created on first touch.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg      *config.Config
	hub      *Hub
	detector autocut.Detector
	cache    autocut.RangeCache
}

// NewManager builds a manager that hands new sessions the shared hub,
// detector and range cache.
func NewManager(cfg *config.Config, hub *Hub, detector autocut.Detector, cache autocut.RangeCache) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		hub:      hub,
		detector: detector,
		cache:    cache,
	}
}

// GetOrCreate returns the project's session, creating it on first use.
func (m *Manager) GetOrCreate(projectID string) *Session {
	m.mu.RLock()
	sess, ok := m.sessions[projectID]
	m.mu.RUnlock()
	if ok {
		return sess
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[projectID]; ok {
		return sess
	}
	sess = NewSession(projectID, m.cfg, m.hub, m.detector, m.cache)
	m.sessions[projectID] = sess
	logger.Info("project session created", logger.String("project", projectID))
	return sess
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
