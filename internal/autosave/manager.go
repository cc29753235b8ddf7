package autosave

import "sync"

// Manager tracks one Coordinator per active edit session, keyed by user ID.
// Sessions are created lazily on the first edit and must be ended on
// logout/unmount so pending timers are cancelled.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Coordinator
	opts     []Option
}

// NewManager creates a session registry. opts apply to every coordinator
// it creates.
func NewManager(opts ...Option) *Manager {
	return &Manager{
		sessions: make(map[string]*Coordinator),
		opts:     opts,
	}
}

// Get returns the live coordinator for userID, or nil.
func (m *Manager) Get(userID string) *Coordinator {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[userID]
}

// GetOrCreate returns the live coordinator for userID, creating one from
// seed and persist when none exists. seed is only consulted on creation.
func (m *Manager) GetOrCreate(userID string, seed map[string]any, persist PersistFunc) *Coordinator {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.sessions[userID]; ok {
		return c
	}
	c := New(seed, persist, m.opts...)
	m.sessions[userID] = c
	return c
}

// End cancels and removes the session for userID. No-op when absent.
func (m *Manager) End(userID string) {
	m.mu.Lock()
	c := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if c != nil {
		c.Cancel()
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
