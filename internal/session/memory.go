package session

import "sync"

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	token string
	user  []byte
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

func (m *Memory) SetToken(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

func (m *Memory) ClearToken() {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
}

func (m *Memory) CurrentUser() ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.user) == 0 {
		return nil, false
	}
	out := make([]byte, len(m.user))
	copy(out, m.user)
	return out, true
}

func (m *Memory) SetCurrentUser(raw []byte) {
	m.mu.Lock()
	m.user = append([]byte(nil), raw...)
	m.mu.Unlock()
}

func (m *Memory) ClearCurrentUser() {
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
}
