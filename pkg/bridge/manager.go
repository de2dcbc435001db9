package bridge

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// sessionManager tracks live sessions with a bounded LRU. When the cap is
// reached the least-recently-added session is evicted and closed, so a
// misbehaving client cannot pin unbounded server state.
type sessionManager struct {
	cache *lru.Cache[string, *Session]
}

func newSessionManager(maxSessions int) (*sessionManager, error) {
	cache, err := lru.NewWithEvict(maxSessions, func(_ string, s *Session) {
		go s.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("bridge: session cache: %w", err)
	}
	return &sessionManager{cache: cache}, nil
}

func (m *sessionManager) add(s *Session) {
	m.cache.Add(s.ID, s)
}

func (m *sessionManager) get(id string) (*Session, bool) {
	return m.cache.Get(id)
}

func (m *sessionManager) remove(id string) {
	m.cache.Remove(id)
}

func (m *sessionManager) len() int {
	return m.cache.Len()
}

// each calls fn for every live session.
func (m *sessionManager) each(fn func(*Session)) {
	for _, id := range m.cache.Keys() {
		if s, ok := m.cache.Peek(id); ok {
			fn(s)
		}
	}
}

// newSessionID returns a 128-bit random hex identifier.
func newSessionID() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("bridge: session id: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}
