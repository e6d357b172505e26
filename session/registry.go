package session

import (
	"strings"
	"sync"
)

// Registry holds the open sessions, indexed by the identity of the client.
type Registry struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) AddSession(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.conn.IdentityData().Identity] = session
}

func (r *Registry) GetSession(identity string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[identity]
}

func (r *Registry) GetSessionByUsername(username string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, session := range r.sessions {
		if strings.EqualFold(session.conn.IdentityData().DisplayName, username) {
			return session
		}
	}
	return nil
}

// RemoveSession removes session, unless another session with the same identity replaced it.
func (r *Registry) RemoveSession(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity := session.conn.IdentityData().Identity
	if r.sessions[identity] == session {
		delete(r.sessions, identity)
	}
}

func (r *Registry) GetSessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}
