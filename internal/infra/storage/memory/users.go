package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/domain/auth"
	"github.com/Shreenikagenaiapps/nestmate-app/internal/domain/user"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[user.ID]*user.User
	byEmail map[string]user.ID
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[user.ID]*user.User),
		byEmail: make(map[string]user.ID),
	}
}

func (r *UserRepository) ByID(_ context.Context, id user.ID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) ByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, user.ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepository) Save(_ context.Context, u *user.User) error {
	if u == nil {
		return user.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email := normalizeEmail(u.Email)
	if ownerID, ok := r.byEmail[email]; ok && ownerID != u.ID {
		return user.ErrEmailAlreadyUsed
	}
	if existing, ok := r.byID[u.ID]; ok {
		prev := normalizeEmail(existing.Email)
		if prev != email {
			delete(r.byEmail, prev)
		}
	}
	r.byID[u.ID] = cloneUser(u)
	r.byEmail[email] = u.ID
	return nil
}

func cloneUser(u *user.User) *user.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SessionStore keeps bearer sessions in memory. Expired sessions are reaped
// lazily on read.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[auth.Token]*auth.Session
}

var _ auth.SessionStore = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[auth.Token]*auth.Session)}
}

func (s *SessionStore) Save(_ context.Context, session *auth.Session) error {
	if session == nil || session.Token == "" {
		return auth.ErrTokenRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *session
	s.sessions[session.Token] = &clone
	return nil
}

func (s *SessionStore) Get(_ context.Context, token auth.Token) (*auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	if session.Expired(time.Now()) {
		delete(s.sessions, token)
		return nil, auth.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (s *SessionStore) Delete(_ context.Context, token auth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *SessionStore) DeleteByUser(_ context.Context, userID user.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, token)
		}
	}
	return nil
}
