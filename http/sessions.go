package http

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"diseasepredict/predictor"
)

// SessionStore keeps prediction sessions, evicting by size and idle time.
type SessionStore struct {
	p     *predictor.Predictor
	cache *expirable.LRU[string, *predictor.Session]
}

func NewSessionStore(p *predictor.Predictor, size int, ttl time.Duration) *SessionStore {
	if size <= 0 {
		size = 1024
	}
	return &SessionStore{
		p:     p,
		cache: expirable.NewLRU[string, *predictor.Session](size, nil, ttl),
	}
}

func (s *SessionStore) Create() *predictor.Session {
	session := s.p.NewSession()
	s.cache.Add(session.ID(), session)
	return session
}

// Get returns the session and refreshes its expiry.
func (s *SessionStore) Get(id string) (*predictor.Session, bool) {
	session, ok := s.cache.Get(id)
	if ok {
		s.cache.Add(id, session)
	}
	return session, ok
}

func (s *SessionStore) Len() int {
	return s.cache.Len()
}
