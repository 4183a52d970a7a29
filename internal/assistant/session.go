package assistant

import (
	"sync"
	"time"

	"github.com/edvin/skinsight/internal/llm"
)

// Session holds one conversation's transcript and in-progress order. The
// mutex serializes whole turns, so two concurrent requests for the same
// session ID cannot interleave transcript or order mutations.
type Session struct {
	mu       sync.Mutex
	Messages []llm.Message
	Order    map[string]int // menu item ID -> quantity
	lastSeen time.Time
}

// Lock acquires the session for one conversational turn.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session after a turn.
func (s *Session) Unlock() { s.mu.Unlock() }

// SessionStore keeps sessions in memory with a TTL and a hard cap so an
// abandoned conversation cannot hold memory forever.
type SessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
}

func NewSessionStore(ttl time.Duration, maxSessions int) *SessionStore {
	return &SessionStore{
		sessions:    make(map[string]*Session),
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// Get returns the session for the ID, creating it if absent. Expired
// sessions are discarded and recreated fresh.
func (s *SessionStore) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.sessions[id]
	if ok && now.Sub(sess.lastSeen) <= s.ttl {
		sess.lastSeen = now
		return sess
	}

	if !ok && len(s.sessions) >= s.maxSessions {
		s.evictExpired(now)
		if len(s.sessions) >= s.maxSessions {
			s.evictOldest()
		}
	}

	sess = &Session{Order: make(map[string]int), lastSeen: now}
	s.sessions[id] = sess
	return sess
}

// Len reports how many sessions are currently tracked.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// evictExpired drops all sessions past the TTL. Caller holds the lock.
func (s *SessionStore) evictExpired(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

// evictOldest drops the least recently used session. Caller holds the lock.
func (s *SessionStore) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID = id
			oldest = sess.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
	}
}
