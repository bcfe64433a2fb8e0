package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/conneroisu/typetour/internal/catalog"
	"github.com/conneroisu/typetour/internal/logging"
	"github.com/conneroisu/typetour/internal/view"
)

// StoreConfig bounds how many sessions are kept and for how long.
type StoreConfig struct {
	MaxSessions int
	TTL         time.Duration
}

// Store is the set of live sessions, keyed by ID.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool

	base   *catalog.Catalog
	opts   view.Options
	cfg    StoreConfig
	logger logging.Logger
	now    func() time.Time
}

// NewStore creates a store whose sessions start from clones of base.
func NewStore(base *catalog.Catalog, opts view.Options, cfg StoreConfig, logger logging.Logger) *Store {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Store{
		sessions: make(map[string]*Session),
		base:     base,
		opts:     opts,
		cfg:      cfg,
		logger:   logger.WithComponent("session"),
		now:      time.Now,
	}
}

// Create starts a new session. At capacity the least recently used session
// is evicted first.
func (s *Store) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *Store) createLocked() *Session {
	if len(s.sessions) >= s.cfg.MaxSessions {
		s.evictOldestLocked()
	}

	sess := newSession(uuid.New().String(), s.base.Clone(), s.opts, s.logger, s.now())
	if s.closed {
		// A closed store hands out sessions that are already stopped.
		sess.Close()
		return sess
	}
	s.sessions[sess.ID] = sess
	s.logger.Debug(context.Background(), "Session created", "session_id", sess.ID, "sessions", len(s.sessions))
	return sess
}

func (s *Store) evictOldestLocked() {
	var oldest *Session
	for _, sess := range s.sessions {
		if oldest == nil || sess.lastAccess.Before(oldest.lastAccess) {
			oldest = sess
		}
	}
	if oldest != nil {
		delete(s.sessions, oldest.ID)
		oldest.Close()
		s.logger.Info(context.Background(), "Session evicted at capacity", "session_id", oldest.ID)
	}
}

// Get returns the session with id and marks it as used.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastAccess = s.now()
	return sess, true
}

// Touch marks the session with id as used without handing it out. It
// reports false when the session is gone.
func (s *Store) Touch(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if ok {
		sess.lastAccess = s.now()
	}
	return ok
}

// GetOrCreate returns the session with id, or a new one when id is unknown.
// The boolean reports whether a session was created.
func (s *Store) GetOrCreate(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok && id != "" {
		sess.lastAccess = s.now()
		return sess, false
	}
	return s.createLocked(), true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup stops and removes sessions idle for longer than the TTL. It
// returns how many were removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.cfg.TTL)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastAccess.Before(cutoff) {
			delete(s.sessions, id)
			sess.Close()
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info(context.Background(), "Expired idle sessions", "removed", removed, "remaining", len(s.sessions))
	}
	return removed
}

// StartCleanup runs Cleanup every interval until the returned stop function
// is called.
func (s *Store) StartCleanup(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				s.Cleanup()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// Close stops every session. Sessions created afterwards are born stopped.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
	s.closed = true
}
