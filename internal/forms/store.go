package forms

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultSessionTTL = 30 * time.Minute

// Store keeps live sessions in memory. Sessions are session-local state with
// no cross-session sharing, so a map behind a mutex is the whole story.
// Expiry is lazy: an expired session is cancelled on next access, which keeps
// the core free of background work.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a session store with the given idle TTL. A zero ttl uses
// the default.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// StartOptions configures a new session.
type StartOptions struct {
	RequireConfirm bool
	TemplateName   string
	Filename       string
}

// Create registers a new session in COLLECTING state.
func (s *Store) Create(opts StartOptions) *Session {
	now := s.now()
	sess := &Session{
		ID:             uuid.NewString(),
		State:          StateCollecting,
		RequireConfirm: opts.RequireConfirm,
		TemplateName:   opts.TemplateName,
		Filename:       opts.Filename,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session with the given ID. A session past its TTL is
// routed to CANCELLED before it is returned, mirroring the external timeout
// signal of the conversational engine.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.mu.Lock()
	if !sess.State.Terminal() && s.now().After(sess.ExpiresAt) {
		sess.State = StateCancelled
		sess.discardRecord()
	}
	sess.mu.Unlock()
	return sess, nil
}

// Touch extends a session's TTL after successful activity.
func (s *Store) Touch(sess *Session) {
	now := s.now()
	sess.UpdatedAt = now
	sess.ExpiresAt = now.Add(s.ttl)
}

// Delete removes a session. Terminal sessions may be dropped eagerly once
// their final outcome has been delivered.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports the number of live sessions, for metrics and tests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
