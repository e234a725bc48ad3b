// Package popup tracks open popup sessions. Coincident features under one
// click become a paged sequence; every page navigation rotates the
// session's generation token so a summary fetch that raced with the
// navigation can be recognized as stale and discarded.
package popup

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/jengzang/chronomap-backend-go/internal/models"
)

// Store keeps live popup sessions in memory
type Store struct {
	mu       sync.Mutex
	sessions map[string]*models.PopupSession
	ttl      time.Duration
}

// NewStore creates a session store; sessions idle past ttl are evicted
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*models.PopupSession),
		ttl:      ttl,
	}

	go s.cleanup()

	return s
}

// cleanup removes expired sessions periodically
func (s *Store) cleanup() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for id, sess := range s.sessions {
			if now.Sub(sess.CreatedAt) > s.ttl {
				delete(s.sessions, id)
			}
		}
		s.mu.Unlock()
	}
}

// Open creates a session over the coincident features of one click
func (s *Store) Open(features []models.Feature) *models.PopupSession {
	sess := &models.PopupSession{
		ID:         uuid.NewString(),
		Generation: uuid.NewString(),
		Features:   features,
		Index:      0,
		CreatedAt:  time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns a live session by id
func (s *Store) Get(id string) (*models.PopupSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, eris.Errorf("popup: no such session %s", id)
	}
	return sess, nil
}

// Navigate moves a session to the given page index and rotates its
// generation, superseding any in-flight summary fetch for the old page
func (s *Store) Navigate(id string, index int) (*models.PopupSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, eris.Errorf("popup: no such session %s", id)
	}
	if index < 0 || index >= len(sess.Features) {
		return nil, eris.Errorf("popup: page %d out of range [0,%d)", index, len(sess.Features))
	}

	sess.Index = index
	sess.Generation = uuid.NewString()

	// hand back a snapshot so callers read the page and its generation
	// without holding the lock
	snapshot := *sess
	return &snapshot, nil
}

// Generation returns the current generation token of a session
func (s *Store) Generation(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return "", false
	}
	return sess.Generation, true
}

// Close drops a session
func (s *Store) Close(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
