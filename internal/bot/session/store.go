// Package session keeps per-user transient state: the open batch, closed
// batches waiting for a description, and the retrieval conversation.
package session

import (
	"sync"

	"github.com/dmitrijs2005/sharebot/internal/bot/models"
	"github.com/dmitrijs2005/sharebot/internal/bot/retrieval"
)

// Session is one user's transient state. Fields are only touched inside Store.Do.
type Session struct {
	mu sync.Mutex

	UserID int64

	// Open is the batch currently accepting files, nil when none.
	Open *models.Batch
	// Version increments on every file arrival; a close timer only acts if
	// the version it captured is still current.
	Version uint64
	// Ready holds closed batches waiting for a description, oldest first.
	Ready []*models.Batch

	Retrieval retrieval.Conversation
}

// Store maps user ids to sessions. The map lock covers lookup only; each
// session has its own lock so users never serialize on each other.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

func (s *Store) get(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{UserID: userID}
		s.sessions[userID] = sess
	}
	return sess
}

// Do runs fn with exclusive access to the user's session.
func (s *Store) Do(userID int64, fn func(*Session)) {
	sess := s.get(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess)
}

// Len returns the number of known sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Idle reports whether the session holds no transient state at all.
func (s *Session) Idle() bool {
	return s.Open == nil && len(s.Ready) == 0 && s.Retrieval.State == retrieval.Idle
}
