package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// TutorSession is the per-session pedagogical state the workflow reads
// on each turn: what topic is being studied and how far the learner
// has progressed on it.
type TutorSession struct {
	ID           string
	UserID       string
	CurrentTopic string
	MasteryLevel int
	LastStep     string
	UpdatedAt    time.Time
}

// SessionRepository keeps tutor sessions in process memory with a TTL.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	// Expired entries are purged every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *TutorSession) {
	session.UpdatedAt = time.Now()
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*TutorSession, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*TutorSession), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
