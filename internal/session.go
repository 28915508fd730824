package internal

import (
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn. Immutable once appended.
type Message struct {
	Role      string  `json:"role"`
	Content   string  `json:"content"`
	Timestamp float64 `json:"timestamp"`
}

// Session is a bounded, time-boxed message history. Sessions are owned by
// the SessionStore and must only be mutated through store methods.
type Session struct {
	ID           string    `json:"session_id"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// recent returns up to n of the newest messages, oldest first. Callers must
// hold the store lock; the returned slice aliases s.Messages.
func (s *Session) recent(n int) []Message {
	if n <= 0 || len(s.Messages) == 0 {
		return nil
	}
	if n > len(s.Messages) {
		n = len(s.Messages)
	}
	return s.Messages[len(s.Messages)-n:]
}

func (s *Session) expired(timeout time.Duration) bool {
	return time.Since(s.LastActivity) > timeout
}

type SessionStats struct {
	ActiveSessions int     `json:"active_sessions"`
	TotalMessages  int     `json:"total_messages"`
	AvgMessages    float64 `json:"avg_messages_per_session"`
}

// SessionStore keeps sessions in memory. Expiry is checked lazily on
// access; Sweep is the explicit cleanup pass.
type SessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	timeout     time.Duration
	maxMessages int
}

func NewSessionStore(timeout time.Duration, maxMessages int) *SessionStore {
	if maxMessages < 2 {
		maxMessages = 2
	}
	return &SessionStore{
		sessions:    make(map[string]*Session),
		timeout:     timeout,
		maxMessages: maxMessages,
	}
}

// Get returns the session or nil. An expired session is deleted and
// treated as absent; its history is unrecoverable.
func (st *SessionStore) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.getLocked(id)
}

func (st *SessionStore) getLocked(id string) *Session {
	s, ok := st.sessions[id]
	if !ok {
		return nil
	}
	if s.expired(st.timeout) {
		delete(st.sessions, id)
		return nil
	}
	return s
}

func (st *SessionStore) Create(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.createLocked(id)
}

func (st *SessionStore) createLocked(id string) *Session {
	now := time.Now()
	s := &Session{
		ID:           id,
		Messages:     []Message{},
		CreatedAt:    now,
		LastActivity: now,
	}
	st.sessions[id] = s
	return s
}

func (st *SessionStore) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s := st.getLocked(id); s != nil {
		return s
	}
	return st.createLocked(id)
}

func (st *SessionStore) Remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Append adds a message with a fresh timestamp and re-applies the trim
// invariant: at most maxMessages kept, always the first message plus the
// newest maxMessages-1.
func (st *SessionStore) Append(s *Session, role, content string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := time.Now()
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: float64(now.UnixNano()) / float64(time.Second),
	})
	s.LastActivity = now

	if len(s.Messages) > st.maxMessages {
		head := s.Messages[0]
		tail := s.Messages[len(s.Messages)-(st.maxMessages-1):]
		trimmed := make([]Message, 0, st.maxMessages)
		trimmed = append(trimmed, head)
		trimmed = append(trimmed, tail...)
		s.Messages = trimmed
	}
}

// Recent returns a copy of up to n of the newest messages in the session,
// oldest first. Returns nil for an unknown or expired session.
func (st *SessionStore) Recent(id string, n int) []Message {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := st.getLocked(id)
	if s == nil {
		return nil
	}
	window := s.recent(n)
	if len(window) == 0 {
		return nil
	}
	out := make([]Message, len(window))
	copy(out, window)
	return out
}

// Sweep removes every expired session and reports how many were dropped.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if s.expired(st.timeout) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Stats is read-only: expired sessions are excluded from the counts but
// not deleted here.
func (st *SessionStore) Stats() SessionStats {
	st.mu.Lock()
	defer st.mu.Unlock()

	active, total := 0, 0
	for _, s := range st.sessions {
		if s.expired(st.timeout) {
			continue
		}
		active++
		total += len(s.Messages)
	}

	stats := SessionStats{
		ActiveSessions: active,
		TotalMessages:  total,
	}
	if active > 0 {
		stats.AvgMessages = float64(total) / float64(active)
	}
	return stats
}
